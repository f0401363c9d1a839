// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package flash_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/narratives/internal/platform/flash"
)

func TestSetAndTake(t *testing.T) {
	recorder := httptest.NewRecorder()
	flash.Error(recorder, "Please upload a valid .txt file.")

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)

	request := httptest.NewRequest(http.MethodGet, "/admin", nil)
	request.AddCookie(cookies[0])

	next := httptest.NewRecorder()
	message := flash.Take(next, request)
	require.NotNil(t, message)
	assert.Equal(t, flash.KindError, message.Kind)
	assert.Equal(t, "Please upload a valid .txt file.", message.Text)

	cleared := next.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}

func TestTake_Absent(t *testing.T) {
	recorder := httptest.NewRecorder()
	assert.Nil(t, flash.Take(recorder, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Empty(t, recorder.Result().Cookies())
}

func TestTake_Garbage(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: "flash", Value: "%%%"})

	assert.Nil(t, flash.Take(httptest.NewRecorder(), request))
}
