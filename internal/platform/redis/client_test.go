// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/narratives/internal/platform/redis"
)

/*
TestParseOptions verifies URL parsing and tuning without a live server.
*/
func TestParseOptions(t *testing.T) {
	options, err := redis.ParseOptions("redis://:secret@localhost:6379/2")
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", options.Addr)
	assert.Equal(t, 2, options.DB)
	assert.Equal(t, 8, options.PoolSize)
	assert.Equal(t, 2*time.Second, options.ReadTimeout)
}

/*
TestParseOptions_Invalid rejects unsupported schemes.
*/
func TestParseOptions_Invalid(t *testing.T) {
	_, err := redis.ParseOptions("http://localhost:6379")
	assert.Error(t, err)
}
