// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/narratives/internal/platform/telemetry"
)

/*
TestSetup_Disabled returns a harmless shutdown when no endpoint is configured.
*/
func TestSetup_Disabled(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), "", "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
