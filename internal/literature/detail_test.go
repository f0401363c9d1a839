package literature_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/narratives/internal/gateway"
	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/internal/platform/apperr"
)

func TestDetail_EmptyIDIssuesNoRequest(t *testing.T) {
	repo := newMemoryRepository()
	detail := literature.NewDetail(repo, "", discardLogger())

	assert.True(t, detail.State().IsLoading)
	require.NoError(t, detail.Activate(context.Background()))

	state := detail.State()
	assert.False(t, state.IsLoading)
	assert.Nil(t, state.Work)
	assert.Zero(t, repo.calls)
}

func TestDetail_LoadsOneWork(t *testing.T) {
	repo := newMemoryRepository(literature.Work{ID: "w1", Title: "Tide", PublishedDate: date("2024-01-01")})
	detail := literature.NewDetail(repo, "w1", discardLogger())

	require.NoError(t, detail.Activate(context.Background()))

	state := detail.State()
	require.NotNil(t, state.Work)
	assert.Equal(t, "Tide", state.Work.Title)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Error)
}

/*
TestDetail_FailureThenManualRetry checks that a failure is stored without a
retry and that Refetch recovers.
*/
func TestDetail_FailureThenManualRetry(t *testing.T) {
	repo := newMemoryRepository(literature.Work{ID: "w1", PublishedDate: date("2024-01-01")})
	repo.set(repo.works, &gateway.Error{Code: "network", Message: "Failed to fetch"})

	detail := literature.NewDetail(repo, "w1", discardLogger())
	require.Error(t, detail.Activate(context.Background()))

	state := detail.State()
	assert.Equal(t, apperr.NetworkHint, state.Error)
	assert.Nil(t, state.Work)
	assert.Equal(t, 1, repo.calls)

	repo.set(repo.works, nil)
	require.NoError(t, detail.Refetch(context.Background()))
	assert.Empty(t, detail.State().Error)
	assert.NotNil(t, detail.State().Work)
}

func TestDetail_NotFound(t *testing.T) {
	detail := literature.NewDetail(newMemoryRepository(), "missing", discardLogger())

	err := detail.Activate(context.Background())
	require.Error(t, err)
	assert.True(t, gateway.IsNotFound(err))
	assert.Equal(t, gateway.MessageNoRows, detail.State().Error)
}

/*
TestDetail_DeactivateDiscardsInFlightFetch deactivates the hook while its
fetch is blocked and checks that the late result is not applied.
*/
func TestDetail_DeactivateDiscardsInFlightFetch(t *testing.T) {
	repo := newMemoryRepository(literature.Work{ID: "w1", Title: "Tide", PublishedDate: date("2024-01-01")})
	detail := literature.NewDetail(repo, "w1", discardLogger())

	release := repo.block()
	entered := repo.entered

	done := make(chan error, 1)
	go func() { done <- detail.Activate(context.Background()) }()

	<-entered
	assert.True(t, detail.State().IsLoading)
	detail.Deactivate()
	release()
	require.NoError(t, <-done)

	state := detail.State()
	assert.Nil(t, state.Work)
	assert.False(t, state.IsLoading)

	require.NoError(t, detail.Refetch(context.Background()))
	assert.Equal(t, 1, repo.calls, "an inactive hook issues no request")
}
