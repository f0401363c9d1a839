// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package summary produces short reader-facing summaries of a work.

Summaries are best effort. Without an API key the [Service] answers every
request with [ErrNotConfigured]; upstream failures surface as a message and
never take down the page that asked.
*/
package summary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/zeebo/xxh3"

	"github.com/taibuivan/narratives/internal/platform/apperr"
)

const (
	// CacheTTL is how long a summary is reused for unchanged content.
	CacheTTL = time.Hour

	// cacheCleanupInterval is how often expired summaries are evicted.
	cacheCleanupInterval = 10 * time.Minute
)

// ErrNotConfigured is returned when no summarizer has been set up.
var ErrNotConfigured = &apperr.AppError{
	Code:       "SUMMARY_NOT_CONFIGURED",
	Message:    "AI summary is not configured.",
	HTTPStatus: http.StatusServiceUnavailable,
}

// FailureMessage is shown when the summarizer could not produce a result.
const FailureMessage = "Could not generate a summary. Please try again later."

func failed(cause error) *apperr.AppError {
	return &apperr.AppError{
		Code:       "SUMMARY_FAILED",
		Message:    FailureMessage,
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Summarizer turns a work into a short summary.
type Summarizer interface {
	Summarize(ctx context.Context, title, content string) (string, error)
}

// Service caches summaries by content hash in front of a [Summarizer].
type Service struct {
	summarizer Summarizer
	cache      *cache.Cache
	logger     *slog.Logger
}

// NewService creates a Service. A nil summarizer leaves summaries disabled.
func NewService(summarizer Summarizer, logger *slog.Logger) *Service {
	return &Service{
		summarizer: summarizer,
		cache:      cache.New(CacheTTL, cacheCleanupInterval),
		logger:     logger,
	}
}

// Enabled reports whether summaries can be requested at all.
func (service *Service) Enabled() bool {
	return service.summarizer != nil
}

// Summarize returns the summary of a work, from cache when the same title
// and content were summarized within [CacheTTL].
func (service *Service) Summarize(context context.Context, title, content string) (string, error) {
	if service.summarizer == nil {
		return "", ErrNotConfigured
	}

	key := Key(title, content)
	if cached, found := service.cache.Get(key); found {
		return cached.(string), nil
	}

	text, err := service.summarizer.Summarize(context, title, content)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("summary: empty response")
	}
	if err != nil {
		service.logger.Warn("summary_failed", slog.String("error", err.Error()))
		return "", failed(err)
	}

	text = strings.TrimSpace(text)
	service.cache.Set(key, text, cache.DefaultExpiration)
	service.logger.Info("summary_generated", slog.Int("content_length", len(content)))
	return text, nil
}

// Key is the cache key of a work's text.
func Key(title, content string) string {
	return strconv.FormatUint(xxh3.HashString(title+"\x00"+content), 16)
}
