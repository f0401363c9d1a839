// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/narratives/internal/platform/apperr"
	"github.com/taibuivan/narratives/internal/platform/ctxutil"
	"github.com/taibuivan/narratives/internal/platform/sec"
	"github.com/taibuivan/narratives/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a named URL parameter (UUID) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Claims extracts the session claims from the request context.

Returns nil if no session is present.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetSessionClaims(request.Context())
}

/*
RequiredClaims ensures a session is present and returns its claims.

Returns:
  - error: apperr.Unauthorized if the request carries no session
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {

	// Get session claims
	claims := ctxutil.GetSessionClaims(request.Context())

	// If no session is present, return an error
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}

/*
WantsJSON reports whether the caller asked for a JSON answer rather than a page.
*/
func WantsJSON(request *http.Request) bool {
	return strings.Contains(request.Header.Get("Accept"), "application/json") ||
		request.Header.Get("X-Requested-With") == "XMLHttpRequest"
}
