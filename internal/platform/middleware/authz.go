// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"

	requestutil "github.com/taibuivan/narratives/internal/platform/request"
	"github.com/taibuivan/narratives/internal/platform/respond"
)

// RequireSession blocks requests that carry no session.
//
// # Usage
//
// Must be registered after the session resolver that injects the claims.
// A present session is the only authorization signal; there are no roles.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if _, err := requestutil.RequiredClaims(request); err != nil {
			respond.Error(writer, request, err)
			return
		}
		next.ServeHTTP(writer, request)
	})
}
