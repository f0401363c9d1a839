// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package flash carries one-shot notifications across a redirect in a
// short-lived cookie. A notification is shown once and then cleared.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/taibuivan/narratives/internal/platform/constants"
)

// Kind selects how a notification is styled.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Message is one notification.
type Message struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

const maxAge = 60

// Set stores a notification for the next page the browser loads.
func Set(writer http.ResponseWriter, kind Kind, text string) {
	payload, err := json.Marshal(Message{Kind: kind, Text: text})
	if err != nil {
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Success is shorthand for Set with [KindSuccess].
func Success(writer http.ResponseWriter, text string) { Set(writer, KindSuccess, text) }

// Error is shorthand for Set with [KindError].
func Error(writer http.ResponseWriter, text string) { Set(writer, KindError, text) }

// Take returns the pending notification, if any, and clears it.
func Take(writer http.ResponseWriter, request *http.Request) *Message {
	cookie, err := request.Cookie(constants.FlashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.FlashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var message Message
	if err := json.Unmarshal(payload, &message); err != nil || message.Text == "" {
		return nil
	}
	return &message
}
