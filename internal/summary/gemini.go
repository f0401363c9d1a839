// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package summary

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const instruction = "You summarize literary works for readers of a personal literature site. " +
	"Write two or three sentences in plain prose. Do not quote the text at length and do not reveal the ending of a story."

// Gemini summarizes with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini summarizer for apiKey.
func NewGemini(context context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("summary: gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(context, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("summary: create genai client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Summarize(context context.Context, title, content string) (string, error) {
	prompt := fmt.Sprintf("Title: %s\n\n%s", title, content)

	result, err := g.client.Models.GenerateContent(context, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("summary: generate content: %w", err)
	}
	return result.Text(), nil
}
