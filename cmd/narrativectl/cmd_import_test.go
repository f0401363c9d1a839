// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/narratives/internal/admin"
	"github.com/taibuivan/narratives/internal/literature"
)

type recordingMutator struct {
	drafts []literature.Draft
}

func (m *recordingMutator) Add(_ context.Context, draft literature.Draft) (*literature.Work, error) {
	m.drafts = append(m.drafts, draft)
	return &literature.Work{ID: "new", Title: draft.Title}, nil
}

func (m *recordingMutator) Update(context.Context, string, literature.Patch) error { return nil }
func (m *recordingMutator) Remove(context.Context, string) error                   { return nil }

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
}

/*
TestImportFile_PlainText publishes a .txt file with the defaults of a new
dashboard form.
*/
func TestImportFile_PlainText(t *testing.T) {
	works := &recordingMutator{}
	var out bytes.Buffer

	path := writeFile(t, "harbour_lights.txt", "The boats come in at dusk.")
	options := importOptions{Type: string(literature.TypePoem), Author: admin.DefaultAuthor}

	require.NoError(t, importFile(context.Background(), works, &out, path, options, fixedNow))

	require.Len(t, works.drafts, 1)
	draft := works.drafts[0]
	assert.Equal(t, "Harbour Lights", draft.Title)
	assert.Equal(t, "The boats come in at dusk.", draft.Content)
	assert.Equal(t, "2025-03-04", draft.PublishedDate)
	assert.Equal(t, admin.DefaultAuthor, draft.Author)

	assert.Contains(t, out.String(), admin.MessageFileLoaded)
	assert.Contains(t, out.String(), admin.MessageAdded)
}

func TestImportFile_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		options importOptions
		message string
	}{
		{
			name:    "not a text file",
			file:    "story.pdf",
			options: importOptions{Type: string(literature.TypeEssay)},
			message: admin.MessageInvalidFile,
		},
		{
			name:    "unknown classification",
			file:    "story.txt",
			options: importOptions{Type: "Novel"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			works := &recordingMutator{}
			var out bytes.Buffer

			path := writeFile(t, tt.file, "Once.")
			err := importFile(context.Background(), works, &out, path, tt.options, fixedNow)

			require.Error(t, err)
			assert.Empty(t, works.drafts)
			if tt.message != "" {
				assert.Contains(t, out.String(), tt.message)
			}
		})
	}
}

func TestContentTypeOf(t *testing.T) {
	assert.True(t, strings.HasPrefix(contentTypeOf("a/b/poem.TXT"), "text/plain"))
	assert.Equal(t, "application/pdf", contentTypeOf("story.pdf"))
}
