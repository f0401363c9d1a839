// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package site_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/narratives/internal/site"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantTitle string
		wantQuote string
	}{
		{name: "empty document", raw: "", wantTitle: site.DefaultTitle, wantQuote: site.DefaultQuote},
		{
			name:      "partial override",
			raw:       "title: Night Pages\n",
			wantTitle: "Night Pages",
			wantQuote: site.DefaultQuote,
		},
		{
			name:      "nested override",
			raw:       "about:\n  quote: \"  Ink first.  \"\n",
			wantTitle: site.DefaultTitle,
			wantQuote: "Ink first.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := site.Parse([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, content.Title)
			assert.Equal(t, tt.wantQuote, content.About.Quote)
			assert.Equal(t, site.DefaultTrackURL, content.Ambience.TrackURL)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := site.Parse([]byte("title: [unclosed"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	content, err := site.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, site.Default(), content)

	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("heading: Short Things\nabout:\n  paragraphs:\n    - One\n    - Two\n"), 0o600))

	content, err = site.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Short Things", content.Heading)
	assert.Equal(t, []string{"One", "Two"}, content.About.Paragraphs)
}
