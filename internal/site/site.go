// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package site holds the editable copy of the public pages: titles, the about
page and the ambience track.

Content is read once at startup from a YAML file. Missing keys keep their
defaults, so an empty or absent file still yields a complete [Content].
*/
package site

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// # Defaults

const (
	DefaultTitle       = "SJK Narratives"
	DefaultHeading     = "Poems, Essays, and Stories"
	DefaultQuote       = "I write because silence is too ordinary."
	DefaultPortraitURL = "https://res.cloudinary.com/dubg7bfmv/image/upload/v1761320210/3-3_f3ifqn.jpg"
	DefaultTrackURL    = "https://res.cloudinary.com/dubg7bfmv/video/upload/v1761321884/loop_vdumkx.mp3"
)

// # Content

// Content is the copy rendered around the works.
type Content struct {
	Title   string `yaml:"title"`
	Heading string `yaml:"heading"`

	About struct {
		Quote       string   `yaml:"quote"`
		PortraitURL string   `yaml:"portrait_url"`
		Paragraphs  []string `yaml:"paragraphs"`
	} `yaml:"about"`

	Ambience struct {
		TrackURL string `yaml:"track_url"`
	} `yaml:"ambience"`
}

// Default returns the built-in content.
func Default() Content {
	var content Content
	content.applyDefaults()
	return content
}

// Load reads content from path. A missing file yields [Default].
func Load(path string) (Content, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Content{}, fmt.Errorf("site: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML content and fills in defaults for missing keys.
func Parse(raw []byte) (Content, error) {
	var content Content
	if err := yaml.Unmarshal(raw, &content); err != nil {
		return Content{}, fmt.Errorf("site: parse content: %w", err)
	}
	content.applyDefaults()
	return content, nil
}

func (c *Content) applyDefaults() {
	c.Title = orDefault(c.Title, DefaultTitle)
	c.Heading = orDefault(c.Heading, DefaultHeading)
	c.About.Quote = orDefault(c.About.Quote, DefaultQuote)
	c.About.PortraitURL = orDefault(c.About.PortraitURL, DefaultPortraitURL)
	c.Ambience.TrackURL = orDefault(c.Ambience.TrackURL, DefaultTrackURL)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
