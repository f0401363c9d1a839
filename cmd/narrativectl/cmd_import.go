// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/narratives/internal/admin"
	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/pkg/textnorm"
)

type importOptions struct {
	Type    string
	Title   string
	Author  string
	Date    string
	Excerpt string
}

var importFlags importOptions

var importCmd = &cobra.Command{
	Use:   "import <file.txt>",
	Short: "Publish a plain-text file as a new work",
	Long: `Reads a .txt file and publishes it as a new work.

The title defaults to the file name. A blank excerpt is derived from the
first 150 characters of the content.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		_, pool, client, err := connect(cmd.Context(), log)
		if err != nil {
			return err
		}
		defer pool.Close()

		works := literature.NewList(literature.NewGatewayRepository(client), nil, log)
		return importFile(cmd.Context(), works, cmd.OutOrStdout(), args[0], importFlags, time.Now)
	},
}

func init() {
	flags := importCmd.Flags()
	flags.StringVar(&importFlags.Type, "type", string(literature.TypePoem), "classification: Poem, Short Story or Essay")
	flags.StringVar(&importFlags.Title, "title", "", "title (defaults to the file name)")
	flags.StringVar(&importFlags.Author, "author", admin.DefaultAuthor, "author name")
	flags.StringVar(&importFlags.Date, "date", "", "publication date as YYYY-MM-DD (defaults to today)")
	flags.StringVar(&importFlags.Excerpt, "excerpt", "", "excerpt (derived from the content when blank)")
}

// importFile runs path through the same form workflow the dashboard uses.
func importFile(ctx context.Context, works admin.WorkMutator, out io.Writer, path string, options importOptions, now func() time.Time) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	notices := &printer{out: out}
	workflow := admin.NewWorkflow(works, notices, now)
	workflow.OpenCreate()

	draft := workflow.Form()
	draft.Type = literature.Type(options.Type)
	draft.Title = options.Title
	if strings.TrimSpace(draft.Title) == "" {
		draft.Title = textnorm.TitleFromFilename(path)
	}
	if options.Author != "" {
		draft.Author = options.Author
	}
	if options.Date != "" {
		draft.PublishedDate = options.Date
	}
	draft.Excerpt = options.Excerpt
	if err := workflow.SetForm(draft); err != nil {
		return err
	}

	if err := workflow.LoadFile(admin.FileUpload{ContentType: contentTypeOf(path), Body: file}); err != nil {
		return err
	}
	if err := workflow.Form().Validate(); err != nil {
		return err
	}
	return workflow.Submit(ctx)
}

// contentTypeOf maps a file name to the type a browser would report.
func contentTypeOf(path string) string {
	extension := strings.ToLower(filepath.Ext(path))
	if extension == ".txt" {
		return "text/plain; charset=utf-8"
	}
	return mime.TypeByExtension(extension)
}

// printer writes workflow notifications as CLI output.
type printer struct {
	out io.Writer
}

func (p *printer) Success(text string) { fmt.Fprintln(p.out, text) }
func (p *printer) Error(text string)   { fmt.Fprintln(p.out, text) }
