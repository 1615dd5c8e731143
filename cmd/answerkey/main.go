// Command answerkey writes the instructor answer-key workbook to a file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hku-span/span2030/internal/curriculum"
	"github.com/hku-span/span2030/internal/export"
)

func main() {
	out := flag.String("o", "span2030-clave.xlsx", "output file")
	content := flag.String("content", os.Getenv("SPAN_CONTENT_PATH"), "content directory (default: embedded)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*out, *content); err != nil {
		slog.Error("answer key export failed", "error", err)
		os.Exit(1)
	}
}

func run(out, content string) error {
	fsys := curriculum.DefaultFS()
	if content != "" {
		fsys = os.DirFS(content)
	}

	catalog, err := curriculum.Load(fsys)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	f, err := export.AnswerKey(catalog)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(out); err != nil {
		return fmt.Errorf("saving %s: %w", out, err)
	}
	slog.Info("answer key written", "path", out, "topics", len(catalog.AllTopics()))
	return nil
}
