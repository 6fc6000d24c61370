// Package ingest turns resume and job description documents into plain text.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported document format")

// Provider extracts the text of a document. Empty text is not an error.
type Provider interface {
	Extract(ctx context.Context, r io.Reader) (string, error)
}

// PlainText passes text documents through with whitespace collapsed.
type PlainText struct{}

func (PlainText) Extract(ctx context.Context, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return collapse(string(data)), nil
}

// ForPath picks a provider by file extension.
func ForPath(path string) (Provider, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".txt", ".text", ".md":
		return PlainText{}, nil
	case ".html", ".htm":
		return HTML{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ExtractFile reads the document at path with the provider for its
// extension. "-" reads standard input as plain text.
func ExtractFile(ctx context.Context, path string) (string, error) {
	if path == "-" {
		return PlainText{}.Extract(ctx, os.Stdin)
	}

	provider, err := ForPath(path)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	text, err := provider.Extract(ctx, f)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	return text, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
