package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/xosc/xosc"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer Kong was configured with, or os.Stdout.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdin is read when the input is [stdinSource].
//
//nolint:gochecknoglobals
var stdin io.Reader = os.Stdin

// readDocument loads the document at path, or from stdin if path is
// [stdinSource]. Relative references in a document read from stdin
// resolve against the working directory.
func readDocument(path string) (*xosc.Document, error) {
	if path != stdinSource {
		return xosc.Load(path)
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, xosc.ErrRead.Wrap(err).With(slog.String("file", stdinSource))
	}

	return xosc.Parse(data, "")
}

// stem returns the base name of the document without its extension.
func stem(doc *xosc.Document) string {
	if doc.Path == "" {
		return "scenario"
	}

	base := filepath.Base(doc.Path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

// source returns the name a document is reported under.
func source(doc *xosc.Document) string {
	if doc.Path == "" {
		return stdinSource
	}

	return doc.Path
}
