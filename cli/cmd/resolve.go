package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ardnew/xosc/engine"
	"github.com/ardnew/xosc/log"
	"github.com/ardnew/xosc/manifest"
	"github.com/ardnew/xosc/xosc"
)

// Permission modes of generated files and directories.
const (
	defaultFileMode os.FileMode = 0o644
	defaultDirMode  os.FileMode = 0o755
)

// Resolve writes one literal scenario file per variant of a scenario or
// distribution.
type Resolve struct {
	Catalogs `embed:""`

	Input    string  `arg:"" default:"-" help:"Scenario or distribution file, or '-' for stdin" optional:""`
	Out      string  `default:"." help:"Output directory" short:"o" type:"path"`
	Workers  int     `default:"0" help:"Variants resolved concurrently (0 means one per CPU)" short:"j"`
	Seed     *uint64 `help:"Override the stochastic seed"`
	Manifest string  `help:"Record generated files in this SQLite database" type:"path"`
	Format   string  `default:"text" enum:"${formatEnum}" help:"Summary format (${enum})" short:"F"`
	Force    bool    `help:"Overwrite existing output files" short:"f"`
}

// Run executes the resolve command.
func (r *Resolve) Run(ctx context.Context) error {
	doc, err := readDocument(r.Input)
	if err != nil {
		return err
	}

	opts, err := r.options()
	if err != nil {
		return err
	}

	opts.Seed = r.Seed
	opts.Workers = r.Workers

	plan, err := engine.Expand(ctx, doc, opts)
	if err != nil {
		return err
	}

	// Pin the seed so the written files match the recorded one.
	if seed, ok := plan.Seed(); ok {
		opts.Seed = &seed
	}

	docs, err := engine.ResolveDocument(ctx, doc, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(r.Out, defaultDirMode); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("dir", r.Out))
	}

	rec := makePlanRecord(plan)
	entries := make([]manifest.Entry, len(docs))
	name := outputName(stem(doc), len(docs))

	var written []string

	for i, d := range docs {
		path := filepath.Join(r.Out, name(d.Index))

		if err := r.write(path, d.Document); err != nil {
			discard(written)

			return err
		}

		written = append(written, path)

		entries[i] = manifest.Entry{
			Output:      path,
			Assignments: d.Assignments,
			Index:       d.Index,
			ID:          d.ID,
		}

		v := makeVariantRecord(d.Index, d.ID.String(), d.Assignments)
		v.Output = path
		rec.Variants = append(rec.Variants, v)
	}

	if r.Manifest != "" {
		if err := r.record(ctx, doc, rec.Seed, entries); err != nil {
			discard(written)

			return err
		}
	}

	return encode(ctx, stdout(ctx), r.Format, rec, func(w io.Writer) error {
		return writeVariants(w, rec)
	})
}

// write encodes doc to path, refusing to replace an existing file unless
// forced.
func (r *Resolve) write(path string, doc *xosc.Document) error {
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !r.Force {
		flag |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flag, defaultFileMode)
	if err != nil {
		if os.IsExist(err) {
			return ErrWriteOutput.Wrap(ErrFileExists).With(slog.String("file", path))
		}

		return ErrWriteOutput.Wrap(err).With(slog.String("file", path))
	}

	if err := doc.Encode(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)

		return ErrWriteOutput.Wrap(err).With(slog.String("file", path))
	}

	if err := f.Close(); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", path))
	}

	log.Debug("wrote scenario", slog.String("file", path))

	return nil
}

// discard removes the files written by a run that failed part way.
func discard(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("remove partial output",
				slog.String("file", path),
				slog.Any("error", err))
		}
	}
}

// record appends the run to the manifest database.
func (r *Resolve) record(
	ctx context.Context,
	doc *xosc.Document,
	seed *uint64,
	entries []manifest.Entry,
) error {
	store, err := manifest.Open(ctx, r.Manifest)
	if err != nil {
		return ErrManifest.Wrap(err)
	}
	defer store.Close()

	id, err := store.Record(ctx, manifest.Run{
		Created:  time.Now(),
		Seed:     seed,
		Source:   source(doc),
		Digest:   doc.Digest,
		Variants: len(entries),
	}, entries)
	if err != nil {
		return ErrManifest.Wrap(err)
	}

	log.InfoContext(ctx, "recorded run",
		slog.Int64("run", id),
		slog.String("manifest", r.Manifest),
	)

	return nil
}

// outputName returns a function naming the file of each of n variants as
// stem-index.xosc, with the index zero-padded to a common width.
func outputName(stem string, n int) func(int) string {
	width := len(strconv.Itoa(max(n-1, 0)))

	return func(i int) string {
		return fmt.Sprintf("%s-%0*d.xosc", stem, width, i)
	}
}
