package xosc

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"aqwari.net/xml/xmltree"
	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// Kind classifies a document by its top-level content.
type Kind uint8

const (
	KindScenario Kind = iota
	KindCatalog
	KindDistribution
)

func (k Kind) String() string {
	switch k {
	case KindCatalog:
		return "catalog"
	case KindDistribution:
		return "distribution"
	default:
		return "scenario"
	}
}

// Document is a parsed scenario, catalog or distribution file.
type Document struct {
	Root *xmltree.Element
	// Path is the file the document was read from, if any.
	Path string
	// Digest is the xxh3 hash of the source bytes.
	Digest uint64
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data, path)
}

// ReadFile reads the whole file at path through a read-ahead buffer.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrRead.Wrap(err).With(slog.String("file", path))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrRead.Wrap(err).With(slog.String("file", path))
	}

	return data, nil
}

// Parse parses data as a document read from path.
func Parse(data []byte, path string) (*Document, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, ErrParse.Wrap(err).With(slog.String("file", path))
	}

	return &Document{Root: root, Path: path, Digest: xxh3.Hash(data)}, nil
}

// Kind reports what the document contains.
func (d *Document) Kind() Kind {
	switch {
	case Child(d.Root, "Catalog") != nil:
		return KindCatalog
	case Child(d.Root, "ParameterValueDistribution") != nil:
		return KindDistribution
	default:
		return KindScenario
	}
}

// Dir returns the directory relative paths in the document resolve
// against.
func (d *Document) Dir() string {
	if d.Path == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}

		return "."
	}

	return filepath.Dir(d.Path)
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := *d
	c.Root = Clone(d.Root)

	return &c
}

// Encode writes d as an XML document to w.
func (d *Document) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xmlHeader); err != nil {
		return err
	}

	if err := xmltree.Encode(w, d.Root); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n")

	return err
}

// Bytes returns the encoded document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
