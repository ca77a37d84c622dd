package cmd

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/xosc/engine"
	"github.com/ardnew/xosc/param"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// outputIndent is the indentation of JSON and YAML output.
const outputIndent = 2

func formats() iter.Seq[string] {
	return slices.Values([]string{formatText, formatJSON, formatYAML})
}

// encode writes v to w as JSON or YAML. Any other format calls text.
func encode(
	ctx context.Context,
	w io.Writer,
	format string,
	v any,
	text func(io.Writer) error,
) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", strings.Repeat(" ", outputIndent))

		if err := enc.Encode(v); err != nil {
			return ErrMarshal.Wrap(err).With(slog.String("format", format))
		}

		return nil

	case formatYAML:
		data, err := yaml.MarshalContext(ctx, v, yaml.Indent(outputIndent))
		if err != nil {
			return ErrMarshal.Wrap(err).With(slog.String("format", format))
		}

		_, err = w.Write(data)

		return err

	default:
		return text(w)
	}
}

// variantRecord describes one variant in command output.
type variantRecord struct {
	Index      int                `json:"index"            yaml:"index"`
	ID         string             `json:"id"               yaml:"id"`
	Output     string             `json:"output,omitempty" yaml:"output,omitempty"`
	Parameters []param.Assignment `json:"parameters"       yaml:"parameters"`
}

// planRecord describes an expanded or resolved input document.
type planRecord struct {
	Source   string          `json:"source"         yaml:"source"`
	Scenario string          `json:"scenario"       yaml:"scenario"`
	Seed     *uint64         `json:"seed,omitempty" yaml:"seed,omitempty"`
	Variants []variantRecord `json:"variants"       yaml:"variants"`
}

func makePlanRecord(plan *engine.Plan) planRecord {
	rec := planRecord{
		Source:   source(plan.Source),
		Scenario: source(plan.Scenario),
	}

	if seed, ok := plan.Seed(); ok {
		rec.Seed = &seed
	}

	return rec
}

func makeVariantRecord(index int, id string, as []param.Assignment) variantRecord {
	if as == nil {
		as = []param.Assignment{}
	}

	return variantRecord{Index: index, ID: id, Parameters: as}
}

// writeVariants writes one line per variant: index, ID, output file if
// any, and the varied parameters.
func writeVariants(w io.Writer, rec planRecord) error {
	r := lipgloss.NewRenderer(w)

	title := r.NewStyle().Bold(true)
	index := r.NewStyle().
		Foreground(lipgloss.Color("6")).
		Width(len(strconv.Itoa(max(len(rec.Variants)-1, 0)))).
		Align(lipgloss.Right)
	faint := r.NewStyle().Foreground(lipgloss.Color("8"))

	var sb strings.Builder

	sb.WriteString(title.Render(rec.Scenario))

	if rec.Seed != nil {
		sb.WriteString(faint.Render(" seed=" + strconv.FormatUint(*rec.Seed, 10)))
	}

	sb.WriteByte('\n')

	for _, v := range rec.Variants {
		cols := []string{index.Render(strconv.Itoa(v.Index)), faint.Render(v.ID)}

		if v.Output != "" {
			cols = append(cols, v.Output)
		}

		for _, a := range v.Parameters {
			cols = append(cols, a.Name+"="+a.Value)
		}

		sb.WriteString(strings.Join(cols, " "))
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())

	return err
}
