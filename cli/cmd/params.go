package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/xosc/engine"
	"github.com/ardnew/xosc/log"
	"github.com/ardnew/xosc/param"
)

// Params lists the parameters a scenario declares with their default
// values. A distribution lists the parameters of its scenario.
type Params struct {
	Input  string `arg:"" default:"-" help:"Scenario or distribution file, or '-' for stdin" optional:""`
	Format string `default:"text" enum:"${formatEnum}" help:"Output format (${enum})" short:"F"`
}

// Run executes the params command.
func (p *Params) Run(ctx context.Context) error {
	doc, err := readDocument(p.Input)
	if err != nil {
		return err
	}

	plan, err := engine.Expand(ctx, doc, engine.Options{Logger: log.Default()})
	if err != nil {
		return err
	}

	params := engine.ExtractScenarioParameters(plan.Declarations)

	return encode(ctx, stdout(ctx), p.Format, params, func(w io.Writer) error {
		return writeDeclarations(w, plan.Declarations)
	})
}

// writeDeclarations writes one line per declared name in declaration
// order: name, type and effective default.
func writeDeclarations(w io.Writer, decls param.Declarations) error {
	r := lipgloss.NewRenderer(w)

	names := decls.Names()

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}

	name := r.NewStyle().Bold(true).Width(width)
	kind := r.NewStyle().Foreground(lipgloss.Color("8")).Width(len("unsignedShort"))

	var sb strings.Builder

	for _, n := range names {
		d, _ := decls.Lookup(n)

		sb.WriteString(name.Render(d.Name))
		sb.WriteByte(' ')
		sb.WriteString(kind.Render(d.Type.String()))
		sb.WriteByte(' ')
		sb.WriteString(d.Value)
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())

	return err
}
