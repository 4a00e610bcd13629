package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/typelayout/errors"
	"github.com/wippyai/typelayout/witlayout"
)

// entry is the computed layout of one named type.
type entry struct {
	err  error
	name string
	kind string
	info witlayout.Info
}

func newEntry(calc *witlayout.Calculator, td *wit.TypeDef) entry {
	e := entry{kind: witlayout.KindName(td)}
	if td.Name != nil {
		e.name = *td.Name
	}
	e.info, e.err = calc.Calculate(td)
	return e
}

func loadDocument(path string) ([]*wit.TypeDef, error) {
	res, err := wit.LoadJSON(path)
	if err != nil {
		return nil, errors.Load("read WIT document "+path, err)
	}
	return res.TypeDefs, nil
}

// collect lays out every named definition, or only the one called name.
// Resources and other types without a memory layout are skipped.
func collect(calc *witlayout.Calculator, defs []*wit.TypeDef, name string) ([]entry, error) {
	var entries []entry
	for _, td := range defs {
		if td.Name == nil {
			continue
		}
		if name != "" && *td.Name != name {
			continue
		}
		e := newEntry(calc, td)
		if e.kind == "unknown" && name == "" {
			continue
		}
		entries = append(entries, e)
	}
	if name != "" && len(entries) == 0 {
		return nil, errors.NotFound(errors.PhaseParse, "type", name)
	}
	return entries, nil
}

// parseTuple builds a tuple definition from a comma separated list of
// primitive WIT types.
func parseTuple(list string) (*wit.TypeDef, error) {
	var types []wit.Type
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := wit.ParseType(part)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				WitType(part).
				Cause(err).
				Detail("parse tuple element").
				Build()
		}
		types = append(types, t)
	}
	name := "tuple"
	return &wit.TypeDef{Name: &name, Kind: &wit.Tuple{Types: types}}, nil
}

type styles struct {
	title  lipgloss.Style
	kind   lipgloss.Style
	header lipgloss.Style
	err    lipgloss.Style
	dim    lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{title: plain, kind: plain, header: plain, err: plain, dim: plain}
	}
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#98FB98")),
		kind:   lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		err:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

func render(w io.Writer, entries []entry, st styles) {
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprint(w, detail(e, st))
	}
}

// detail renders the summary line of e followed by its field table.
func detail(e entry, st styles) string {
	var b strings.Builder
	b.WriteString(st.title.Render(e.name))
	b.WriteString("  ")
	b.WriteString(st.kind.Render(e.kind))
	if e.err != nil {
		b.WriteString("\n")
		b.WriteString(st.err.Render("error: " + e.err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(st.dim.Render(fmt.Sprintf("  size %d  align %d", e.info.Size, e.info.Align)))
	b.WriteString("\n")

	if len(e.info.Fields) == 0 {
		return b.String()
	}

	rows := make([][]string, len(e.info.Fields))
	for i, f := range e.info.Fields {
		rows[i] = []string{
			strconv.FormatUint(uint64(f.Offset), 10),
			strconv.FormatUint(uint64(f.Size), 10),
			strconv.FormatUint(uint64(f.Align), 10),
			f.Name,
			f.Type,
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("offset", "size", "align", "field", "type").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}
