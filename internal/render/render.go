// Package render writes papers in the formats the calcpaper command offers.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/calcpaper/evaluator"
	"github.com/zephyrtronium/calcpaper/paper"
)

// Renderer writes a paper to w.
type Renderer func(w io.Writer, p *paper.Paper) error

// UnknownError is an error for a renderer name that doesn't exist.
type UnknownError struct {
	Name string
}

func (err *UnknownError) Error() string {
	return fmt.Sprintf("unknown output %q, want one of %v", err.Name, Names())
}

// Lookup returns the renderer with the given name.
func Lookup(name string) (Renderer, error) {
	switch name {
	case "text":
		return Text, nil
	case "table":
		return Table, nil
	case "plain":
		return Plain, nil
	case "json":
		return JSON, nil
	case "yaml":
		return YAML, nil
	default:
		return nil, &UnknownError{Name: name}
	}
}

// Names returns the names of all renderers in sorted order.
func Names() []string {
	r := []string{"text", "table", "plain", "json", "yaml"}
	sort.Strings(r)
	return r
}

// Text writes the paper in its file format.
func Text(w io.Writer, p *paper.Paper) error {
	_, err := io.WriteString(w, p.String())
	return err
}

// Table writes the paper as aligned columns under a header, followed by its
// notes if it has any.
func Table(w io.Writer, p *paper.Paper) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tEXPRESSION\tRESULT\n")
	for _, e := range p.Expressions() {
		res := e.Text()
		if !e.Valid() {
			res = "error: " + res
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID(), e.Expression(), res)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if p.Notes() != "" {
		_, err := fmt.Fprintf(w, "\n%s\n", p.Notes())
		return err
	}
	return nil
}

// Plain writes one line per expression: functions as their definitions and
// everything else as id = result.
func Plain(w io.Writer, p *paper.Paper) error {
	for _, e := range p.Expressions() {
		var err error
		switch {
		case !e.Valid():
			_, err = fmt.Fprintf(w, "%s: error: %s\n", e.ID(), e.Text())
		case e.Kind() == evaluator.Function:
			_, err = fmt.Fprintf(w, "%s = %s\n", e.Text(), e.Expression())
		default:
			_, err = fmt.Fprintf(w, "%s = %s\n", e.ID(), e.Text())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type document struct {
	Expressions []row  `json:"expressions" yaml:"expressions"`
	Notes       string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type row struct {
	ID         string   `json:"id" yaml:"id"`
	Expression string   `json:"expression" yaml:"expression"`
	Kind       string   `json:"kind" yaml:"kind"`
	Result     string   `json:"result,omitempty" yaml:"result,omitempty"`
	Params     []string `json:"params,omitempty" yaml:"params,omitempty"`
	Error      string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func newDocument(p *paper.Paper) document {
	d := document{Expressions: []row{}, Notes: p.Notes()}
	for _, e := range p.Expressions() {
		r := row{
			ID:         e.ID(),
			Expression: e.Expression(),
			Kind:       e.Kind().String(),
			Params:     e.Params(),
			Error:      e.Err(),
		}
		if e.Valid() {
			r.Result = e.Text()
		}
		d.Expressions = append(d.Expressions, r)
	}
	return d
}

// JSON writes the paper as an indented JSON document.
func JSON(w io.Writer, p *paper.Paper) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newDocument(p))
}

// YAML writes the paper as a YAML document.
func YAML(w io.Writer, p *paper.Paper) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(p)); err != nil {
		return err
	}
	return enc.Close()
}
