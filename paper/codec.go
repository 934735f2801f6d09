package paper

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/zephyrtronium/calcpaper/evaluator"
)

// minWidth is the narrowest a row is written. Narrower papers widen the
// expression column.
const minWidth = 60

// ParseError is an error indicating a malformed row in a paper.
type ParseError struct {
	// Line is the 1-based line number of the row.
	Line int
	// Text is the row.
	Text string
	// Reason describes the problem.
	Reason string
}

func (err *ParseError) Error() string {
	return "line " + strconv.Itoa(err.Line) + ": " + err.Reason + ": " + strconv.Quote(err.Text)
}

var rowID = regexp.MustCompile(`^(#[0-9]+|[a-zA-Z_]+)$`)

// String formats the paper. Each expression is a row of id, expression, and
// result separated by tabs and padded to align in columns. A blank line
// follows, then the notes.
func (p *Paper) String() string {
	var idw, exw, rw int
	for _, r := range p.rows {
		idw = max(idw, utf8.RuneCountInString(r.ID()))
		exw = max(exw, utf8.RuneCountInString(r.Expression()))
		rw = max(rw, utf8.RuneCountInString(r.Text()))
	}
	// Two separators.
	if w := idw + exw + rw + 2; w < minWidth {
		exw += minWidth - w
	}
	var b strings.Builder
	for _, r := range p.rows {
		pad(&b, r.ID(), idw, false)
		b.WriteByte('\t')
		pad(&b, r.Expression(), exw, false)
		b.WriteByte('\t')
		pad(&b, r.Text(), rw, true)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(p.notes)
	b.WriteByte('\n')
	return b.String()
}

func pad(b *strings.Builder, s string, w int, right bool) {
	n := w - utf8.RuneCountInString(s)
	if right && n > 0 {
		b.WriteString(strings.Repeat(" ", n))
	}
	b.WriteString(s)
	if !right && n > 0 {
		b.WriteString(strings.Repeat(" ", n))
	}
}

// FromString replaces the paper's contents with those parsed from s, in the
// format written by String. Results are restored as written, not evaluated
// again. If any row is malformed, the error is a *ParseError and the paper is
// unchanged.
func (p *Paper) FromString(s string) error {
	rows, notes, err := parse(s)
	if err != nil {
		return err
	}
	p.ev.Reset()
	for _, r := range rows {
		if err := p.ev.AddEvaluatedExpression(r); err != nil {
			p.log.Warn("restored expression does not bind", zap.String("id", r.ID()), zap.Error(err))
		}
	}
	p.rows = rows
	p.notes = notes
	return nil
}

func parse(s string) ([]evaluator.EvaluatedExpression, string, error) {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	var rows []evaluator.EvaluatedExpression
	i := 0
	for ; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			break
		}
		f := strings.SplitN(line, "\t", 3)
		if len(f) != 3 {
			return nil, "", &ParseError{Line: i + 1, Text: line, Reason: "row needs an id, expression, and result separated by tabs"}
		}
		id, expr, text := strings.TrimSpace(f[0]), strings.TrimSpace(f[1]), strings.TrimSpace(f[2])
		if !rowID.MatchString(id) {
			return nil, "", &ParseError{Line: i + 1, Text: line, Reason: "bad id " + strconv.Quote(id)}
		}
		if expr == "" {
			return nil, "", &ParseError{Line: i + 1, Text: line, Reason: "missing expression"}
		}
		rows = append(rows, evaluator.Restore(id, expr, text))
	}
	var notes string
	if i < len(lines) {
		notes = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
	}
	return rows, notes, nil
}
