// Package paper implements a calculator paper: a log of evaluated expressions
// followed by free-form notes, stored as text.
package paper

import (
	"strings"

	"go.uber.org/zap"

	"github.com/zephyrtronium/calcpaper/evaluator"
)

// Paper is a log of evaluated expressions and notes. It is not safe to use a
// Paper concurrently.
type Paper struct {
	ev    *evaluator.Evaluator
	rows  []evaluator.EvaluatedExpression
	notes string
	path  string
	log   *zap.Logger
}

// Option configures a Paper.
type Option func(*Paper)

// WithEvaluator sets the evaluator the paper owns. The paper resets it when
// reloading or clearing.
func WithEvaluator(ev *evaluator.Evaluator) Option {
	return func(p *Paper) {
		if ev != nil {
			p.ev = ev
		}
	}
}

// WithLogger sets the paper's logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Paper) {
		if l != nil {
			p.log = l
		}
	}
}

// New creates an empty paper. Without WithEvaluator, it uses an evaluator with
// default settings.
func New(opts ...Option) *Paper {
	p := &Paper{log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	if p.ev == nil {
		p.ev = evaluator.New(evaluator.WithLogger(p.log))
	}
	return p
}

// Evaluate evaluates a line and appends it to the paper if it succeeds.
func (p *Paper) Evaluate(text string) (evaluator.EvaluatedExpression, error) {
	r, err := p.ev.Evaluate(text)
	if err != nil {
		return r, err
	}
	p.rows = append(p.rows, r)
	return r, nil
}

// Evaluator returns the paper's evaluator.
func (p *Paper) Evaluator() *evaluator.Evaluator {
	return p.ev
}

// Expressions returns the paper's evaluated expressions in order.
func (p *Paper) Expressions() []evaluator.EvaluatedExpression {
	return append([]evaluator.EvaluatedExpression(nil), p.rows...)
}

// Len returns the number of evaluated expressions.
func (p *Paper) Len() int {
	return len(p.rows)
}

// Notes returns the paper's notes.
func (p *Paper) Notes() string {
	return p.notes
}

// SetNotes replaces the paper's notes. Leading and trailing whitespace is
// removed.
func (p *Paper) SetNotes(notes string) {
	p.notes = strings.TrimSpace(notes)
}

// Path returns the file the paper was last loaded from or stored to.
func (p *Paper) Path() string {
	return p.path
}

// Clear removes all expressions and notes and resets the evaluator.
func (p *Paper) Clear() {
	p.rows = nil
	p.notes = ""
	p.ev.Reset()
}

// Equal returns whether two papers have equal expressions and notes.
func (p *Paper) Equal(o *Paper) bool {
	if len(p.rows) != len(o.rows) || p.notes != o.notes {
		return false
	}
	for i, r := range p.rows {
		if !r.Equal(o.rows[i]) {
			return false
		}
	}
	return true
}
