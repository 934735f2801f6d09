package evaluator_test

import (
	"testing"

	"github.com/zephyrtronium/calcpaper/evaluator"
)

func FuzzEvaluate(f *testing.F) {
	f.Add("1+1")
	f.Add("a = 2")
	f.Add("f(x, y) = x^y")
	f.Add("1 + /* unterminated")
	f.Add("0x1f == 31")
	f.Add("#1 * 3")
	f.Add("5 ft to m")
	f.Fuzz(func(t *testing.T, s string) {
		ev := evaluator.New()
		_, _ = ev.Evaluate("1")
		n := ev.Count()
		r, err := ev.Evaluate(s)
		if err != nil {
			if ev.Count() != n {
				t.Errorf("failed evaluation of %q changed the count from %d to %d", s, n, ev.Count())
			}
			return
		}
		if r.ID() == "" || !r.Valid() {
			t.Errorf("%q evaluated to %#v", s, r)
		}
		if ev.Count() != n+1 {
			t.Errorf("evaluating %q changed the count from %d to %d", s, n, ev.Count())
		}
	})
}
