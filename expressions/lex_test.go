package expressions

import (
	"io"
	"strings"
	"testing"
)

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []lexToken
		errs   int
	}{
		// spaces
		{"", nil, 0},
		{" \t \r\n ", nil, 0},
		// numbers
		{"0", []lexToken{{text: "0", kind: tokenNum, pos: 1}}, 0},
		{"9876543210", []lexToken{{text: "9876543210", kind: tokenNum, pos: 1}}, 0},
		{"1 0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"1.0", []lexToken{{text: "1.0", kind: tokenNum, pos: 1}}, 0},
		{"-1", []lexToken{{text: "-", kind: tokenOp, pos: 1}, {text: "1", kind: tokenNum, pos: 2}}, 0},
		{"1e1", []lexToken{{text: "1e1", kind: tokenNum, pos: 1}}, 0},
		{"1e+1", []lexToken{{text: "1e+1", kind: tokenNum, pos: 1}}, 0},
		{"1e-1", []lexToken{{text: "1e-1", kind: tokenNum, pos: 1}}, 0},
		{"1.0e1", []lexToken{{text: "1.0e1", kind: tokenNum, pos: 1}}, 0},
		{".1", []lexToken{{text: ".1", kind: tokenNum, pos: 1}}, 0},
		{".1e1", []lexToken{{text: ".1e1", kind: tokenNum, pos: 1}}, 0},
		{"1+0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "+", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"1*0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "*", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"(1)", []lexToken{{text: "(", kind: tokenOpen, pos: 1}, {text: "1", kind: tokenNum, pos: 2}, {text: ")", kind: tokenClose, pos: 3}}, 0},
		{"1e", []lexToken{{pos: 1}}, 1},
		{".", []lexToken{{pos: 1}}, 1},
		{"1a", []lexToken{{pos: 1}}, 1},
		// identifiers
		{"e", []lexToken{{text: "e", kind: tokenIdent, pos: 1}}, 0},
		{"e1", []lexToken{{text: "e1", kind: tokenIdent, pos: 1}}, 0},
		{"π", []lexToken{{text: "π", kind: tokenIdent, pos: 1}}, 0},
		{"_1", []lexToken{{text: "_1", kind: tokenIdent, pos: 1}}, 0},
		{"_1234_", []lexToken{{text: "_1234_", kind: tokenIdent, pos: 1}}, 0},
		{"e(", []lexToken{{text: "e", kind: tokenIdent, pos: 1}, {text: "(", kind: tokenOpen, pos: 2}}, 0},
		// operators
		{"+", []lexToken{{text: "+", kind: tokenOp, pos: 1}}, 0},
		{"++", []lexToken{{text: "+", kind: tokenOp, pos: 1}, {text: "+", kind: tokenOp, pos: 2}}, 0},
		{"a--b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "-", kind: tokenOp, pos: 2}, {text: "-", kind: tokenOp, pos: 3}, {text: "b", kind: tokenIdent, pos: 4}}, 0},
		{"1<=2", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "<=", kind: tokenOp, pos: 2}, {text: "2", kind: tokenNum, pos: 4}}, 0},
		{"a<>b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "<>", kind: tokenOp, pos: 2}, {text: "b", kind: tokenIdent, pos: 4}}, 0},
		{"a!=b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "!=", kind: tokenOp, pos: 2}, {text: "b", kind: tokenIdent, pos: 4}}, 0},
		{"!a", []lexToken{{text: "!", kind: tokenOp, pos: 1}, {text: "a", kind: tokenIdent, pos: 2}}, 0},
		{"a&&b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "&&", kind: tokenOp, pos: 2}, {text: "b", kind: tokenIdent, pos: 4}}, 0},
		{"a||b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "||", kind: tokenOp, pos: 2}, {text: "b", kind: tokenIdent, pos: 4}}, 0},
		{"1<-2", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "<", kind: tokenOp, pos: 2}, {text: "-", kind: tokenOp, pos: 3}, {text: "2", kind: tokenNum, pos: 4}}, 0},
		{"a=b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "=", kind: tokenOp, pos: 2}, {text: "b", kind: tokenIdent, pos: 3}}, 0},
		{"1≤2", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "≤", kind: tokenOp, pos: 2}, {text: "2", kind: tokenNum, pos: 3}}, 0},
		// brackets
		{"()", []lexToken{{text: "(", kind: tokenOpen, pos: 1}, {text: ")", kind: tokenClose, pos: 2}}, 0},
		{"[]", []lexToken{{text: "[", kind: tokenOpen, pos: 1}, {text: "]", kind: tokenClose, pos: 2}}, 0},
		{"{}", []lexToken{{text: "{", kind: tokenOpen, pos: 1}, {text: "}", kind: tokenClose, pos: 2}}, 0},
		// separators
		{",;", []lexToken{{text: ",", kind: tokenSep, pos: 1}, {text: ";", kind: tokenSep, pos: 2}}, 0},
		// erroneous symbols
		{"$", []lexToken{{pos: 1}}, 1},
		{"a$", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {pos: 2}}, 1},
		{"$a", []lexToken{{pos: 1}, {text: "a", kind: tokenIdent, pos: 2}}, 1},
		{"#", []lexToken{{pos: 1}}, 1},
	}

	for _, c := range cases {
		scan := lex(strings.NewReader(c.src))
		for _, want := range c.tokens {
			got, err := scan.next()
			if err == io.EOF {
				t.Errorf("scanning %q: expected token %v but got EOF", c.src, want)
				continue
			}
			if err != nil {
				if c.errs > 0 {
					c.errs--
					if got.pos != want.pos {
						t.Errorf("scanning %q: error at %d, want %d", c.src, got.pos, want.pos)
					}
					continue
				}
				t.Errorf("scanning %q: unexpected error %v", c.src, err)
				continue
			}
			if got != want {
				t.Errorf("scanning %q: want %v, got %v", c.src, want, got)
			}
		}
		if c.errs > 0 {
			t.Errorf("scanning %q: not enough errors", c.src)
		}
		got, err := scan.next()
		if err != nil || got.kind != tokenEOF {
			t.Errorf("scanning %q: wanted EOF, got %v with error %v", c.src, got, err)
		}
	}
}

func TestTokenKindString(t *testing.T) {
	if s := tokenOp.String(); s != "Op" {
		t.Errorf("tokenOp is %q", s)
	}
	if s := tokenKind(99).String(); s != "tokenKind(99)" {
		t.Errorf("out of range kind is %q", s)
	}
}
