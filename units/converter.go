package units

import (
	"errors"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/zephyrtronium/calcpaper/expressions"
)

// Converter holds registries of prefixes and units and the graph of
// conversions between units. It is not safe to use a Converter concurrently.
type Converter struct {
	prefixesByName   map[string]Prefix
	prefixesBySymbol map[string]Prefix
	unitsByName      map[string]Unit
	unitsByAlias     map[string]Unit

	factors  map[unitKey]map[unitKey]*big.Rat
	formulas map[unitKey]map[unitKey]formula

	// memo holds resolved factor paths. Registration clears it.
	memo map[[2]unitKey]*big.Rat

	log *zap.Logger
}

// formula is a conversion expression in the variable x.
type formula struct {
	src  string
	expr *expressions.Expr
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger used to report skipped definitions.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.log = l
		}
	}
}

// NewConverter creates an empty converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		prefixesByName:   make(map[string]Prefix),
		prefixesBySymbol: make(map[string]Prefix),
		unitsByName:      make(map[string]Unit),
		unitsByAlias:     make(map[string]Unit),
		factors:          make(map[unitKey]map[unitKey]*big.Rat),
		formulas:         make(map[unitKey]map[unitKey]formula),
		memo:             make(map[[2]unitKey]*big.Rat),
		log:              zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterPrefix adds a prefix, replacing any prefix with the same name or
// symbol.
func (c *Converter) RegisterPrefix(p Prefix) {
	c.prefixesByName[fold(p.name)] = p
	if p.symbol != "" {
		c.prefixesBySymbol[p.symbol] = p
	}
	clear(c.memo)
}

// RegisterUnit adds a unit, replacing any unit with the same name or alias.
func (c *Converter) RegisterUnit(u Unit) {
	c.unitsByName[fold(u.name)] = u
	for _, a := range u.aliases {
		c.unitsByAlias[a] = u
	}
	clear(c.memo)
}

// RegisterFactor records that one from is f of to. The inverse conversion is
// implied.
func (c *Converter) RegisterFactor(from, to Unit, f *big.Rat) error {
	if f.Sign() == 0 {
		return &ParseError{Line: from.String() + " " + f.RatString() + " " + to.String(), Reason: "conversion factor is zero"}
	}
	if from.Exponent() != to.Exponent() {
		return &IncompatibleDimensionError{From: from.String(), To: to.String()}
	}
	m := c.factors[from.key()]
	if m == nil {
		m = make(map[unitKey]*big.Rat)
		c.factors[from.key()] = m
	}
	m[to.key()] = new(big.Rat).Set(f)
	clear(c.memo)
	return nil
}

// RegisterFormula records a conversion from one unit to another as an
// expression in x, the value in the from unit. The inverse conversion must be
// registered separately.
func (c *Converter) RegisterFormula(from, to Unit, src string) error {
	e, err := expressions.Parse(strings.NewReader(src))
	if err != nil {
		return &ParseError{Line: src, Reason: "bad formula", Err: err}
	}
	for _, v := range e.Vars() {
		if v != "x" {
			return &ParseError{Line: src, Reason: "formula uses variable " + strconv.Quote(v) + " other than x"}
		}
	}
	m := c.formulas[from.key()]
	if m == nil {
		m = make(map[unitKey]formula)
		c.formulas[from.key()] = m
	}
	m[to.key()] = formula{src: src, expr: e}
	clear(c.memo)
	return nil
}

// Prefix finds a prefix by symbol, or by name ignoring case.
func (c *Converter) Prefix(token string) (Prefix, bool) {
	if p, ok := c.prefixesBySymbol[token]; ok {
		return p, true
	}
	p, ok := c.prefixesByName[fold(token)]
	return p, ok
}

// Prefixes returns all registered prefixes ordered by name.
func (c *Converter) Prefixes() []Prefix {
	r := make([]Prefix, 0, len(c.prefixesByName))
	for _, p := range c.prefixesByName {
		r = append(r, p)
	}
	sort.Slice(r, func(i, j int) bool { return fold(r[i].name) < fold(r[j].name) })
	return r
}

// Units returns all registered units ordered by name.
func (c *Converter) Units() []Unit {
	r := make([]Unit, 0, len(c.unitsByName))
	for _, u := range c.unitsByName {
		r = append(r, u)
	}
	sort.Slice(r, func(i, j int) bool { return fold(r[i].name) < fold(r[j].name) })
	return r
}

// GetUnit finds a unit by alias or name. The token may carry an exponent as a
// ^n or ²/³ suffix or a leading square, sq, cubic, or cu.
func (c *Converter) GetUnit(token string) (Unit, error) {
	name, exp, explicit, err := splitExponent(token)
	if err != nil {
		return Unit{}, err
	}
	u, ok := c.lookupUnit(name)
	if !ok {
		return Unit{}, &UnknownUnitError{Name: token}
	}
	return raise(u, exp, explicit)
}

// GetPrefixedUnit finds a unit with an optional prefix. The whole token is
// tried as a unit first, then each split into a prefix and a unit from the
// shortest prefix up.
func (c *Converter) GetPrefixedUnit(token string) (PrefixedUnit, error) {
	name, exp, explicit, err := splitExponent(token)
	if err != nil {
		return PrefixedUnit{}, err
	}
	if u, ok := c.lookupUnit(name); ok {
		u, err := raise(u, exp, explicit)
		return PrefixedUnit{Prefix: BasePrefix, Unit: u}, err
	}
	for i := range name {
		if i == 0 {
			continue
		}
		p, ok := c.Prefix(name[:i])
		if !ok {
			continue
		}
		u, ok := c.lookupUnit(name[i:])
		if !ok {
			continue
		}
		u, err := raise(u, exp, explicit)
		return PrefixedUnit{Prefix: p, Unit: u}, err
	}
	return PrefixedUnit{}, &UnknownUnitError{Name: token}
}

// lookupUnit finds a unit by exact alias, then by name ignoring case, then by
// name with a plural s removed.
//
// TODO(zeph): the plural fallback lets "xs" resolve to a unit named "x" even
// when a different unit spelled "xs" is wanted but not yet registered; decide
// whether plurals should be declared explicitly.
func (c *Converter) lookupUnit(name string) (Unit, bool) {
	if name == One.name {
		return One, true
	}
	if u, ok := c.unitsByAlias[name]; ok {
		return u, true
	}
	if u, ok := c.unitsByName[fold(name)]; ok {
		return u, true
	}
	if s, ok := strings.CutSuffix(name, "s"); ok && s != "" {
		if u, ok := c.unitsByName[fold(s)]; ok {
			return u, true
		}
	}
	return Unit{}, false
}

func raise(u Unit, exp int, explicit bool) (Unit, error) {
	if !explicit || exp == u.Exponent() {
		return u, nil
	}
	return u.WithExponent(exp)
}

// splitExponent separates an exponent from a unit token.
func splitExponent(token string) (name string, exp int, explicit bool, err error) {
	name = strings.TrimSpace(token)
	if kw, rest, ok := strings.Cut(name, " "); ok {
		switch fold(kw) {
		case "square", "sq":
			return strings.TrimSpace(rest), 2, true, nil
		case "cubic", "cu":
			return strings.TrimSpace(rest), 3, true, nil
		}
	}
	if i := strings.LastIndexByte(name, '^'); i > 0 {
		n, err := strconv.Atoi(name[i+1:])
		switch {
		case errors.Is(err, strconv.ErrRange), err == nil && n > MaxExponent:
			return "", 0, false, &ParseError{Line: token, Reason: "exponent " + name[i+1:] + " is greater than " + strconv.Itoa(MaxExponent)}
		case err == nil:
			return name[:i], n, true, nil
		}
	}
	r, sz := utf8.DecodeLastRuneInString(name)
	switch r {
	case '²':
		return name[:len(name)-sz], 2, true, nil
	case '³':
		return name[:len(name)-sz], 3, true, nil
	}
	return name, 1, false, nil
}

// ConversionFactor finds the factor f such that one from is f of to.
func (c *Converter) ConversionFactor(from, to Unit) (*big.Rat, error) {
	if from.Equal(to) {
		return big.NewRat(1, 1), nil
	}
	if from.Exponent() != to.Exponent() {
		return nil, &IncompatibleDimensionError{From: from.String(), To: to.String()}
	}
	k := [2]unitKey{from.key(), to.key()}
	if f, ok := c.memo[k]; ok {
		return new(big.Rat).Set(f), nil
	}
	f, ok := c.factorPath(k[0], k[1], make(map[unitKey]bool))
	if !ok {
		return nil, &UnresolvedConversionError{From: from.String(), To: to.String()}
	}
	c.memo[k] = f
	return new(big.Rat).Set(f), nil
}

// factorPath searches depth-first for a chain of factors from one unit to
// another. visited belongs to the search.
func (c *Converter) factorPath(from, to unitKey, visited map[unitKey]bool) (*big.Rat, bool) {
	visited[from] = true
	edges := c.factorEdges(from)
	for _, e := range edges {
		if e.to == to {
			return new(big.Rat).Set(e.f), true
		}
	}
	for _, e := range edges {
		if visited[e.to] {
			continue
		}
		if f, ok := c.factorPath(e.to, to, visited); ok {
			return f.Mul(f, e.f), true
		}
	}
	return nil, false
}

type factorEdge struct {
	to unitKey
	f  *big.Rat
}

// factorEdges lists the units one step from u in priority order: registered
// factors, then reciprocals of factors into u, then, for u with exponent n > 1,
// the edges of the plain unit raised to n. Each group is sorted.
func (c *Converter) factorEdges(u unitKey) []factorEdge {
	edges := c.directEdges(u)
	if u.exp > 1 {
		plain := c.directEdges(unitKey{name: u.name, exp: 1})
		for _, e := range plain {
			edges = append(edges, factorEdge{
				to: unitKey{name: e.to.name, exp: u.exp},
				f:  ratPow(e.f, int64(u.exp)),
			})
		}
	}
	return edges
}

func (c *Converter) directEdges(u unitKey) []factorEdge {
	var fwd, rev []factorEdge
	for to, f := range c.factors[u] {
		fwd = append(fwd, factorEdge{to: to, f: f})
	}
	for from, m := range c.factors {
		if f, ok := m[u]; ok {
			rev = append(rev, factorEdge{to: from, f: new(big.Rat).Inv(f)})
		}
	}
	byKey := func(s []factorEdge) func(i, j int) bool {
		return func(i, j int) bool { return s[i].to.less(s[j].to) }
	}
	sort.Slice(fwd, byKey(fwd))
	sort.Slice(rev, byKey(rev))
	return append(fwd, rev...)
}

// Convert converts v from one prefixed unit to another. Conversions by factor
// are preferred. Otherwise a chain of formulas is evaluated, with the source
// prefix applied before the first and the target prefix after the last. If
// prec is 0, v's precision is used.
func (c *Converter) Convert(from, to PrefixedUnit, v *big.Float, prec uint) (*big.Float, error) {
	if prec == 0 {
		prec = v.Prec()
	}
	f, err := c.prefixedFactor(from, to)
	if err == nil {
		return scale(v, f, prec), nil
	}
	if !errors.As(err, new(*UnresolvedConversionError)) {
		return nil, err
	}
	hops, ok := c.formulaPath(from.Unit.key(), to.Unit.key(), make(map[unitKey]bool))
	if !ok {
		return nil, &UnresolvedConversionError{From: from.String(), To: to.String()}
	}
	x := scale(v, prefixFactor(from), prec)
	for _, h := range hops {
		x, err = h.apply(x, prec)
		if err != nil {
			return nil, err
		}
	}
	return scale(x, new(big.Rat).Inv(prefixFactor(to)), prec), nil
}

// prefixedFactor is the factor between two prefixed units.
func (c *Converter) prefixedFactor(from, to PrefixedUnit) (*big.Rat, error) {
	f, err := c.ConversionFactor(from.Unit, to.Unit)
	if err != nil {
		return nil, err
	}
	f.Mul(f, prefixFactor(from))
	f.Quo(f, prefixFactor(to))
	return f, nil
}

// prefixFactor is the scale a prefix gives its unit. A derived power like km²
// is (k·m)², so the prefix is raised with it; a unit declared with its
// exponent, like kL, takes the prefix once.
func prefixFactor(u PrefixedUnit) *big.Rat {
	if !u.Unit.Derived() {
		return u.Prefix.Factor()
	}
	return ratPow(u.Prefix.Factor(), int64(u.Unit.Exponent()))
}

func scale(v *big.Float, f *big.Rat, prec uint) *big.Float {
	r := new(big.Float).SetPrec(prec).SetRat(f)
	return r.Mul(r, v)
}

// hop is one step of a formula chain: either a formula or a factor.
type hop struct {
	formula *expressions.Expr
	factor  *big.Rat
}

func (h hop) apply(x *big.Float, prec uint) (*big.Float, error) {
	if h.formula == nil {
		return scale(x, h.factor, prec), nil
	}
	ctx := expressions.NewContext(expressions.Prec(prec), expressions.SetVar("x", x))
	r := ctx.Eval(h.formula)
	if r == nil {
		return nil, ctx.Err()
	}
	return new(big.Float).SetPrec(prec).Set(r), nil
}

// formulaPath searches depth-first for a chain of formulas and factors from
// one unit to another, trying formulas first at each step.
func (c *Converter) formulaPath(from, to unitKey, visited map[unitKey]bool) ([]hop, bool) {
	visited[from] = true
	type next struct {
		to unitKey
		h  hop
	}
	var steps []next
	var keys []unitKey
	for k := range c.formulas[from] {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	for _, k := range keys {
		steps = append(steps, next{to: k, h: hop{formula: c.formulas[from][k].expr}})
	}
	for _, e := range c.factorEdges(from) {
		steps = append(steps, next{to: e.to, h: hop{factor: e.f}})
	}
	for _, s := range steps {
		if s.to == to {
			return []hop{s.h}, true
		}
	}
	for _, s := range steps {
		if visited[s.to] {
			continue
		}
		if rest, ok := c.formulaPath(s.to, to, visited); ok {
			return append([]hop{s.h}, rest...), true
		}
	}
	return nil, false
}

// Formula returns the source of the formula registered from one unit to
// another, if there is one.
func (c *Converter) Formula(from, to Unit) (string, bool) {
	f, ok := c.formulas[from.key()][to.key()]
	return f.src, ok
}

// ConvertCompound converts v between compound units. Compounds of a single
// unit convert as by Convert. Otherwise both compounds must have the same
// operators in the same order, and each pair of units must convert by factor.
func (c *Converter) ConvertCompound(from, to CompoundUnit, v *big.Float, prec uint) (*big.Float, error) {
	if prec == 0 {
		prec = v.Prec()
	}
	fu, fok := from.Single()
	tu, tok := to.Single()
	if fok && tok {
		return c.Convert(fu, tu, v, prec)
	}
	if len(from.terms) != len(to.terms) {
		return nil, &IncompatibleDimensionError{From: from.String(), To: to.String()}
	}
	total := big.NewRat(1, 1)
	for i, ft := range from.terms {
		tt := to.terms[i]
		if ft.op != tt.op {
			return nil, &IncompatibleDimensionError{From: from.String(), To: to.String()}
		}
		f, err := c.prefixedFactor(ft.unit, tt.unit)
		if err != nil {
			return nil, err
		}
		if ft.op == '/' {
			total.Quo(total, f)
		} else {
			total.Mul(total, f)
		}
	}
	return scale(v, total, prec), nil
}
