package expressions

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	name string
	fn   Func

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // push num
	nodeName // push lookup(name)

	nodeCall // name is Func to call, right is link to nodeArg unless niladic
	nodeArg  // name is "" or "," or ";", eval left, right is link to next arg

	nodeNeg // evaluate left, then negate
	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right
	nodePow // evaluate left, exp by right
	nodeNop // evaluate left

	nodeEq  // evaluate left, compare equal to right
	nodeNe  // evaluate left, compare unequal to right
	nodeLt  // evaluate left, compare less than right
	nodeLe  // evaluate left, compare at most right
	nodeGt  // evaluate left, compare greater than right
	nodeGe  // evaluate left, compare at least right
	nodeAnd // evaluate left, and with right
	nodeOr  // evaluate left, or with right
	nodeNot // evaluate left, then invert truth
)

var nodeKindNames = [...]string{
	nodeNone: "None",
	nodeNum:  "Num",
	nodeName: "Name",
	nodeCall: "Call",
	nodeArg:  "Arg",
	nodeNeg:  "Neg",
	nodeAdd:  "Add",
	nodeSub:  "Sub",
	nodeMul:  "Mul",
	nodeDiv:  "Div",
	nodePow:  "Pow",
	nodeNop:  "Nop",
	nodeEq:   "Eq",
	nodeNe:   "Ne",
	nodeLt:   "Lt",
	nodeLe:   "Le",
	nodeGt:   "Gt",
	nodeGe:   "Ge",
	nodeAnd:  "And",
	nodeOr:   "Or",
	nodeNot:  "Not",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeKindNames[k]
}

// boolean returns whether the node kind always produces a truth value.
func (k nodeKind) boolean() bool {
	switch k {
	case nodeEq, nodeNe, nodeLt, nodeLe, nodeGt, nodeGe, nodeAnd, nodeOr, nodeNot:
		return true
	}
	return false
}

// binopText is the canonical spelling of binary operators for formatting.
var binopText = map[nodeKind]string{
	nodeAdd: " + ",
	nodeSub: " - ",
	nodePow: " ^ ",
	nodeEq:  " = ",
	nodeNe:  " != ",
	nodeLt:  " < ",
	nodeLe:  " <= ",
	nodeGt:  " > ",
	nodeGe:  " >= ",
	nodeAnd: " && ",
	nodeOr:  " || ",
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false, false)
	return b.String()
}

func (n *node) fmt(b *strings.Builder, square, alt bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b, square, alt)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b, square, alt)
		}
		b.WriteByte('$')
	case nodeNum, nodeName:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		n.fmtargs(b, !square, alt)
	case nodeArg:
		// Args usually only appear inside calls, which are handled by fmtargs.
		b.WriteByte(':')
		n.left.fmt(b, !square, alt)
		if n.right != nil {
			n.right.fmt(b, !square, alt)
		}
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b, !square, alt)
	case nodeNot:
		b.WriteByte('!')
		n.left.fmt(b, !square, alt)
	case nodeMul:
		n.left.fmt(b, !square, alt)
		if !alt {
			b.WriteString(" * ")
		} else {
			b.WriteString(" × ")
		}
		n.right.fmt(b, !square, alt)
	case nodeDiv:
		n.left.fmt(b, !square, alt)
		if !alt {
			b.WriteString(" / ")
		} else {
			b.WriteString(" ÷ ")
		}
		n.right.fmt(b, !square, alt)
	case nodeAdd, nodeSub, nodePow, nodeEq, nodeNe, nodeLt, nodeLe, nodeGt, nodeGe, nodeAnd, nodeOr:
		n.left.fmt(b, !square, alt)
		b.WriteString(binopText[n.kind])
		n.right.fmt(b, !square, alt)
	case nodeNop:
		b.WriteByte('+')
		n.left.fmt(b, !square, alt)
	default:
		panic("expressions: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

func (n *node) fmtargs(b *strings.Builder, square, alt bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	if n.right == nil {
		// Niladic call.
		return
	}
	n = n.right
	if n.kind != nodeArg {
		b.WriteString("***")
		n.fmt(b, !square, alt)
		return
	}
	n.left.fmt(b, !square, alt)
	for n.right != nil {
		n = n.right
		if n.kind != nodeArg {
			b.WriteString("***")
			n.fmt(b, !square, alt)
			return
		}
		b.WriteString(", ")
		n.left.fmt(b, !square, alt)
	}
}
