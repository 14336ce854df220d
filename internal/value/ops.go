package value

import (
	"math"
	"strings"

	"pcg/internal/domain"
)

// BinaryOp is a two-operand operator
type BinaryOp int

const (
	OpOr BinaryOp = iota
	OpAnd
	OpGt
	OpLt
	OpGe
	OpLe
	OpEq
	OpNe
	OpIs
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

var binaryNames = map[BinaryOp]string{
	OpOr:  "logical or",
	OpAnd: "logical and",
	OpGt:  "greater than",
	OpLt:  "less than",
	OpGe:  "greater than or equal",
	OpLe:  "less than or equal",
	OpEq:  "equivalence",
	OpNe:  "inequality",
	OpIs:  "is-type",
	OpAdd: "addition",
	OpSub: "subtraction",
	OpMul: "multiplication",
	OpDiv: "division",
	OpMod: "modulus",
}

func (op BinaryOp) String() string { return binaryNames[op] }

// UnaryOp is a one-operand operator
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

func (op UnaryOp) String() string {
	if op == OpNeg {
		return "unary negation"
	}
	return "logical complement"
}

func illegal(op string, kinds ...Kind) error {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return domain.IllegalOperation(op, "not supported for %s", strings.Join(names, " and "))
}

// Binary applies op to a and b.
func Binary(op BinaryOp, a, b Value) (Value, error) {
	switch op {
	case OpIs:
		if b.kind == KindString {
			return Bool(a.kind.String() == b.str), nil
		}
	case OpAdd:
		switch {
		case a.kind == KindNumber && b.kind == KindNumber:
			return Number(a.num + b.num), nil
		case a.kind == KindString || b.kind == KindString:
			return String(a.String() + b.String()), nil
		}
	case OpSub, OpMul, OpDiv, OpMod:
		if a.kind == KindNumber && b.kind == KindNumber {
			return Number(arith(op, a.num, b.num)), nil
		}
	case OpGt, OpLt, OpGe, OpLe:
		switch {
		case a.kind == KindNumber && b.kind == KindNumber:
			return Bool(compare(op, cmpFloat(a.num, b.num))), nil
		case a.kind == KindString && b.kind == KindString:
			return Bool(compare(op, strings.Compare(a.str, b.str))), nil
		}
	case OpEq, OpNe:
		if a.kind == b.kind && equatable(a.kind) {
			eq := Equal(a, b)
			return Bool(eq == (op == OpEq)), nil
		}
	case OpAnd:
		if a.kind == KindBoolean && b.kind == KindBoolean {
			return Bool(a.boolean && b.boolean), nil
		}
	case OpOr:
		if a.kind == KindBoolean && b.kind == KindBoolean {
			return Bool(a.boolean || b.boolean), nil
		}
	}
	return Undefined(), illegal(op.String(), a.kind, b.kind)
}

// Unary applies op to a
func Unary(op UnaryOp, a Value) (Value, error) {
	switch op {
	case OpNeg:
		if a.kind == KindNumber {
			return Number(-a.num), nil
		}
	case OpNot:
		if a.kind == KindBoolean {
			return Bool(!a.boolean), nil
		}
	}
	return Undefined(), illegal(op.String(), a.kind)
}

func equatable(k Kind) bool {
	switch k {
	case KindNumber, KindString, KindBoolean, KindList, KindConcept, KindGraph:
		return true
	}
	return false
}

func arith(op BinaryOp, x, y float64) float64 {
	switch op {
	case OpSub:
		return x - y
	case OpMul:
		return x * y
	case OpDiv:
		return x / y
	default:
		return math.Mod(x, y)
	}
}

func cmpFloat(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func compare(op BinaryOp, c int) bool {
	switch op {
	case OpGt:
		return c > 0
	case OpLt:
		return c < 0
	case OpGe:
		return c >= 0
	default:
		return c <= 0
	}
}

// Index returns the n-th element of a list, counting from 1
func Index(list, n Value) (Value, error) {
	i, err := listIndex("array element access", list, n)
	if err != nil {
		return Undefined(), err
	}
	return list.list.Items[i], nil
}

// SetIndex replaces the n-th element of a list, counting from 1
func SetIndex(list, n, x Value) error {
	i, err := listIndex("array element assignment", list, n)
	if err != nil {
		return err
	}
	list.list.Items[i] = x
	return nil
}

func listIndex(op string, list, n Value) (int, error) {
	if list.kind != KindList || n.kind != KindNumber {
		return 0, illegal(op, list.kind, n.kind)
	}
	i := int(n.num) - 1
	if i < 0 || i >= len(list.list.Items) {
		return 0, domain.IllegalOperation(op, "invalid list index: %s", n)
	}
	return i, nil
}
