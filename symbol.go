package rewrite

import (
	"math/big"
	"strings"
)

// Symbol is a term of the expression language: a Constant, a Name, or an
// *Expression. Symbols are immutable once constructed; evaluation builds new
// symbols rather than modifying existing ones.
type Symbol interface {
	String() string
	fmt(b *strings.Builder)
}

// Constant is a numeric leaf. The zero value is the number 0.
type Constant struct {
	x *big.Float
}

// Num creates a constant holding a copy of x.
func Num(x *big.Float) Constant {
	return Constant{x: new(big.Float).Copy(x)}
}

// Int creates a constant with an integer value.
func Int(v int64) Constant {
	return Constant{x: new(big.Float).SetInt64(v)}
}

// Float creates a constant from a float64. It panics if v is NaN.
func Float(v float64) Constant {
	return Constant{x: big.NewFloat(v)}
}

// Value returns a copy of the constant's value.
func (c Constant) Value() *big.Float {
	if c.x == nil {
		return new(big.Float)
	}
	return new(big.Float).Copy(c.x)
}

// val returns the constant's value without copying. The result must not be
// modified.
func (c Constant) val() *big.Float {
	if c.x == nil {
		return new(big.Float)
	}
	return c.x
}

// Cmp compares the values of two constants as big.Float.Cmp does.
func (c Constant) Cmp(d Constant) int {
	return c.val().Cmp(d.val())
}

// String formats the constant as a decimal literal, using exponent notation
// only for very large or very small magnitudes. Infinities are +Inf and -Inf.
func (c Constant) String() string {
	x := c.val()
	if x.IsInf() || x.Sign() == 0 {
		return x.Text('g', -1)
	}
	// x = mant × 2^exp with 0.5 <= |mant| < 1, so this is about 1e-7 to 1e21.
	if exp := x.MantExp(nil); exp > -23 && exp <= 70 {
		return x.Text('f', -1)
	}
	return x.Text('g', -1)
}

func (c Constant) fmt(b *strings.Builder) {
	b.WriteString(c.String())
}

// Name is an identifier leaf. A name is free unless a scope binds it.
type Name string

func (n Name) String() string {
	return string(n)
}

func (n Name) fmt(b *strings.Builder) {
	b.WriteString(string(n))
}

// Names that evaluation gives meaning to.
const (
	True  Name = "True"
	False Name = "False"
	Null  Name = "Null"
)

// Bool returns True or False.
func Bool(v bool) Name {
	if v {
		return True
	}
	return False
}

// Expression is the application of an operator to an ordered list of
// arguments. Action is always a name; the language has no higher-order
// operators.
type Expression struct {
	Action Name
	Args   []Symbol
}

// New creates an expression. The argument list is copied.
func New(action Name, args ...Symbol) *Expression {
	return &Expression{Action: action, Args: append([]Symbol(nil), args...)}
}

func (x *Expression) String() string {
	var b strings.Builder
	x.fmt(&b)
	return b.String()
}

func (x *Expression) fmt(b *strings.Builder) {
	b.WriteString(string(x.Action))
	b.WriteByte('[')
	for i, arg := range x.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		arg.fmt(b)
	}
	b.WriteByte(']')
}

// Equal reports whether two symbols are structurally equal. Constants are
// equal when their values are, names when their identifiers are, and
// expressions when their actions and all arguments are.
func Equal(a, b Symbol) bool {
	switch a := a.(type) {
	case Constant:
		b, ok := b.(Constant)
		return ok && a.Cmp(b) == 0
	case Name:
		b, ok := b.(Name)
		return ok && a == b
	case *Expression:
		b, ok := b.(*Expression)
		if !ok || a.Action != b.Action || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	default:
		panic("rewrite: invalid symbol type")
	}
}
