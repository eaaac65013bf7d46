package rewrite

import (
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// Func is an operator handler. The engine reduces every argument before
// calling a Func, so Call sees constants, names, and expressions that could
// not be reduced further.
type Func interface {
	// Call applies the operator. x.Action is the name the operator was
	// applied under, and x.Args has a length for which CanCall returned
	// true. Call must not modify x. An operator that cannot fold its
	// arguments should return x itself so the application stays symbolic.
	Call(e *Engine, x *Expression) (Symbol, error)

	// CanCall returns whether the operator can be applied to n arguments.
	CanCall(n int) bool
}

var globalfuncs = map[Name]Func{
	"Sub":    Binary(func(z, x, y *big.Float) error { z.Sub(x, y); return nil }),
	"Div":    Binary(intdiv),
	"Rem":    Binary(rem),
	"Divide": Binary(quo),
	"Pow":    Binary(pow),

	"Sum": accumulate{identity: 0, op: (*big.Float).Add},
	"Mul": accumulate{identity: 1, op: (*big.Float).Mul, product: true},

	"Greater":        compare(func(c int) bool { return c > 0 }),
	"GreaterOrEqual": compare(func(c int) bool { return c >= 0 }),
	"Less":           compare(func(c int) bool { return c < 0 }),
	"LessOrEqual":    compare(func(c int) bool { return c <= 0 }),

	"Equal": equal{},
	"List":  list{},

	"Exp":  Monadic(func(z, x *big.Float) error { bigfloat.Exp(z, x); return nil }),
	"Log":  Monadic(ln),
	"Sqrt": Monadic(sqrt),
}

// DefaultFuncs returns a copy of the built-in operator table.
func DefaultFuncs() map[Name]Func {
	m := make(map[Name]Func, len(globalfuncs))
	for k, v := range globalfuncs {
		m[k] = v
	}
	return m
}

type binary struct {
	f func(z, x, y *big.Float) error
}

func (b binary) Call(e *Engine, x *Expression) (r Symbol, err error) {
	l, ok := x.Args[0].(Constant)
	if !ok {
		return x, nil
	}
	m, ok := x.Args[1].(Constant)
	if !ok {
		return x, nil
	}
	defer nanerr(&err, &DomainError{X: l.val(), Func: x.Action})
	z := new(big.Float).SetPrec(e.prec)
	if err := b.f(z, l.val(), m.val()); err != nil {
		if d, ok := err.(*DomainError); ok {
			d.Func = x.Action
		}
		return nil, err
	}
	return Constant{x: z}, nil
}

func (binary) CanCall(n int) bool {
	return n == 2
}

// Binary wraps a function of two numbers into a Func. The operator folds
// when both arguments are constants and otherwise leaves the application
// unchanged. f must set z to its result and must not modify x or y. f may
// return a *DomainError or panic with big.ErrNaN for arguments outside its
// domain.
func Binary(f func(z, x, y *big.Float) error) Func {
	return binary{f}
}

type monadic struct {
	f func(z, x *big.Float) error
}

func (m monadic) Call(e *Engine, x *Expression) (r Symbol, err error) {
	in, ok := x.Args[0].(Constant)
	if !ok {
		return x, nil
	}
	defer nanerr(&err, &DomainError{X: in.val(), Arg: 1, Func: x.Action})
	z := new(big.Float).SetPrec(e.prec)
	if err := m.f(z, in.val()); err != nil {
		if d, ok := err.(*DomainError); ok {
			d.Func = x.Action
		}
		return nil, err
	}
	return Constant{x: z}, nil
}

func (monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one number into a Func, with the same folding
// policy as Binary.
func Monadic(f func(z, x *big.Float) error) Func {
	return monadic{f}
}

// nanerr converts a big.ErrNaN panic into d.
func nanerr(err *error, d *DomainError) {
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(big.ErrNaN); !ok {
		panic(r)
	}
	*err = d
}

func quo(z, x, y *big.Float) error {
	if y.Sign() == 0 {
		return &DomainError{X: y, Arg: 2}
	}
	z.Quo(x, y)
	return nil
}

// intdiv sets z to x/y truncated toward zero.
func intdiv(z, x, y *big.Float) error {
	if err := quo(z, x, y); err != nil {
		return err
	}
	if z.IsInf() {
		return nil
	}
	i, _ := z.Int(nil)
	z.SetInt(i)
	return nil
}

// rem sets z to the remainder of x/y truncated toward zero, which has the
// sign of x.
func rem(z, x, y *big.Float) error {
	q := new(big.Float).SetPrec(z.Prec())
	if err := intdiv(q, x, y); err != nil {
		return err
	}
	q.Mul(q, y)
	z.Sub(x, q)
	return nil
}

func pow(z, x, y *big.Float) error {
	if y.Sign() == 0 {
		z.SetInt64(1)
		return nil
	}
	switch x.Sign() {
	case 0:
		if y.Sign() < 0 {
			return &DomainError{X: x, Arg: 1}
		}
	case -1:
		if !y.IsInt() {
			return &DomainError{X: x, Arg: 1}
		}
		i, _ := y.Int(nil)
		bigfloat.Pow(z, new(big.Float).Neg(x), y)
		if i.Bit(0) == 1 {
			z.Neg(z)
		}
		return nil
	}
	bigfloat.Pow(z, x, y)
	return nil
}

func ln(z, x *big.Float) error {
	if x.Sign() <= 0 {
		return &DomainError{X: x, Arg: 1}
	}
	bigfloat.Log(z, x)
	return nil
}

func sqrt(z, x *big.Float) error {
	if x.Sign() < 0 {
		return &DomainError{X: x, Arg: 1}
	}
	z.Sqrt(x)
	return nil
}

// accumulate folds the constant arguments of a variadic operator and keeps
// the names in order. Other expressions are discarded unless the engine was
// created with KeepTerms.
type accumulate struct {
	identity int64
	op       func(z, x, y *big.Float) *big.Float
	product  bool
}

func (a accumulate) Call(e *Engine, x *Expression) (r Symbol, err error) {
	acc := new(big.Float).SetPrec(e.prec).SetInt64(a.identity)
	d := &DomainError{Func: x.Action}
	defer nanerr(&err, d)
	var rest []Symbol
	for i, arg := range x.Args {
		switch arg := arg.(type) {
		case Constant:
			d.X, d.Arg = arg.val(), i+1
			a.op(acc, acc, arg.val())
		case Name:
			rest = append(rest, arg)
		default:
			if e.keep {
				rest = append(rest, arg)
			}
		}
	}
	if len(rest) == 0 {
		return Constant{x: acc}, nil
	}
	// Products have historically dropped a zero constant rather than a unit
	// one. StrictProduct restores the arithmetic meaning.
	drop := a.identity
	if a.product && !e.strict {
		drop = 0
	}
	if a.product && e.strict && acc.Sign() == 0 {
		return Constant{x: acc}, nil
	}
	if acc.Cmp(new(big.Float).SetInt64(drop)) == 0 {
		return &Expression{Action: x.Action, Args: rest}, nil
	}
	args := make([]Symbol, 0, len(rest)+1)
	args = append(args, Constant{x: acc})
	args = append(args, rest...)
	return &Expression{Action: x.Action, Args: args}, nil
}

func (accumulate) CanCall(n int) bool {
	return true
}

// compare is a comparison operator. Comparisons involving anything other
// than two constants are false.
type compare func(c int) bool

func (f compare) Call(e *Engine, x *Expression) (Symbol, error) {
	l, ok := x.Args[0].(Constant)
	if !ok {
		return False, nil
	}
	r, ok := x.Args[1].(Constant)
	if !ok {
		return False, nil
	}
	return Bool(f(l.Cmp(r))), nil
}

func (compare) CanCall(n int) bool {
	return n == 2
}

type equal struct{}

func (equal) Call(e *Engine, x *Expression) (Symbol, error) {
	return Bool(Equal(x.Args[0], x.Args[1])), nil
}

func (equal) CanCall(n int) bool {
	return n == 2
}

// list evaluates to its last argument.
type list struct{}

func (list) Call(e *Engine, x *Expression) (Symbol, error) {
	return x.Args[len(x.Args)-1], nil
}

func (list) CanCall(n int) bool {
	return n > 0
}

// delayed applies a rule registered by Delayed.
type delayed struct {
	name Name
}

func (d delayed) Call(e *Engine, x *Expression) (Symbol, error) {
	r := e.rules[d.name]
	body := Replace(r.Body, r.Param, x.Args[0])
	e.tracef("expand %v with %v = %v: %v", x, r.Param, x.Args[0], body)
	return e.Evaluate(body, e.global)
}

func (delayed) CanCall(n int) bool {
	return n == 1
}
