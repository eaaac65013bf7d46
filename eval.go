package rewrite

import (
	"io"
	"log"
	"strings"
)

// Special forms receive their arguments unevaluated.
const (
	setAction     Name = "Set"
	delayedAction Name = "Delayed"
	ifAction      Name = "If"
)

func special(name Name) bool {
	switch name {
	case setAction, delayedAction, ifAction:
		return true
	}
	return false
}

// Rule is the parameter and body of an operator defined by Delayed.
type Rule struct {
	Param Name
	Body  *Expression
}

// Engine is an evaluation session. It holds the global scope, the operator
// table, and the rules defined by Delayed, all of which persist across
// evaluations. It is not safe to use an Engine concurrently.
type Engine struct {
	global *Scope
	funcs  map[Name]Func
	rules  map[Name]Rule
	prec   uint
	strict bool
	keep   bool
	trace  *log.Logger

	depth int
	limit int
}

// Option is an option used when creating an engine.
type Option interface {
	engineOption()
}

type (
	varopt struct {
		name Name
		val  Symbol
	}
	varsopt   map[Name]Symbol
	scopeopt  struct{ s *Scope }
	funcsopt  map[Name]Func
	precopt   uint
	depthopt  int
	strictopt struct{}
	keepopt   struct{}
	traceopt  struct{ l *log.Logger }
)

func (varopt) engineOption()    {}
func (varsopt) engineOption()   {}
func (scopeopt) engineOption()  {}
func (funcsopt) engineOption()  {}
func (precopt) engineOption()   {}
func (depthopt) engineOption()  {}
func (strictopt) engineOption() {}
func (keepopt) engineOption()   {}
func (traceopt) engineOption()  {}

// SetVar binds a variable in the global scope.
func SetVar(name Name, val Symbol) Option {
	return varopt{name, val}
}

// SetVars binds any number of variables in the global scope.
func SetVars(vars map[Name]Symbol) Option {
	return varsopt(vars)
}

// Global uses s as the engine's global scope instead of a new one. Set
// modifies s directly.
func Global(s *Scope) Option {
	return scopeopt{s}
}

// Funcs adds operators to the engine. A nil Func removes a default
// operator.
func Funcs(fns map[Name]Func) Option {
	return funcsopt(fns)
}

// Prec sets the precision in bits of constants computed by the engine.
func Prec(prec uint) Option {
	return precopt(prec)
}

// MaxDepth limits the nesting of evaluations, including rule expansions.
// Exceeding the limit gives a *DepthError. Zero means no limit, in which case
// a rule that recurses without end exhausts the stack.
func MaxDepth(n int) Option {
	return depthopt(n)
}

// StrictProduct makes Mul treat 1 as its identity when deciding whether to
// drop a folded constant, and collapse to 0 when any constant argument is
// zero. By default Mul drops a folded constant that equals 0, so that
// Mul[0, x] gives Mul[x] rather than 0.
func StrictProduct() Option {
	return strictopt{}
}

// KeepTerms makes Sum and Mul keep arguments that reduce to expressions, in
// order after the folded constant. By default Sum and Mul keep only names, so
// Sum[1, Sum[x, y]] gives 1.
func KeepTerms() Option {
	return keepopt{}
}

// Trace logs every reduction step to l.
func Trace(l *log.Logger) Option {
	return traceopt{l}
}

// NewEngine creates an evaluation session with the default operators. If no
// precision is given, the default is 64.
func NewEngine(opts ...Option) *Engine {
	e := Engine{
		global: NewScope(nil),
		funcs:  DefaultFuncs(),
		rules:  make(map[Name]Rule),
		prec:   64,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			e.global.Set(opt.name, opt.val)
		case varsopt:
			for k, v := range opt {
				e.global.Set(k, v)
			}
		case scopeopt:
			// Keep variables already set by earlier options.
			for _, k := range e.global.Names() {
				opt.s.Set(k, e.global.Lookup(k))
			}
			e.global = opt.s
		case funcsopt:
			for k, v := range opt {
				if v == nil {
					delete(e.funcs, k)
					continue
				}
				e.funcs[k] = v
			}
		case precopt:
			e.prec = uint(opt)
		case depthopt:
			e.limit = int(opt)
		case strictopt:
			e.strict = true
		case keepopt:
			e.keep = true
		case traceopt:
			e.trace = opt.l
		default:
			panic("rewrite: unknown option type")
		}
	}
	return &e
}

// Global returns the engine's global scope.
func (e *Engine) Global() *Scope {
	return e.global
}

// Prec returns the precision to which constants are computed.
func (e *Engine) Prec() uint {
	return e.prec
}

// Define adds an operator. It is an error to redefine an existing operator or
// a special form.
func (e *Engine) Define(name Name, f Func) error {
	if special(name) || e.funcs[name] != nil {
		return &RedefinitionError{Name: name}
	}
	e.funcs[name] = f
	return nil
}

// LookupRule returns the rule defined for an operator by Delayed.
func (e *Engine) LookupRule(name Name) (Rule, bool) {
	r, ok := e.rules[name]
	return r, ok
}

// Eval evaluates any symbol. Constants evaluate to themselves, names to
// their values in scope or themselves if free, and expressions as by
// Evaluate. If scope is nil, the global scope is used.
func (e *Engine) Eval(s Symbol, scope *Scope) (Symbol, error) {
	if scope == nil {
		scope = e.global
	}
	return e.arg(s, scope)
}

// Evaluate reduces an expression. Names in arguments are resolved through
// scope, or the global scope if scope is nil. Set always binds in the global
// scope, regardless of scope.
func (e *Engine) Evaluate(x *Expression, scope *Scope) (Symbol, error) {
	if scope == nil {
		scope = e.global
	}
	if e.limit > 0 && e.depth >= e.limit {
		return nil, &DepthError{Limit: e.limit, Expr: x}
	}
	e.depth++
	defer func() { e.depth-- }()

	switch x.Action {
	case setAction:
		return e.set(x, scope)
	case delayedAction:
		return e.delayed(x)
	case ifAction:
		return e.cond(x, scope)
	}

	args := make([]Symbol, len(x.Args))
	for i, a := range x.Args {
		v, err := e.arg(a, scope)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	y := &Expression{Action: x.Action, Args: args}
	f := e.funcs[x.Action]
	if f == nil {
		return nil, &UndefinedError{Name: x.Action}
	}
	if !f.CanCall(len(args)) {
		return nil, &ArityError{Func: x.Action, Len: len(args)}
	}
	r, err := f.Call(e, y)
	if err != nil {
		return nil, err
	}
	e.tracef("%v -> %v", y, r)
	return r, nil
}

// arg reduces an argument.
func (e *Engine) arg(a Symbol, scope *Scope) (Symbol, error) {
	switch a := a.(type) {
	case *Expression:
		return e.Evaluate(a, scope)
	case Name:
		return scope.Resolve(a), nil
	default:
		return a, nil
	}
}

// set evaluates Set[target, value]. The result is the target.
func (e *Engine) set(x *Expression, scope *Scope) (Symbol, error) {
	if len(x.Args) != 2 {
		return nil, &ArityError{Func: x.Action, Len: len(x.Args)}
	}
	target, ok := x.Args[0].(Name)
	if !ok {
		return nil, &AssignError{Target: x.Args[0]}
	}
	v, err := e.arg(x.Args[1], scope)
	if err != nil {
		return nil, err
	}
	e.global.Set(target, v)
	e.tracef("%v = %v", target, v)
	return target, nil
}

// delayed evaluates Delayed[name, param, body]. The result is x.
func (e *Engine) delayed(x *Expression) (Symbol, error) {
	if len(x.Args) != 3 {
		return nil, &ArityError{Func: x.Action, Len: len(x.Args)}
	}
	name, ok := x.Args[0].(Name)
	if !ok {
		return nil, &FormError{Form: x.Action, Arg: 1, Want: "a name", Got: x.Args[0]}
	}
	param, ok := x.Args[1].(Name)
	if !ok {
		return nil, &FormError{Form: x.Action, Arg: 2, Want: "a name", Got: x.Args[1]}
	}
	body, ok := x.Args[2].(*Expression)
	if !ok {
		return nil, &FormError{Form: x.Action, Arg: 3, Want: "an expression", Got: x.Args[2]}
	}
	if err := e.Define(name, delayed{name}); err != nil {
		return nil, err
	}
	e.rules[name] = Rule{Param: param, Body: body}
	e.tracef("%v[%v] := %v", name, param, body)
	return x, nil
}

// cond evaluates If[cond, then, else]. Only the selected branch is reduced.
// A condition that is neither True nor False leaves the form symbolic.
func (e *Engine) cond(x *Expression, scope *Scope) (Symbol, error) {
	if len(x.Args) != 2 && len(x.Args) != 3 {
		return nil, &ArityError{Func: x.Action, Len: len(x.Args)}
	}
	c, err := e.arg(x.Args[0], scope)
	if err != nil {
		return nil, err
	}
	switch c {
	case True:
		return e.arg(x.Args[1], scope)
	case False:
		if len(x.Args) == 2 {
			return Null, nil
		}
		return e.arg(x.Args[2], scope)
	}
	args := make([]Symbol, 0, len(x.Args))
	args = append(args, c)
	args = append(args, x.Args[1:]...)
	return &Expression{Action: x.Action, Args: args}, nil
}

func (e *Engine) tracef(format string, args ...interface{}) {
	if e.trace == nil {
		return
	}
	e.trace.Printf(format, args...)
}

// Eval is a shortcut to parse an expression and evaluate it in a new engine.
func Eval(src io.RuneScanner, opts ...Option) (Symbol, error) {
	var popts []ParseOption
	for _, opt := range opts {
		if p, ok := opt.(precopt); ok {
			popts = append(popts, ParsePrec(uint(p)))
		}
	}
	s, err := Parse(src, popts...)
	if err != nil {
		return nil, err
	}
	return NewEngine(opts...).Eval(s, nil)
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...Option) (Symbol, error) {
	return Eval(strings.NewReader(src), opts...)
}
