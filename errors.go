package rewrite

import (
	"math/big"
	"strconv"
)

// AssignError is an error from a Set whose target is not a name.
type AssignError struct {
	// Target is the symbol that was given as the target.
	Target Symbol
}

func (err *AssignError) Error() string {
	return "cannot assign to " + err.Target.String() + ": target is not a name"
}

// RedefinitionError is an error from defining an operator whose name is
// already taken.
type RedefinitionError struct {
	// Name is the operator name.
	Name Name
}

func (err *RedefinitionError) Error() string {
	return "operator " + strconv.Quote(string(err.Name)) + " is already defined"
}

// UndefinedError is an error from applying an operator that has no
// definition.
type UndefinedError struct {
	// Name is the operator that was missing.
	Name Name
}

func (err *UndefinedError) Error() string {
	return "undefined operator: " + strconv.Quote(string(err.Name))
}

// ArityError is an error from applying an operator to a number of arguments
// it cannot take.
type ArityError struct {
	// Func is the operator name.
	Func Name
	// Len is the number of arguments supplied.
	Len int
}

func (err *ArityError) Error() string {
	return "cannot call " + string(err.Func) + " with " + strconv.Itoa(err.Len) + " arguments"
}

// FormError is an error from a special form with an argument of the wrong
// shape.
type FormError struct {
	// Form is the special form's name.
	Form Name
	// Arg is the 1-based index of the argument.
	Arg int
	// Want describes what the argument should have been.
	Want string
	// Got is the argument.
	Got Symbol
}

func (err *FormError) Error() string {
	return "argument " + strconv.Itoa(err.Arg) + " of " + string(err.Form) + " must be " + err.Want + ", not " + err.Got.String()
}

// DepthError is an error from exceeding an engine's evaluation depth limit.
type DepthError struct {
	// Limit is the engine's depth limit.
	Limit int
	// Expr is the expression that would have exceeded the limit.
	Expr *Expression
}

func (err *DepthError) Error() string {
	return "evaluation depth limit " + strconv.Itoa(err.Limit) + " exceeded at " + err.Expr.Action.String()
}

// DomainError is an error returned when an operator is applied to constants
// outside its domain. DomainError unwraps to big.ErrNaN.
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Arg is the 1-based index of the argument, or 0 if no single argument
	// is at fault.
	Arg int
	// Func is a name identifying the operator.
	Func Name
}

func (err DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + string(err.Func)
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

func (err DomainError) Unwrap() error {
	return big.ErrNaN{}
}
