// Package rewrite implements a small term-rewriting evaluator for
// Mathematica-style symbolic expressions.
//
// An expression is a tree of Constants, Names, and Expressions, the last
// being an operator name applied to a list of arguments, written
// "Sum[2, x]". An Engine reduces a tree bottom-up: arguments first, then the
// operator. Operators fold to Constants when their arguments allow it and
// otherwise leave the application symbolic, so "Sum[2, x]" stays as it is
// until x has a value.
//
// Set[x, value] binds a name in the engine's global scope. Delayed[f, t,
// body] defines a new operator f of one parameter t whose body is expanded
// by substitution each time f is applied. If[cond, then, else] evaluates
// only the selected branch, which lets delayed definitions recurse.
//
package rewrite
