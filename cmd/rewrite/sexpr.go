package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/steelseries/golisp"

	"github.com/zephyrtronium/rewrite"
)

// readLisp reads statements written as s-expressions. Every top-level form
// is a statement. If nl is true, errors are reported by line.
func readLisp(in io.Reader, nl bool) ([]rewrite.Symbol, error) {
	b, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	chunks := []string{string(b)}
	if nl {
		chunks = strings.Split(string(b), "\n")
	}
	var r []rewrite.Symbol
	for i, src := range chunks {
		forms, err := golisp.ParseAll(src)
		if err != nil {
			return r, lispErr(nl, i, err)
		}
		for _, d := range forms {
			s, err := fromLisp(d)
			if err != nil {
				return r, lispErr(nl, i, err)
			}
			r = append(r, s)
		}
	}
	return r, nil
}

func lispErr(nl bool, i int, err error) error {
	if !nl {
		return err
	}
	return fmt.Errorf("line %d: %w", i+1, err)
}

// fromLisp converts a parsed s-expression to a symbol. A list becomes an
// expression headed by its first element, which must be a symbol.
func fromLisp(d *golisp.Data) (rewrite.Symbol, error) {
	switch {
	case golisp.NilP(d):
		return nil, fmt.Errorf("empty list has no operator")
	case golisp.IntegerP(d):
		return rewrite.Int(golisp.IntegerValue(d)), nil
	case golisp.FloatP(d):
		s, err := rewrite.ParseString(golisp.String(d))
		if err != nil {
			return nil, err
		}
		if _, ok := s.(rewrite.Constant); !ok {
			return nil, fmt.Errorf("float %s is not a number", golisp.String(d))
		}
		return s, nil
	case golisp.BooleanP(d):
		return rewrite.Bool(golisp.BooleanValue(d)), nil
	case golisp.SymbolP(d), golisp.StringP(d):
		return rewrite.Name(golisp.StringValue(d)), nil
	case golisp.PairP(d):
		items := golisp.ToArray(d)
		if !golisp.SymbolP(items[0]) {
			return nil, fmt.Errorf("operator %s is not a symbol", golisp.String(items[0]))
		}
		args := make([]rewrite.Symbol, 0, len(items)-1)
		for _, it := range items[1:] {
			a, err := fromLisp(it)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return rewrite.New(rewrite.Name(golisp.StringValue(items[0])), args...), nil
	default:
		return nil, fmt.Errorf("cannot convert %s", golisp.String(d))
	}
}
