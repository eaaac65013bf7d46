package rewrite

import (
	"io"
	"math/big"
	"strings"
)

// Parse parses a symbol written in bracket syntax, e.g. "Sum[2, x]". The
// given options are applied in order. The result is a Constant, a Name, or an
// *Expression, and its String method gives text that parses to an equal
// symbol.
func Parse(src io.RuneScanner, opts ...ParseOption) (Symbol, error) {
	scan := lex(src)
	p := parsectx{prec: 64}
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	s, err := parseterm(scan, &p)
	if err != nil {
		return nil, err
	}
	tok, err := scan.next(p.wseof)
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenEOF:
		return s, nil
	case tokenClose:
		return nil, &BracketError{Col: tok.pos, Right: tok.text}
	case tokenSep:
		return nil, &SeparatorError{Col: tok.pos}
	default:
		return nil, &TokenError{Col: tok.pos, Text: tok.text, Want: "end of input"}
	}
}

// ParseString is a shortcut to parse a string.
func ParseString(src string, opts ...ParseOption) (Symbol, error) {
	return Parse(strings.NewReader(src), opts...)
}

// parseterm parses a single term.
func parseterm(scan *lexer, p *parsectx) (Symbol, error) {
	tok, err := scan.next(p.wseof)
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum:
		return p.num(tok)
	case tokenIdent:
		open, err := scan.next(p.wseof)
		if err != nil {
			return nil, err
		}
		if open.kind != tokenOpen {
			scan.push(open)
			return Name(tok.text), nil
		}
		args, err := parseargs(scan, p, open)
		if err != nil {
			return nil, err
		}
		return &Expression{Action: Name(tok.text), Args: args}, nil
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos}
	case tokenClose:
		return nil, &EmptyExpressionError{Col: tok.pos, End: tok.text}
	case tokenSep:
		return nil, &SeparatorError{Col: tok.pos}
	case tokenOpen:
		return nil, &TokenError{Col: tok.pos, Text: tok.text, Want: "a number or name"}
	default:
		panic("rewrite: invalid token " + tok.String())
	}
}

// parseargs parses an argument list after its open bracket, through the
// close bracket.
func parseargs(scan *lexer, p *parsectx, open lexToken) ([]Symbol, error) {
	tok, err := scan.next(p.wseof)
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenClose:
		return nil, nil
	case tokenEOF:
		return nil, &BracketError{Col: open.pos, Left: open.text}
	}
	scan.push(tok)
	var args []Symbol
	for {
		arg, err := parseterm(scan, p)
		if err != nil {
			if e, ok := err.(*EmptyExpressionError); ok && e.End == "" {
				return nil, &BracketError{Col: open.pos, Left: open.text}
			}
			return nil, err
		}
		args = append(args, arg)
		tok, err := scan.next(p.wseof)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenSep:
			continue
		case tokenClose:
			return args, nil
		case tokenEOF:
			return nil, &BracketError{Col: open.pos, Left: open.text}
		default:
			return nil, &TokenError{Col: tok.pos, Text: tok.text, Want: `"," or "]"`}
		}
	}
}

// num parses a number token.
func (p *parsectx) num(tok lexToken) (Symbol, error) {
	s := tok.text
	r, _, err := new(big.Float).SetPrec(p.prec).Parse(s, 10)
	switch {
	case err == nil: // do nothing
	case err.Error() == "exponent overflow",
		strings.HasSuffix(err.Error(), ": value out of range"):
		// There isn't realistically any better way to detect this error.
		// N.B. s is non-empty, otherwise we couldn't overflow.
		r = new(big.Float).SetInf(s[0] == '-')
	default:
		return nil, &LexError{Text: s, Kind: "number", Col: tok.pos}
	}
	return Constant{x: r}, nil
}
