package rewrite

import "unicode"

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	eofopt   string
	pprecopt uint
)

// parsectx holds general data for parsing.
type parsectx struct {
	// wseof is a string containing the whitespace characters that trigger an
	// EOF token from the lexer.
	wseof string
	// prec is the precision of parsed constants.
	prec uint
}

// StopOn sets whitespace characters that end a parse. Non-whitespace
// characters are ignored. A parse that reaches one of these characters
// consumes it and stops, so that repeated calls to Parse on the same source
// read one statement per line with StopOn('\n').
func StopOn(chars ...rune) ParseOption {
	var s []rune
	for _, c := range chars {
		if unicode.IsSpace(c) {
			s = append(s, c)
		}
	}
	return eofopt(s)
}

func (o eofopt) parseOption(p parsectx) parsectx {
	p.wseof = string(o)
	return p
}

// ParsePrec sets the precision of parsed constants. The default is 64.
func ParsePrec(prec uint) ParseOption {
	return pprecopt(prec)
}

func (o pprecopt) parseOption(p parsectx) parsectx {
	p.prec = uint(o)
	return p
}
