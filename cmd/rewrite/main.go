package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/xyproto/vt"

	"github.com/zephyrtronium/rewrite"
)

func main() {
	log.SetFlags(0)
	var (
		inname       string
		with         [][2]string
		nl, echo     bool
		sexpr, color bool
		strict, keep bool
		tr           bool
		prec, depth  int
	)
	addwith := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	flag.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	flag.Func("given", "name=value variable definition (any number of times)", addwith)
	flag.IntVar(&prec, "p", 64, "precision of calculations in bits")
	flag.IntVar(&depth, "depth", 0, "evaluation depth limit (0 for none)")
	flag.BoolVar(&nl, "n", false, "parse separate input lines as separate statements")
	flag.BoolVar(&echo, "echo", false, "print parsed statements")
	flag.BoolVar(&sexpr, "sexpr", false, "read s-expressions, e.g. (Sum 2 x), instead of Sum[2, x]")
	flag.BoolVar(&color, "color", false, "color results and errors")
	flag.BoolVar(&strict, "strict-product", false, "make Mul[0, x] give 0 instead of Mul[x]")
	flag.BoolVar(&keep, "keep-terms", false, "make Sum and Mul keep unreduced expression arguments")
	flag.BoolVar(&tr, "trace", false, "log each reduction step to stderr")
	flag.Parse()
	if prec <= 0 {
		log.Fatalf("precision (%d) must be positive", prec)
	}
	if depth < 0 {
		log.Fatalf("depth limit (%d) must not be negative", depth)
	}

	var ins []io.RuneScanner
	f, err := infile(inname, flag.NArg() == 0)
	if err != nil {
		log.Fatal(err)
	}
	if f != nil {
		ins = append(ins, f)
	}
	for _, arg := range flag.Args() {
		ins = append(ins, strings.NewReader(arg))
	}

	opts := []rewrite.Option{rewrite.Prec(uint(prec)), rewrite.MaxDepth(depth)}
	if strict {
		opts = append(opts, rewrite.StrictProduct())
	}
	if keep {
		opts = append(opts, rewrite.KeepTerms())
	}
	if tr {
		opts = append(opts, rewrite.Trace(log.New(os.Stderr, "", 0)))
	}
	e := rewrite.NewEngine(opts...)
	for _, d := range with {
		nm := d[0]
		vl := d[1]
		r, err := rewrite.EvalString(vl, rewrite.Prec(uint(prec)))
		if err != nil {
			log.Fatalf("setting %s: %v", nm, err)
		}
		e.Global().Set(rewrite.Name(nm), r)
	}

	var p []rewrite.Symbol
	for _, in := range ins {
		var stmts []rewrite.Symbol
		if sexpr {
			stmts, err = readLisp(in.(io.Reader), nl)
		} else {
			stmts, err = readBrackets(in, nl, uint(prec))
		}
		if err != nil {
			log.Fatal(err)
		}
		p = append(p, stmts...)
	}

	out := printer{color: color}
	for _, s := range p {
		if echo {
			fmt.Printf("%v : ", s)
		}
		r, err := e.Eval(s, nil)
		if err != nil {
			out.err(err)
			continue
		}
		out.result(r)
	}
}

// readBrackets parses statements in bracket syntax. If nl is true, each line
// is a separate statement; otherwise the whole input is one.
func readBrackets(in io.RuneScanner, nl bool, prec uint) ([]rewrite.Symbol, error) {
	opts := []rewrite.ParseOption{rewrite.ParsePrec(prec)}
	if nl {
		opts = append(opts, rewrite.StopOn('\n'))
	}
	var r []rewrite.Symbol
	for {
		// First check whether we're done with the input.
		if _, _, err := in.ReadRune(); err != nil {
			if err == io.EOF {
				return r, nil
			}
			return r, err
		}
		in.UnreadRune()
		s, err := rewrite.Parse(in, opts...)
		if err != nil {
			if _, ok := err.(*rewrite.EmptyExpressionError); ok && nl {
				// Blank line.
				continue
			}
			return r, err
		}
		r = append(r, s)
	}
}

type printer struct {
	color bool
}

func (p printer) result(s rewrite.Symbol) {
	t := s.String()
	if p.color {
		t = vt.LightGreen.Get(t)
	}
	fmt.Println(t)
}

func (p printer) err(err error) {
	t := err.Error()
	if p.color {
		t = vt.LightRed.Get(t)
	}
	fmt.Println(t)
}

func infile(inname string, std bool) (io.RuneScanner, error) {
	var f *os.File
	switch {
	case inname != "" && inname != "-":
		in, err := os.Open(inname)
		if err != nil {
			return nil, err
		}
		f = in
	case inname == "-", std:
		f = os.Stdin
	}
	if f == nil {
		return nil, nil
	}
	return bufio.NewReader(f), nil
}
