package rewrite_test

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"strings"
	"testing"

	"github.com/zephyrtronium/rewrite"
)

func mustParse(tb testing.TB, src string) rewrite.Symbol {
	tb.Helper()
	s, err := rewrite.ParseString(src)
	if err != nil {
		tb.Fatalf("%q failed to parse: %v", src, err)
	}
	return s
}

func TestEval(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    string
	}{
		// folding
		{"num", "1", "1"},
		{"free", "x", "x"},
		{"sum", "Sum[2, 3]", "5"},
		{"sum-empty", "Sum[]", "0"},
		{"sum-many", "Sum[1, 2, 3, 4]", "10"},
		{"mul", "Mul[2, 3, 4]", "24"},
		{"sub", "Sub[5, 7]", "-2"},
		{"div", "Div[7, 2]", "3"},
		{"div-neg", "Div[-7, 2]", "-3"},
		{"rem", "Rem[7, 3]", "1"},
		{"rem-neg", "Rem[-7, 3]", "-1"},
		{"divide", "Divide[1, 4]", "0.25"},
		{"pow", "Pow[2, 3]", "8"},
		{"pow-neg-exp", "Pow[2, -1]", "0.5"},
		{"pow-neg-base", "Pow[-2, 3]", "-8"},
		{"pow-neg-base-even", "Pow[-2, 2]", "4"},
		{"pow-zero-exp", "Pow[5, 0]", "1"},
		{"pow-zero-exp-neg", "Pow[-5, 0]", "1"},
		{"pow-zero-zero", "Pow[0, 0]", "1"},
		{"pow-zero-exp-frac", "Pow[0.5, 0]", "1"},
		{"sqrt", "Sqrt[16]", "4"},
		{"nested", "Sum[Mul[2, 3], Sub[10, 4]]", "12"},
		{"big", "Mul[1000, 1000, 1000]", "1000000000"},
		{"inf", "Div[1e400000000000, 2]", "+Inf"},
		{"inf-neg", "Sum[-Inf, 1]", "-Inf"},
		// staying symbolic
		{"sum-sym", "Sum[2, x]", "Sum[2, x]"},
		{"sum-drop", "Sum[0, x]", "Sum[x]"},
		{"sum-cancel", "Sum[1, x, -1]", "Sum[x]"},
		{"sum-order", "Sum[1, x, 2, y]", "Sum[3, x, y]"},
		{"sum-expr", "Sum[1, Sub[x, 1], 2]", "3"},
		{"sum-expr-only", "Sum[1, Sum[x, y]]", "1"},
		{"sum-expr-name", "Sum[0, Sum[x, y], z]", "Sum[z]"},
		{"mul-expr", "Mul[2, Pow[x, 2], y]", "Mul[2, y]"},
		{"mul-sym", "Mul[2, x]", "Mul[2, x]"},
		{"mul-zero", "Mul[0, x]", "Mul[x]"},
		{"mul-one", "Mul[1, x]", "Mul[1, x]"},
		{"sub-sym", "Sub[x, 1]", "Sub[x, 1]"},
		{"divide-sym", "Divide[x, 4]", "Divide[x, 4]"},
		{"pow-sym", "Pow[2, n]", "Pow[2, n]"},
		{"sqrt-sym", "Sqrt[x]", "Sqrt[x]"},
		// comparisons
		{"greater", "Greater[5, 4]", "True"},
		{"greater-not", "Greater[4, 5]", "False"},
		{"greater-sym", "Greater[x, 5]", "False"},
		{"greater-equal", "GreaterOrEqual[2, 3]", "False"},
		{"less", "Less[2, 3]", "True"},
		{"less-equal", "LessOrEqual[3, 3]", "True"},
		{"less-sym", "Less[1, y]", "False"},
		// equality
		{"equal-name", "Equal[a, a]", "True"},
		{"equal-expr", "Equal[Sum[x, y], Sum[x, y]]", "True"},
		{"equal-value", "Equal[1, 1.0]", "True"},
		{"equal-not", "Equal[x, y]", "False"},
		{"equal-kind", "Equal[1, x]", "False"},
		// sequences
		{"list", "List[1, 2, 3]", "3"},
		{"list-one", "List[x]", "x"},
		// conditionals
		{"if-then", "If[Greater[2, 1], a, b]", "a"},
		{"if-else", "If[Less[2, 1], a, b]", "b"},
		{"if-null", "If[Less[2, 1], a]", "Null"},
		{"if-sym", "If[c, a, Sum[1, 2]]", "If[c, a, Sum[1, 2]]"},
		{"if-lazy", "List[If[True, Set[x, 1], Set[x, 2]], x]", "1"},
		// assignment
		{"set", "Set[x, 5]", "x"},
		{"set-lookup", "List[Set[x, 5], x]", "5"},
		{"set-chain", "List[Set[x, 5], Set[y, x], Sum[x, y]]", "10"},
		{"set-rebind", "List[Set[x, 1], Set[x, Sum[x, 1]], x]", "2"},
		{"set-free", "List[Set[y, x], y]", "x"},
		{"set-const", "List[Set[x, 2.5], x]", "2.5"},
		{"set-symbolic", "List[Set[x, Sum[1, n]], x]", "Sum[1, n]"},
		// delayed definitions
		{"delayed", "Delayed[Inc, t, Sum[t, 1]]", "Delayed[Inc, t, Sum[t, 1]]"},
		{"delayed-call", "List[Delayed[Inc, t, Sum[t, 1]], Inc[5]]", "6"},
		{"delayed-sym", "List[Delayed[Inc, t, Sum[t, 1]], Inc[x]]", "Sum[1, x]"},
		{"delayed-arg", "List[Delayed[Inc, t, Sum[t, 1]], Inc[Mul[2, 3]]]", "7"},
		{"delayed-global", "List[Delayed[AddX, t, Sum[t, x]], Set[x, 3], AddX[4]]", "7"},
		{"delayed-nested", "List[Delayed[Inc, t, Sum[t, 1]], Delayed[Twice, u, Inc[Inc[u]]], Twice[1]]", "3"},
		{"delayed-set-exempt", "List[Delayed[Store, v, List[Set[r, v], r]], Store[9]]", "v"},
		{"delayed-param-unbound", "List[Delayed[K, t, Sum[1, 2]], K[x]]", "3"},
		// recursion
		{"fact", "List[Delayed[Fact, n, If[Greater[n, 1], Mul[n, Fact[Sub[n, 1]]], 1]], Fact[5]]", "120"},
		{"tri", "List[Delayed[Tri, n, If[Greater[n, 0], Sum[n, Tri[Sub[n, 1]]], 0]], Tri[10]]", "55"},
		{"countdown", "List[Set[k, 0], Delayed[Down, n, If[Greater[n, 0], List[Set[k, Sum[k, 1]], Down[Sub[n, 1]]], k]], Down[4]]", "4"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := rewrite.NewEngine(rewrite.Prec(64))
			r, err := e.Eval(mustParse(t, c.src), nil)
			if err != nil {
				t.Fatalf("evaluating %q: %v", c.src, err)
			}
			if r == nil {
				t.Fatal("nil result")
			}
			if got := r.String(); got != c.r {
				t.Errorf("evaluating %q: want %s, got %s", c.src, c.r, got)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		ok   func(error) bool
	}{
		{"set-const", "Set[1, 2]", is[*rewrite.AssignError]},
		{"set-expr", "Set[Sum[a], 2]", is[*rewrite.AssignError]},
		{"set-arity", "Set[x]", is[*rewrite.ArityError]},
		{"delayed-arity", "Delayed[f, t]", is[*rewrite.ArityError]},
		{"delayed-name", "Delayed[1, t, Sum[t]]", is[*rewrite.FormError]},
		{"delayed-param", "Delayed[f, Sum[t], Sum[t]]", is[*rewrite.FormError]},
		{"delayed-body", "Delayed[f, t, t]", is[*rewrite.FormError]},
		{"redefine", "List[Delayed[f, t, Sum[t]], Delayed[f, u, Mul[u]]]", is[*rewrite.RedefinitionError]},
		{"redefine-builtin", "Delayed[Sum, t, Mul[t]]", is[*rewrite.RedefinitionError]},
		{"redefine-special", "Delayed[Set, t, Mul[t]]", is[*rewrite.RedefinitionError]},
		{"undefined", "Foo[1]", is[*rewrite.UndefinedError]},
		{"undefined-nested", "Sum[1, Foo[x]]", is[*rewrite.UndefinedError]},
		{"arity-sub", "Sub[1]", is[*rewrite.ArityError]},
		{"arity-list", "List[]", is[*rewrite.ArityError]},
		{"arity-if", "If[True]", is[*rewrite.ArityError]},
		{"arity-equal", "Equal[1, 2, 3]", is[*rewrite.ArityError]},
		{"arity-delayed-call", "List[Delayed[f, t, Sum[t]], f[1, 2]]", is[*rewrite.ArityError]},
		{"divide-zero", "Divide[1, 0]", is[*rewrite.DomainError]},
		{"div-zero", "Div[1, 0]", is[*rewrite.DomainError]},
		{"rem-zero", "Rem[1, 0]", is[*rewrite.DomainError]},
		{"pow-neg-frac", "Pow[-2, 0.5]", is[*rewrite.DomainError]},
		{"pow-zero-neg", "Pow[0, -1]", is[*rewrite.DomainError]},
		{"log-zero", "Log[0]", is[*rewrite.DomainError]},
		{"sqrt-neg", "Sqrt[-1]", is[*rewrite.DomainError]},
		{"in-rule", "List[Delayed[Inv, t, Divide[1, t]], Inv[0]]", is[*rewrite.DomainError]},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := rewrite.NewEngine()
			r, err := e.Eval(mustParse(t, c.src), nil)
			if err == nil {
				t.Fatalf("evaluating %q gave no error, result %v", c.src, r)
			}
			if r != nil {
				t.Errorf("evaluating %q gave non-nil result %v", c.src, r)
			}
			if !c.ok(err) {
				t.Errorf("evaluating %q gave wrong error type %T: %v", c.src, err, err)
			}
		})
	}
}

func TestEvalErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		src  string
		re   string
	}{
		{"undefined", "Foo[1]", `(?i)\bundefined\b.*"Foo"`},
		{"assign", "Set[1, 2]", `(?i)\bassign\b.*\b1\b`},
		{"arity", "Sub[1]", `\bSub\b.*\b1 arguments`},
		{"redefine", "Delayed[Sum, t, Mul[t]]", `"Sum".*already`},
		{"domain", "Divide[1, 0]", `\bDivide\b.*argument 2`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := rewrite.NewEngine().Eval(mustParse(t, c.src), nil)
			if err == nil {
				t.Fatalf("evaluating %q gave no error", c.src)
			}
			if !regexp.MustCompile(c.re).MatchString(err.Error()) {
				t.Errorf("%q doesn't match %s", err.Error(), c.re)
			}
		})
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	_, err := rewrite.EvalString("Rem[5, 0]")
	if !errors.As(err, new(*rewrite.DomainError)) {
		t.Errorf("%#v is not a *DomainError", err)
	}
	if !errors.As(err, new(big.ErrNaN)) {
		t.Errorf("%#v doesn't unwrap to big.ErrNaN", err)
	}
}

func TestAssignGlobal(t *testing.T) {
	e := rewrite.NewEngine()
	local := rewrite.NewScope(map[rewrite.Name]rewrite.Symbol{"y": rewrite.Int(2)})
	// Names resolve through the scope given to Evaluate.
	r, err := e.Evaluate(rewrite.New("Sum", rewrite.Name("y"), rewrite.Int(1)), local)
	if err != nil {
		t.Fatal(err)
	}
	if !rewrite.Equal(r, rewrite.Int(3)) {
		t.Errorf("local lookup: want 3, got %v", r)
	}
	// Set binds in the global scope, never the one in hand.
	r, err = e.Evaluate(rewrite.New("Set", rewrite.Name("x"), rewrite.Name("y")), local)
	if err != nil {
		t.Fatal(err)
	}
	if r != rewrite.Name("x") {
		t.Errorf("Set gave %v, not its target", r)
	}
	if v := local.Lookup("x"); v != nil {
		t.Errorf("Set wrote %v to the local scope", v)
	}
	if v := e.Global().Lookup("x"); v == nil || !rewrite.Equal(v, rewrite.Int(2)) {
		t.Errorf("global x should be 2, got %v", v)
	}
	if v := e.Global().Lookup("y"); v != nil {
		t.Errorf("global scope has y = %v", v)
	}
}

func TestIdempotent(t *testing.T) {
	e := rewrite.NewEngine()
	if _, err := e.Eval(mustParse(t, "Set[x, 5]"), nil); err != nil {
		t.Fatal(err)
	}
	for _, s := range []rewrite.Symbol{rewrite.Int(5), rewrite.Name("x"), rewrite.Name("free")} {
		a, err := e.Eval(s, nil)
		if err != nil {
			t.Fatal(err)
		}
		b, err := e.Eval(a, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !rewrite.Equal(a, b) {
			t.Errorf("%v: first evaluation gave %v, second %v", s, a, b)
		}
	}
	if r, _ := e.Eval(rewrite.Name("x"), nil); !rewrite.Equal(r, rewrite.Int(5)) {
		t.Errorf("x should be 5, got %v", r)
	}
}

func TestSession(t *testing.T) {
	// Definitions persist across evaluations in one engine.
	e := rewrite.NewEngine()
	steps := []struct {
		src string
		r   string
	}{
		{"Delayed[Inc, t, Sum[t, 1]]", "Delayed[Inc, t, Sum[t, 1]]"},
		{"Set[x, Inc[1]]", "x"},
		{"Inc[x]", "3"},
		{"Set[x, Inc[x]]", "x"},
		{"x", "3"},
	}
	for _, s := range steps {
		r, err := e.Eval(mustParse(t, s.src), nil)
		if err != nil {
			t.Fatalf("evaluating %q: %v", s.src, err)
		}
		if r.String() != s.r {
			t.Errorf("evaluating %q: want %s, got %v", s.src, s.r, r)
		}
	}
	rule, ok := e.LookupRule("Inc")
	if !ok {
		t.Fatal("no rule for Inc")
	}
	if rule.Param != "t" || rule.Body.String() != "Sum[t, 1]" {
		t.Errorf("wrong rule: %v -> %v", rule.Param, rule.Body)
	}
	if _, ok := e.LookupRule("Sum"); ok {
		t.Error("built-in Sum has a rule")
	}
}

func TestMaxDepth(t *testing.T) {
	e := rewrite.NewEngine(rewrite.MaxDepth(50))
	_, err := e.Eval(mustParse(t, "List[Delayed[Loop, n, Loop[n]], Loop[1]]"), nil)
	var d *rewrite.DepthError
	if !errors.As(err, &d) {
		t.Fatalf("%#v is not a *DepthError", err)
	}
	if d.Limit != 50 {
		t.Errorf("wrong limit: want 50, got %d", d.Limit)
	}
	// A finite recursion under the limit still works, and the engine is
	// usable after hitting the limit.
	r, err := e.Eval(mustParse(t, "List[Delayed[Tri, n, If[Greater[n, 0], Sum[n, Tri[Sub[n, 1]]], 0]], Tri[3]]"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "6" {
		t.Errorf("Tri[3] should be 6, got %v", r)
	}
}

func TestStrictProduct(t *testing.T) {
	cases := []struct {
		src string
		r   string
	}{
		{"Mul[0, x]", "0"},
		{"Mul[2, 0, x, y]", "0"},
		{"Mul[1, x]", "Mul[x]"},
		{"Mul[2, x]", "Mul[2, x]"},
		{"Mul[2, 3]", "6"},
		{"Sum[0, x]", "Sum[x]"},
	}
	e := rewrite.NewEngine(rewrite.StrictProduct())
	for _, c := range cases {
		r, err := e.Eval(mustParse(t, c.src), nil)
		if err != nil {
			t.Fatalf("evaluating %q: %v", c.src, err)
		}
		if r.String() != c.r {
			t.Errorf("evaluating %q: want %s, got %v", c.src, c.r, r)
		}
	}
}

func TestKeepTerms(t *testing.T) {
	cases := []struct {
		src string
		r   string
	}{
		{"Sum[1, Sub[x, 1], 2]", "Sum[3, Sub[x, 1]]"},
		{"Sum[1, Sum[x, y]]", "Sum[1, Sum[x, y]]"},
		{"Sum[0, Sum[x, y]]", "Sum[Sum[x, y]]"},
		{"Sum[Pow[2, n], z, 4]", "Sum[4, Pow[2, n], z]"},
		{"Mul[2, Pow[x, 2], y]", "Mul[2, Pow[x, 2], y]"},
		{"Sum[1, 2]", "3"},
	}
	e := rewrite.NewEngine(rewrite.KeepTerms())
	for _, c := range cases {
		r, err := e.Eval(mustParse(t, c.src), nil)
		if err != nil {
			t.Fatalf("evaluating %q: %v", c.src, err)
		}
		if r.String() != c.r {
			t.Errorf("evaluating %q: want %s, got %v", c.src, c.r, r)
		}
	}
}

func TestEngineOptions(t *testing.T) {
	g := rewrite.NewScope(nil).Set("a", rewrite.Int(1))
	e := rewrite.NewEngine(
		rewrite.SetVar("b", rewrite.Int(2)),
		rewrite.Global(g),
		rewrite.SetVars(map[rewrite.Name]rewrite.Symbol{"c": rewrite.Int(3)}),
		rewrite.Funcs(map[rewrite.Name]rewrite.Func{"Pow": nil}),
		nil,
	)
	if e.Global() != g {
		t.Error("Global option didn't set the global scope")
	}
	r, err := e.Eval(mustParse(t, "Sum[a, b, c]"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "6" {
		t.Errorf("Sum[a, b, c] should be 6, got %v", r)
	}
	if _, err := e.Eval(mustParse(t, "Set[d, 4]"), nil); err != nil {
		t.Fatal(err)
	}
	if v := g.Lookup("d"); v == nil || v.String() != "4" {
		t.Errorf("Set didn't write through to the given scope: %v", v)
	}
	if _, err := e.Eval(mustParse(t, "Pow[2, 2]"), nil); !is[*rewrite.UndefinedError](err) {
		t.Errorf("removed Pow gave %v", err)
	}
}

func TestPrec(t *testing.T) {
	r, err := rewrite.EvalString("Divide[1, 3]", rewrite.Prec(200))
	if err != nil {
		t.Fatal(err)
	}
	c, ok := r.(rewrite.Constant)
	if !ok {
		t.Fatalf("%v is %T, not Constant", r, r)
	}
	if p := c.Value().Prec(); p != 200 {
		t.Errorf("wrong precision: want 200, got %d", p)
	}
	if e := rewrite.NewEngine(rewrite.Prec(200)); e.Prec() != 200 {
		t.Errorf("engine reports precision %d", e.Prec())
	}
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	e := rewrite.NewEngine(rewrite.Trace(log.New(&buf, "", 0)))
	if _, err := e.Eval(mustParse(t, "List[Delayed[Inc, t, Sum[t, 1]], Set[x, Inc[2]]]"), nil); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Inc[t] := Sum[t, 1]",
		"expand Inc[2] with t = 2: Sum[2, 1]",
		"Sum[2, 1] -> 3",
		"x = 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("trace doesn't contain %q:\n%s", want, out)
		}
	}
}

func BenchmarkEval(b *testing.B) {
	b.Run("fold", func(b *testing.B) {
		b.ReportAllocs()
		s := mustParse(b, "Sum[Mul[2, 3], Sub[10, 4], Pow[2, 8]]")
		e := rewrite.NewEngine()
		for i := 0; i < b.N; i++ {
			e.Eval(s, nil)
		}
	})
	b.Run("rule", func(b *testing.B) {
		b.ReportAllocs()
		e := rewrite.NewEngine()
		e.Eval(mustParse(b, "Delayed[Tri, n, If[Greater[n, 0], Sum[n, Tri[Sub[n, 1]]], 0]]"), nil)
		s := mustParse(b, "Tri[20]")
		for i := 0; i < b.N; i++ {
			e.Eval(s, nil)
		}
	})
}

func Example() {
	e := rewrite.NewEngine()
	for _, src := range []string{
		"Delayed[Fact, n, If[Greater[n, 1], Mul[n, Fact[Sub[n, 1]]], 1]]",
		"Fact[10]",
		"Set[x, 4]",
		"Sum[x, y, 1]",
		"Greater[y, 1]",
	} {
		s, err := rewrite.ParseString(src)
		if err != nil {
			panic(err)
		}
		r, err := e.Eval(s, nil)
		if err != nil {
			panic(err)
		}
		fmt.Println(r)
	}

	// Output:
	// Delayed[Fact, n, If[Greater[n, 1], Mul[n, Fact[Sub[n, 1]]], 1]]
	// 3628800
	// x
	// Sum[5, y]
	// False
}
