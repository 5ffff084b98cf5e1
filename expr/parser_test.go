/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package expr

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
)

type testEnv struct {
	funcs    *FuncTable
	arena    *Arena
	builtins *Scope
	user     *Scope
}

func newTestEnv() *testEnv {
	arena := NewArena()
	env := &testEnv{
		funcs:    NewFuncTable(rand.New(rand.NewPCG(1, 2))),
		arena:    arena,
		builtins: NewScope("builtins", arena),
		user:     NewScope("user", arena),
	}
	env.builtins.Define(Param{Name: "zoom", Type: TypeDouble, Default: 1, Flags: FlagPerPixel})
	env.builtins.Define(Param{Name: "decay", Type: TypeDouble, Default: 0.98, Lower: 0, Upper: 1}, "fDecay")
	return env
}

func (env *testEnv) parser(src string) *Parser {
	return NewParser(NewLexer(strings.NewReader(src)), env.funcs, Resolver{Layers: []*Scope{env.builtins}, Create: env.user})
}

func (env *testEnv) eval(t *testing.T, src string) float32 {
	t.Helper()
	e, _, err := env.parser(src).ParseExpr()
	if err != nil {
		t.Fatalf("%q: %v", src, err)
	}
	return e.Eval(env.arena, NoMesh, NoMesh)
}

// TestEvaluate checks operator precedence, sentinels and builtin functions.
func TestEvaluate(t *testing.T) {
	env := newTestEnv()
	cases := []struct {
		src  string
		want float32
	}{
		{"1+2*3", 7},
		{"2*3+1", 7},
		{"2-3-4", 3},
		{"8/2*2", 2},
		{"2*-3", -6},
		{"-2+3", 1},
		{"3 - -2", 5},
		{"(1+2)*3", 9},
		{"2.5e2+1", 251},
		{".5*4", 2},
		{"5/0", DivByZero},
		{"5%0", ModByZero},
		{"7%3", 1},
		{"7.9%3.9", 1},
		{"5|2", 7},
		{"6&3", 2},
		{"zoom*2", 2},
		{"ZOOM+fdecay*0", 1},
		{"max(2,3)", 3},
		{"min(2,-1)", -1},
		{"if(0,1,2)", 2},
		{"if(5,1,2)", 1},
		{"sqr(3)", 9},
		{"sqrt(16)", 4},
		{"abs(-2)", 2},
		{"sign(-4)", -1},
		{"sign(0)", 0},
		{"int(-1.5)", -2},
		{"pow(2,3)", 8},
		{"fact(4)", 24},
		{"nchoosek(5,2)", 10},
		{"nchoosek(2,5)", 0},
		{"nchoosek(5,3)", 10},
		{"nchoosek(7,7)", 1},
		{"sigmoid(0,1)", 0.5},
		{"above(2,1)", 1},
		{"below(2,1)", 0},
		{"equal(2,2)", 1},
		{"band(1,0)", 0},
		{"bor(1,0)", 1},
		{"bnot(0)", 1},
		{"rand(0)", 1},
		{"max(if(1, 2, 3), sqr(2)) + 1", 5},
	}
	for _, c := range cases {
		if got := env.eval(t, c.src); got != c.want {
			t.Errorf("%s = %g, want %g", c.src, got, c.want)
		}
	}
}

// TestParseErrors checks that malformed expressions are rejected with a ParseError.
func TestParseErrors(t *testing.T) {
	env := newTestEnv()
	for _, src := range []string{
		"",
		"1+",
		"*2",
		"foo(1)",
		"max(1)",
		"max(1,2,3)",
		"max(,2)",
		"2(3)",
		"(1+2",
		"(1+2)3",
		"()",
		"1.2.3",
		"1=2",
	} {
		_, _, err := env.parser(src).ParseExpr()
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("%q: expected a parse error, got %v", src, err)
		}
	}
}

// TestHugeFactorial checks that fact and nchoosek stop once the result overflows.
func TestHugeFactorial(t *testing.T) {
	env := newTestEnv()
	for _, src := range []string{"fact(2e9)", "fact(171)", "nchoosek(2e9,1e9)"} {
		if v := env.eval(t, src); !math.IsInf(float64(v), 1) {
			t.Errorf("%s = %g, want +Inf", src, v)
		}
	}
	if v := env.eval(t, "nchoosek(2e9,2e9)"); v != 1 {
		t.Errorf("nchoosek(2e9,2e9) = %g", v)
	}
	if v := env.eval(t, "fact(10)"); v != 3628800 {
		t.Errorf("fact(10) = %g", v)
	}
}

// TestParseTerminator checks that the terminating token is handed back.
func TestParseTerminator(t *testing.T) {
	env := newTestEnv()
	p := env.parser("1+2;x=3\n")
	_, term, err := p.ParseExpr()
	if err != nil || term != TokSemiColon {
		t.Fatalf("got %v %v", term, err)
	}
	_, term, err = env.parser("max(1,2)\n").ParseExpr()
	if err != nil || term != TokEOL {
		t.Fatalf("got %v %v", term, err)
	}
}

// TestExprString checks the printed form of the tree.
func TestExprString(t *testing.T) {
	env := newTestEnv()
	cases := map[string]string{
		"1+2*3":     "(1 + (2 * 3))",
		"-x":        "(-x)",
		"max(a,2)":  "max(a, 2)",
		"zoom":      "zoom",
		"(((1.5)))": "1.5",
	}
	for src, want := range cases {
		e, _, err := env.parser(src).ParseExpr()
		if err != nil {
			t.Fatalf("%q: %v", src, err)
		}
		if got := e.String(); got != want {
			t.Errorf("%q prints as %q, want %q", src, got, want)
		}
	}
}

// TestMissingOperand checks that an incomplete node evaluates its missing side as EvalError.
func TestMissingOperand(t *testing.T) {
	tree := &Tree{Op: OpMul, Left: &Tree{Leaf: Const(2)}}
	if got := tree.Eval(nil, NoMesh, NoMesh); got != 2*EvalError {
		t.Errorf("got %g", got)
	}
	if got := (&Tree{}).Eval(nil, NoMesh, NoMesh); got != 0 {
		t.Errorf("empty leaf: got %g", got)
	}
}

// TestParseLiteral checks signed literals as used by initial conditions.
func TestParseLiteral(t *testing.T) {
	env := newTestEnv()
	cases := map[string]float32{
		"-1.5\n": -1.5,
		"+2":     2,
		"1e-1;":  0.1,
		"3":      3,
	}
	for src, want := range cases {
		v, _, err := env.parser(src).ParseLiteral()
		if err != nil || v != want {
			t.Errorf("%q: got %g %v, want %g", src, v, err, want)
		}
	}
	for _, src := range []string{"abc", "1+2", "--1", ""} {
		if _, _, err := env.parser(src).ParseLiteral(); err == nil {
			t.Errorf("%q: expected an error", src)
		}
	}
}

// TestAutoCreate checks that unknown names become user parameters exactly once.
func TestAutoCreate(t *testing.T) {
	env := newTestEnv()
	res := Resolver{Layers: []*Scope{env.builtins}, Create: env.user}
	a := res.Lookup("MyVar", true)
	b := res.Lookup("myvar", true)
	if a == nil || a != b {
		t.Fatalf("lookups differ: %v %v", a, b)
	}
	if !a.Flags.Has(FlagUserDef) || a.Value() != 0 {
		t.Errorf("unexpected user parameter %+v", a)
	}
	if env.user.Len() != 1 {
		t.Errorf("user scope has %d entries", env.user.Len())
	}
	if res.Lookup("other", false) != nil {
		t.Errorf("lookup without create must not define")
	}
	if res.Lookup("1abc", true) != nil {
		t.Errorf("numeric names are not parameters")
	}
	if res.Lookup("zoom", true) != env.builtins.Find("zoom") {
		t.Errorf("builtins shadow user parameters")
	}
	if env.builtins.Find("FDECAY") == nil {
		t.Errorf("alias not found")
	}
	// same expression twice reuses the parameter
	env.eval(t, "q+1")
	env.eval(t, "q*2")
	if env.user.Len() != 2 {
		t.Errorf("user scope has %d entries, want 2", env.user.Len())
	}
}

// TestParamSet checks clamping and type casts.
func TestParamSet(t *testing.T) {
	arena := NewArena()
	scope := NewScope("test", arena)
	i := scope.Define(Param{Name: "mode", Type: TypeInt, Lower: 0, Upper: 3})
	i.Set(5.7)
	if i.Value() != 3 {
		t.Errorf("int clamp: got %g", i.Value())
	}
	i.Set(2.9)
	if i.Value() != 2 {
		t.Errorf("int truncation: got %g", i.Value())
	}
	b := scope.Define(Param{Name: "flag", Type: TypeBool})
	b.Set(0.3)
	if b.Value() != 1 {
		t.Errorf("bool: got %g", b.Value())
	}
	d := scope.Define(Param{Name: "decay", Type: TypeDouble, Default: 0.98, Lower: 0, Upper: 1})
	if d.Value() != 0.98 {
		t.Errorf("default not applied: %g", d.Value())
	}
	d.Set(-1)
	if d.Value() != 0 {
		t.Errorf("double clamp: got %g", d.Value())
	}
	d.SetRaw(7)
	if d.Value() != 7 {
		t.Errorf("raw store: got %g", d.Value())
	}
	d.Reset()
	if d.Value() != 0.98 {
		t.Errorf("reset: got %g", d.Value())
	}
	if scope.Define(Param{Name: "DECAY"}) != d {
		t.Errorf("redefinition must return the existing parameter")
	}
}

// TestMatrixRead checks that a grid is only read once a per-pixel equation targeted the parameter.
func TestMatrixRead(t *testing.T) {
	arena := NewArena()
	scope := NewScope("test", arena)
	p := scope.Define(Param{Name: "zoom", Type: TypeDouble, Default: 1, Flags: FlagPerPixel})
	p.SetGrid(NewGrid(2, 2))
	p.Grid().Set(1, 1, 5)
	ref := ParamRef{p.ID, p.Name}
	if got := ref.Eval(arena, 1, 1); got != 1 {
		t.Errorf("scalar read expected, got %g", got)
	}
	p.MarkMatrix()
	if got := ref.Eval(arena, 1, 1); got != 5 {
		t.Errorf("grid read expected, got %g", got)
	}
	if got := ref.Eval(arena, NoMesh, NoMesh); got != 1 {
		t.Errorf("scalar evaluation reads the scalar, got %g", got)
	}
	if got := ref.Eval(arena, 5, 5); got != 1 {
		t.Errorf("out of grid falls back to the scalar, got %g", got)
	}

	pts := scope.Define(Param{Name: "r", Type: TypeDouble, Flags: FlagPerPoint | FlagAlwaysMatrix})
	pts.SetPoints([]float32{0.5, 0.7})
	if got := (ParamRef{pts.ID, pts.Name}).Eval(arena, 1, NoMesh); got != 0.7 {
		t.Errorf("point read: got %g", got)
	}
}

// TestRandDeterministic checks that rand draws from the seeded generator.
func TestRandDeterministic(t *testing.T) {
	a := NewFuncTable(rand.New(rand.NewPCG(7, 7))).Lookup("rand")
	b := NewFuncTable(rand.New(rand.NewPCG(7, 7))).Lookup("rand")
	for k := 0; k < 100; k++ {
		x := a.Call([]float32{100})
		y := b.Call([]float32{100})
		if x != y {
			t.Fatalf("draw %d differs: %g != %g", k, x, y)
		}
		if x < 0 || x >= 100 || x != float32(int(x)) {
			t.Fatalf("draw %d out of range: %g", k, x)
		}
	}
}

// TestDeclare checks the registration rules of the function table.
func TestDeclare(t *testing.T) {
	funcs := NewFuncTable(rand.New(rand.NewPCG(1, 1)))
	mustPanic := func(name string, f *Func) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected a panic", name)
			}
		}()
		funcs.Declare(f)
	}
	mustPanic("duplicate", &Func{"max", "", argXY, func(a []float32) float32 { return 0 }})
	mustPanic("no args", &Func{"none", "", nil, func(a []float32) float32 { return 0 }})
	mustPanic("no body", &Func{"nobody", "", argX, nil})

	funcs.Declare(&Func{"Twice", "doubles x", argX, func(a []float32) float32 { return 2 * a[0] }})
	if fn := funcs.Lookup("TWICE"); fn == nil || fn.Call([]float32{3}) != 6 {
		t.Errorf("declared function not found")
	}
	if got := funcs.Help("twice"); got != "twice(x): doubles x" {
		t.Errorf("help: %q", got)
	}
	if funcs.Help("missing") != "" {
		t.Errorf("help for unknown function")
	}
}
