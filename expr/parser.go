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

import "fmt"
import "strconv"

type Parser struct {
	lex   *Lexer
	funcs *FuncTable
	res   Resolver
}

func NewParser(lex *Lexer, funcs *FuncTable, res Resolver) *Parser {
	return &Parser{lex, funcs, res}
}

// SetResolver switches the scope chain, e.g. when a line targets a custom wave.
func (p *Parser) SetResolver(res Resolver) {
	p.res = res
}

func (p *Parser) Resolver() Resolver {
	return p.res
}

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.lex.Line(), Msg: fmt.Sprintf(format, args...)}
}

/*
ParseExpr reads one expression and returns it together with the token that
terminated it: end of line, end of file, ';', ')' or ','.

Operators are hung into the tree as they arrive (see insertInfix), operands go
into the first free slot. "1+2*3" therefore ends up as 1+(2*3) while "2-3-4"
becomes 2-(3-4).
*/
func (p *Parser) ParseExpr() (Expr, Token, error) {
	tree, tok, err := p.parseGen(nil)
	if err != nil {
		return nil, tok, err
	}
	if tree == nil {
		return nil, tok, p.errorf("empty expression before %s", tok)
	}
	return Simplify(tree), tok, nil
}

func (p *Parser) parseGen(tree *Tree) (*Tree, Token, error) {
	for {
		tok, s := p.lex.Next()
		if err := LexFailure(tok, p.lex.Line()); err != nil {
			return nil, tok, err
		}
		switch {
		case tok == TokLPr && s != "":
			fn := p.funcs.Lookup(s)
			if fn == nil {
				return nil, tok, p.errorf("%s is not a function", s)
			}
			call, err := p.parseArgs(fn)
			if err != nil {
				return nil, tok, err
			}
			return p.afterOperand(call, tree)
		case tok == TokLPr:
			sub, term, err := p.parseGen(nil)
			if err != nil {
				return nil, term, err
			}
			if term != TokRPr {
				return nil, term, p.errorf("expected ) but found %s", term)
			}
			if sub == nil {
				return nil, term, p.errorf("empty parentheses")
			}
			return p.afterOperand(Simplify(sub), tree)
		case (tok == TokPlus || tok == TokMinus) && s == "":
			// unary sign: 0 +/- operand
			var ok bool
			if tree, ok = insertOperand(Const(0), tree); !ok {
				return nil, tok, p.errorf("misplaced sign")
			}
			op := OpPositive
			if tok == TokMinus {
				op = OpNegative
			}
			tree = insertInfix(op, tree)
		case s == "":
			if tok.IsTerminator() {
				if tree != nil && !complete(tree) {
					return nil, tok, p.errorf("operator without operand before %s", tok)
				}
				return tree, tok, nil
			}
			return nil, tok, p.errorf("unexpected %s", tok)
		default:
			term, err := p.term(s)
			if err != nil {
				return nil, tok, err
			}
			var ok bool
			if tree, ok = insertOperand(term, tree); !ok {
				return nil, tok, p.errorf("missing operator before %s", s)
			}
			return p.parseInfix(tok, tree)
		}
	}
}

// afterOperand inserts a call or parenthesized expression and continues with the token behind it.
func (p *Parser) afterOperand(e Expr, tree *Tree) (*Tree, Token, error) {
	tree, ok := insertOperand(e, tree)
	if !ok {
		return nil, TokRPr, p.errorf("missing operator before %s", e)
	}
	tok, s := p.lex.Next()
	if err := LexFailure(tok, p.lex.Line()); err != nil {
		return nil, tok, err
	}
	if s != "" {
		return nil, tok, p.errorf("missing operator before %s", s)
	}
	return p.parseInfix(tok, tree)
}

func (p *Parser) parseInfix(tok Token, tree *Tree) (*Tree, Token, error) {
	if tok.IsTerminator() {
		return tree, tok, nil
	}
	op, ok := tok.infix()
	if !ok {
		return nil, tok, p.errorf("unexpected %s", tok)
	}
	return p.parseGen(insertInfix(op, tree))
}

func complete(t *Tree) bool {
	if t.Op == OpNone {
		return true
	}
	return t.Left != nil && t.Right != nil && complete(t.Left) && complete(t.Right)
}

func (p *Parser) parseArgs(fn *Func) (Expr, error) {
	n := fn.NumArgs()
	args := make([]Expr, n)
	for k := 0; k < n; k++ {
		sub, term, err := p.parseGen(nil)
		if err != nil {
			return nil, err
		}
		if sub == nil {
			return nil, p.errorf("%s: argument %d is empty", fn.Name, k+1)
		}
		want := TokComma
		if k == n-1 {
			want = TokRPr
		}
		if term != want {
			return nil, p.errorf("%s expects %d arguments", fn.Name, n)
		}
		args[k] = Simplify(sub)
	}
	return NewCall(fn, args), nil
}

func (p *Parser) term(s string) (Expr, error) {
	if c := s[0]; (c >= '0' && c <= '9') || c == '.' {
		v, err := ParseNumber(s)
		if err != nil {
			return nil, p.errorf("malformed number %s", s)
		}
		return Const(v), nil
	}
	param := p.res.Lookup(s, true)
	if param == nil {
		return nil, p.errorf("unknown identifier %s", s)
	}
	return ParamRef{param.ID, param.Name}, nil
}

// ParseLiteral reads an optionally signed number as used by initial conditions.
func (p *Parser) ParseLiteral() (float32, Token, error) {
	tok, s := p.lex.Next()
	if err := LexFailure(tok, p.lex.Line()); err != nil {
		return 0, tok, err
	}
	sign := float32(1)
	if (tok == TokMinus || tok == TokPlus) && s == "" {
		if tok == TokMinus {
			sign = -1
		}
		tok, s = p.lex.Next()
		if err := LexFailure(tok, p.lex.Line()); err != nil {
			return 0, tok, err
		}
	}
	if !tok.IsTerminator() {
		return 0, tok, p.errorf("unexpected %s after value", tok)
	}
	v, err := ParseNumber(s)
	if err != nil {
		return 0, tok, p.errorf("malformed number %q", s)
	}
	return sign * v, tok, nil
}

// ParseNumber accepts digits, an optional fraction and an optional signed exponent.
func ParseNumber(s string) (float32, error) {
	if !validNumber(s) {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

func validNumber(s string) bool {
	i, digits := 0, 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}
