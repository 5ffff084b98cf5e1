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

// Token is the delimiter that ended a lexer read. The identifier or number
// text collected before it is returned alongside.
type Token int

const (
	TokEOL Token = iota
	TokEOF
	TokLPr
	TokRPr
	TokLBr
	TokRBr
	TokEq
	TokPlus
	TokMinus
	TokMult
	TokMod
	TokDiv
	TokOr
	TokAnd
	TokComma
	TokSemiColon
	TokStringTooLong
	TokLineBufferFull
)

var tokenNames = [...]string{
	TokEOL:            "end of line",
	TokEOF:            "end of file",
	TokLPr:            "(",
	TokRPr:            ")",
	TokLBr:            "[",
	TokRBr:            "]",
	TokEq:             "=",
	TokPlus:           "+",
	TokMinus:          "-",
	TokMult:           "*",
	TokMod:            "%",
	TokDiv:            "/",
	TokOr:             "|",
	TokAnd:            "&",
	TokComma:          ",",
	TokSemiColon:      ";",
	TokStringTooLong:  "token too long",
	TokLineBufferFull: "line too long",
}

func (t Token) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "?"
}

// IsTerminator reports whether t ends an expression.
func (t Token) IsTerminator() bool {
	switch t {
	case TokEOL, TokEOF, TokSemiColon, TokRPr, TokComma:
		return true
	}
	return false
}

// infix returns the operator a token stands for
func (t Token) infix() (OpKind, bool) {
	switch t {
	case TokPlus:
		return OpAdd, true
	case TokMinus:
		return OpSub, true
	case TokMult:
		return OpMul, true
	case TokDiv:
		return OpDiv, true
	case TokMod:
		return OpMod, true
	case TokOr:
		return OpOr, true
	case TokAnd:
		return OpAnd, true
	}
	return OpNone, false
}
