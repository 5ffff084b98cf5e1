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

import "io"
import "bufio"
import "strings"
import "github.com/rs/zerolog/log"

const MaxTokenSize = 512
const LineBufferSize = 1024

/*
Lexer reads preset text one byte at a time. Every call to Next returns the
delimiter that stopped the read together with the text collected before it:
"zoom+" yields (TokPlus, "zoom").

In wrap mode a newline does not necessarily end the token: the lexer peeks the
next line up to its '=' and, if that prefix belongs to the same family as the
last assignment prefix (per_frame_3 after per_frame_2), swallows the prefix and
keeps reading. Some exporters split one statement over several numbered lines.
The comparison only strips trailing digits, so unrelated prefixes that happen to
share a stem are joined as well.
*/
type Lexer struct {
	r       *bufio.Reader
	pending []byte // unget stack, top is last
	line    int
	lineBuf []byte

	wrap           bool
	lastLinePrefix string
	atLineStart    bool
	modeReset      bool
}

func NewLexer(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r), line: 1, atLineStart: true}
}

// Line is the 1-based number of the line being read.
func (l *Lexer) Line() int {
	return l.line
}

// AtLineStart reports whether the last token ended a line, so nothing of the current line was consumed yet.
func (l *Lexer) AtLineStart() bool {
	return l.atLineStart
}

// ModeReset reports whether the last terminator ended the statement mode.
// A line break that only stops wrap mode, or a ';', keeps the mode alive so the
// following assignment inherits it.
func (l *Lexer) ModeReset() bool {
	return l.modeReset
}

// PeekNewline reports whether the next byte starts a line break, without consuming it.
func (l *Lexer) PeekNewline() bool {
	c, ok := l.getc()
	if !ok {
		return false
	}
	l.unget(c)
	return c == '\n' || c == '\r'
}

// LineText returns the raw text of the current statement.
func (l *Lexer) LineText() string {
	return strings.TrimSpace(string(l.lineBuf))
}

func (l *Lexer) SetWrap(on bool) {
	l.wrap = on
}

func (l *Lexer) Wrap() bool {
	return l.wrap
}

// SetLastLinePrefix records the prefix of the latest assignment line, e.g. "per_frame_4".
func (l *Lexer) SetLastLinePrefix(prefix string) {
	l.lastLinePrefix = prefix
}

// ResetLine clears the diagnostic line buffer.
func (l *Lexer) ResetLine() {
	l.lineBuf = l.lineBuf[:0]
}

func (l *Lexer) getc() (byte, bool) {
	if n := len(l.pending); n > 0 {
		c := l.pending[n-1]
		l.pending = l.pending[:n-1]
		return c, true
	}
	c, err := l.r.ReadByte()
	if err != nil {
		return 0, false
	}
	return c, true
}

func (l *Lexer) unget(c byte) {
	l.pending = append(l.pending, c)
}

func (l *Lexer) finish(tok []byte) string {
	if len(tok) == 0 {
		return ""
	}
	return FoldName(string(tok))
}

func (l *Lexer) Next() (Token, string) {
	var tok []byte
	for {
		c, ok := l.getc()
		if !ok {
			l.atLineStart = true
			l.modeReset = true
			return TokEOF, l.finish(tok)
		}
		l.atLineStart = false
		if len(l.lineBuf) >= LineBufferSize {
			return TokLineBufferFull, l.finish(tok)
		}
		l.lineBuf = append(l.lineBuf, c)
		switch c {
		case '\n':
			l.line++
			l.modeReset = true
			if l.wrap {
				if l.continuesOnNextLine() {
					continue
				}
				l.modeReset = false
			}
			l.ResetLine()
			l.atLineStart = true
			return TokEOL, l.finish(tok)
		case ' ', '\t', '\r':
			continue
		case '/':
			n, ok := l.getc()
			if ok && n == '/' {
				l.SkipLine()
				l.modeReset = true
				return TokEOL, l.finish(tok)
			}
			if ok {
				l.unget(n)
			}
			return TokDiv, l.finish(tok)
		case '+', '-':
			if isMantissa(tok) {
				tok = append(tok, c)
				continue
			}
			if c == '+' {
				return TokPlus, l.finish(tok)
			}
			return TokMinus, l.finish(tok)
		case '*':
			return TokMult, l.finish(tok)
		case '%':
			return TokMod, l.finish(tok)
		case '|':
			return TokOr, l.finish(tok)
		case '&':
			return TokAnd, l.finish(tok)
		case '(':
			return TokLPr, l.finish(tok)
		case ')':
			return TokRPr, l.finish(tok)
		case '[':
			return TokLBr, l.finish(tok)
		case ']':
			return TokRBr, l.finish(tok)
		case '=':
			return TokEq, l.finish(tok)
		case ',':
			return TokComma, l.finish(tok)
		case ';':
			l.wrap = false
			l.modeReset = false
			return TokSemiColon, l.finish(tok)
		default:
			if len(tok) >= MaxTokenSize {
				return TokStringTooLong, ""
			}
			tok = append(tok, c)
		}
	}
}

// ReadRaw returns the unfolded text up to delim, which is consumed. It stops
// without consuming at a newline or at EOF and reports false then.
func (l *Lexer) ReadRaw(delim byte) (string, bool) {
	var raw []byte
	for {
		c, ok := l.getc()
		if !ok {
			return string(raw), false
		}
		if c == '\n' {
			l.unget(c)
			return string(raw), false
		}
		l.atLineStart = false
		if c == delim {
			return string(raw), true
		}
		if len(l.lineBuf) < LineBufferSize {
			l.lineBuf = append(l.lineBuf, c)
		}
		raw = append(raw, c)
	}
}

// SkipLine drops everything up to and including the next newline.
func (l *Lexer) SkipLine() {
	l.skipComment()
	l.ResetLine()
	l.atLineStart = true
}

func (l *Lexer) skipComment() {
	for {
		c, ok := l.getc()
		if !ok {
			return
		}
		if c == '\n' {
			l.line++
			return
		}
	}
}

// continuesOnNextLine peeks the prefix of the following line. On a match the
// prefix and its '=' are consumed; otherwise everything is pushed back and wrap
// mode ends.
func (l *Lexer) continuesOnNextLine() bool {
	var peek []byte
	for {
		c, ok := l.getc()
		if !ok || c == '\n' {
			if ok {
				l.unget(c)
			}
			break
		}
		peek = append(peek, c)
		if c == '=' {
			prefix := FoldName(strings.TrimSpace(string(peek[:len(peek)-1])))
			if wrapsToNextLine(l.lastLinePrefix, prefix) {
				log.Debug().Str("prefix", prefix).Int("line", l.line).Msg("statement continues on next line")
				return true
			}
			break
		}
	}
	for i := len(peek) - 1; i >= 0; i-- {
		l.unget(peek[i])
	}
	l.wrap = false
	return false
}

func wrapsToNextLine(last, current string) bool {
	if last == "" || current == "" {
		return false
	}
	return strings.TrimRight(last, "0123456789") == strings.TrimRight(current, "0123456789")
}

// isMantissa reports whether tok is a number waiting for its exponent sign (1e, 2.5e)
func isMantissa(tok []byte) bool {
	n := len(tok)
	if n < 2 || (tok[n-1] != 'e' && tok[n-1] != 'E') {
		return false
	}
	digits := 0
	dot := false
	for _, c := range tok[:n-1] {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}
