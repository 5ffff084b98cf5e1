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

import "errors"
import "fmt"

var ErrTokenTooLong = errors.New("token exceeds maximum length")
var ErrLineBufferFull = errors.New("line exceeds buffer size")

// LexError stops the parse of a whole preset.
type LexError struct {
	Line int
	Err  error
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LexError) Unwrap() error {
	return e.Err
}

// ParseError only discards the line it occurred in.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// LexFailure returns the LexError for an overflow token and nil for every other token.
func LexFailure(tok Token, line int) error {
	switch tok {
	case TokStringTooLong:
		return &LexError{line, ErrTokenTooLong}
	case TokLineBufferFull:
		return &LexError{line, ErrLineBufferFull}
	}
	return nil
}
