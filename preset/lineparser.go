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
package preset

import "io"
import "fmt"
import "errors"
import "strings"
import "strconv"
import "github.com/rs/zerolog/log"
import "github.com/launix-de/milkvm/expr"

// LineMode is the equation category of the last prefixed line.
type LineMode int

const (
	ModeNone LineMode = iota
	ModePerFrame
	ModePerPixel
	ModePerFrameInit
	ModeWaveInit
	ModeWavePerFrame
	ModeWavePerPoint
	ModeShapeInit
	ModeShapePerFrame
)

func (m LineMode) String() string {
	switch m {
	case ModePerFrame:
		return "per_frame"
	case ModePerPixel:
		return "per_pixel"
	case ModePerFrameInit:
		return "per_frame_init"
	case ModeWaveInit:
		return "wave_init"
	case ModeWavePerFrame:
		return "wave_per_frame"
	case ModeWavePerPoint:
		return "wave_per_point"
	case ModeShapeInit:
		return "shape_init"
	case ModeShapePerFrame:
		return "shape_per_frame"
	}
	return "none"
}

// keys written by Milkdrop 2 that carry shader code or versions; they are skipped
var unsupportedPrefixes = []string{"warp_", "comp_", "psversion", "milkdrop_preset_version"}

type lineParser struct {
	p      *Preset
	lex    *expr.Lexer
	parser *expr.Parser
	mode   LineMode
	obj    int // wave or shape id of the current mode
}

func newLineParser(p *Preset, r io.Reader) *lineParser {
	lex := expr.NewLexer(r)
	return &lineParser{p: p, lex: lex, parser: expr.NewParser(lex, p.funcs, p.res)}
}

/*
Load parses a preset. Lines that fail to parse are logged and dropped; the
rest of the preset stays usable. Only a lexer overflow aborts the load.
The returned preset is finalized.
*/
func Load(name string, r io.Reader, funcs *expr.FuncTable, gx, gy int) (*Preset, error) {
	p, err := NewPreset(funcs, gx, gy)
	if err != nil {
		return nil, err
	}
	p.Name = name
	if err := p.parse(r, false); err != nil {
		return nil, err
	}
	p.Finalize()
	return p, nil
}

// ParseLine adds preset text to an existing preset, e.g. from the REPL.
// The first dropped line is reported as error.
func (p *Preset) ParseLine(text string) error {
	err := p.parse(strings.NewReader(text), true)
	if p.finalized {
		p.Finalize()
	}
	return err
}

func (p *Preset) parse(r io.Reader, strict bool) error {
	lp := newLineParser(p, r)
	var first error
	for {
		err := lp.parseLine()
		if err == io.EOF {
			return first
		}
		var lexErr *expr.LexError
		if errors.As(err, &lexErr) {
			log.Error().Str("preset", p.Name).Err(err).Msg("preset aborted")
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
		if err != nil {
			p.Dropped++
			log.Warn().Str("preset", p.Name).Int("line", lp.lex.Line()).Str("text", lp.lex.LineText()).Err(err).Msg("dropped line")
			if !lp.lex.AtLineStart() {
				lp.lex.SkipLine()
			}
			lp.mode = ModeNone
			if strict && first == nil {
				first = err
			}
			continue
		}
		p.Lines++
	}
}

func (lp *lineParser) errorf(format string, args ...any) error {
	return &expr.ParseError{Line: lp.lex.Line(), Msg: fmt.Sprintf(format, args...)}
}

func (lp *lineParser) next() (expr.Token, string, error) {
	tok, s := lp.lex.Next()
	return tok, s, expr.LexFailure(tok, lp.lex.Line())
}

// parseLine reads one statement. It returns io.EOF at the end of input.
func (lp *lineParser) parseLine() error {
	lp.lex.ResetLine()
	if lp.lex.ModeReset() {
		lp.mode = ModeNone
	}
	lp.lex.SetWrap(false)
	tok, s, err := lp.next()
	if err != nil {
		return err
	}
	switch tok {
	case expr.TokEOF:
		if s != "" {
			return lp.errorf("%s without value", s)
		}
		return io.EOF
	case expr.TokEOL, expr.TokSemiColon:
		if s != "" {
			return lp.errorf("%s without value", s)
		}
		return nil
	case expr.TokLBr:
		if s != "" {
			return lp.errorf("unexpected [ after %s", s)
		}
		return lp.parseHeader()
	case expr.TokEq:
		if s == "" {
			return lp.errorf("assignment without name")
		}
		return lp.dispatch(s)
	}
	return lp.errorf("unexpected %s", tok)
}

func (lp *lineParser) parseHeader() error {
	name, ok := lp.lex.ReadRaw(']')
	if !ok {
		return lp.errorf("unterminated preset name")
	}
	if lp.p.Name == "" {
		lp.p.Name = strings.TrimSpace(name)
	}
	tok, s, err := lp.next()
	if err != nil {
		return err
	}
	if s != "" || (tok != expr.TokEOL && tok != expr.TokEOF) {
		return lp.errorf("text after preset name")
	}
	return nil
}

func (lp *lineParser) dispatch(s string) error {
	for _, prefix := range unsupportedPrefixes {
		if strings.HasPrefix(s, prefix) {
			log.Debug().Str("key", s).Int("line", lp.lex.Line()).Msg("skipping unsupported key")
			lp.lex.SkipLine()
			return nil
		}
	}
	switch {
	case strings.HasPrefix(s, "per_frame_init_"):
		return lp.equationLine(s, ModePerFrameInit, 0)
	case strings.HasPrefix(s, "per_frame_"):
		return lp.equationLine(s, ModePerFrame, 0)
	case strings.HasPrefix(s, "per_pixel_"):
		return lp.equationLine(s, ModePerPixel, 0)
	case strings.HasPrefix(s, "wavecode_"):
		id, name, ok := splitObjectPrefix(s[len("wavecode_"):])
		if !ok {
			return lp.errorf("malformed key %s", s)
		}
		w, err := lp.p.Wave(id)
		if err != nil {
			return lp.errorf("%v", err)
		}
		return lp.objectCode(&w.customObject, name)
	case strings.HasPrefix(s, "shapecode_"):
		id, name, ok := splitObjectPrefix(s[len("shapecode_"):])
		if !ok {
			return lp.errorf("malformed key %s", s)
		}
		sh, err := lp.p.Shape(id)
		if err != nil {
			return lp.errorf("%v", err)
		}
		return lp.objectCode(&sh.customObject, name)
	}
	if id, kind, ok := splitObjectPrefix(strings.TrimPrefix(s, "wave_")); ok && strings.HasPrefix(s, "wave_") {
		switch {
		case strings.HasPrefix(kind, "init"):
			return lp.equationLine(s, ModeWaveInit, id)
		case strings.HasPrefix(kind, "per_frame"):
			return lp.equationLine(s, ModeWavePerFrame, id)
		case strings.HasPrefix(kind, "per_point"):
			return lp.equationLine(s, ModeWavePerPoint, id)
		}
		return lp.errorf("unknown wave equation %s", s)
	}
	if id, kind, ok := splitObjectPrefix(strings.TrimPrefix(s, "shape_")); ok && strings.HasPrefix(s, "shape_") {
		switch {
		case strings.HasPrefix(kind, "init"):
			return lp.equationLine(s, ModeShapeInit, id)
		case strings.HasPrefix(kind, "per_frame"):
			return lp.equationLine(s, ModeShapePerFrame, id)
		}
		return lp.errorf("unknown shape equation %s", s)
	}
	if lp.mode != ModeNone {
		// a line without prefix continues the category of the previous one
		lp.lex.SetLastLinePrefix(s)
		lp.lex.SetWrap(true)
		return lp.equation(lp.mode, lp.obj, s)
	}
	return lp.initCond(s)
}

// splitObjectPrefix splits "3_per_frame1" into 3 and "per_frame1".
func splitObjectPrefix(s string) (int, string, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || end >= len(s) || s[end] != '_' {
		return 0, "", false
	}
	id, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, "", false
	}
	return id, s[end+1:], true
}

// equationLine handles "<prefix>=<target>=<expr>".
func (lp *lineParser) equationLine(prefix string, mode LineMode, id int) error {
	if lp.lex.PeekNewline() {
		return lp.errorf("%s has no equation", prefix)
	}
	lp.mode = mode
	lp.obj = id
	lp.lex.SetLastLinePrefix(prefix)
	lp.lex.SetWrap(true)
	tok, target, err := lp.next()
	if err != nil {
		return err
	}
	if tok != expr.TokEq || target == "" {
		return lp.errorf("%s: expected <name>=", prefix)
	}
	return lp.equation(mode, id, target)
}

// equation parses the right hand side for target and registers it in the category of mode.
func (lp *lineParser) equation(mode LineMode, id int, target string) error {
	p := lp.p
	switch mode {
	case ModePerFrame, ModePerPixel, ModePerFrameInit:
		param, e, err := lp.rhs(p.res, p.res, target)
		if err != nil {
			return err
		}
		switch mode {
		case ModePerFrame:
			p.addPerFrame(param, e)
		case ModePerFrameInit:
			p.addInitEqn(param, e)
		default:
			if !param.Flags.Has(expr.FlagPerPixel) && !param.Flags.Has(expr.FlagUserDef) {
				return lp.errorf("%s is not a per-pixel parameter", param.Name)
			}
			p.addPerPixel(param, e)
		}
	case ModeWaveInit, ModeWavePerFrame, ModeWavePerPoint:
		w, err := p.Wave(id)
		if err != nil {
			return lp.errorf("%v", err)
		}
		// targets never leave the wave; the expression also sees the preset builtins
		param, e, err := lp.rhs(w.local, w.res, target)
		if err != nil {
			return err
		}
		switch mode {
		case ModeWaveInit:
			w.addInitEqn(param, e)
		case ModeWavePerFrame:
			w.addPerFrame(param, e)
		default:
			w.addPerPoint(param, e)
		}
	case ModeShapeInit, ModeShapePerFrame:
		s, err := p.Shape(id)
		if err != nil {
			return lp.errorf("%v", err)
		}
		param, e, err := lp.rhs(s.local, s.res, target)
		if err != nil {
			return err
		}
		if mode == ModeShapeInit {
			s.addInitEqn(param, e)
		} else {
			s.addPerFrame(param, e)
		}
	default:
		return lp.errorf("no equation category for %s", target)
	}
	return nil
}

// rhs resolves the target in targets and parses the expression behind its '=' with res.
func (lp *lineParser) rhs(targets, res expr.Resolver, target string) (*expr.Param, expr.Expr, error) {
	param := targets.Lookup(target, true)
	if param == nil {
		return nil, nil, lp.errorf("invalid target %s", target)
	}
	if param.Flags.Has(expr.FlagReadOnly) {
		return nil, nil, lp.errorf("%s is read-only", param.Name)
	}
	lp.parser.SetResolver(res)
	e, term, err := lp.parser.ParseExpr()
	if err != nil {
		return nil, nil, err
	}
	if term == expr.TokRPr || term == expr.TokComma {
		return nil, nil, lp.errorf("unexpected %s", term)
	}
	return param, e, nil
}

// objectCode handles "wavecode_N_name=literal" and "shapecode_N_name=literal".
func (lp *lineParser) objectCode(o *customObject, name string) error {
	lp.mode = ModeNone
	param := o.Scope.Find(name)
	if param == nil {
		param = expr.Resolver{Create: o.Scope}.Lookup(name, true)
		if param == nil {
			return lp.errorf("invalid name %s", name)
		}
	}
	if param.Flags.Has(expr.FlagReadOnly) {
		return lp.errorf("%s is read-only", param.Name)
	}
	v, err := lp.literal(param)
	if err != nil {
		return err
	}
	o.Init.Put(param, v)
	param.Set(v)
	return nil
}

// initCond handles "name=literal".
func (lp *lineParser) initCond(name string) error {
	param := lp.p.res.Lookup(name, true)
	if param == nil {
		return lp.errorf("invalid name %s", name)
	}
	if param.Flags.Has(expr.FlagReadOnly) {
		return lp.errorf("%s is read-only", param.Name)
	}
	v, err := lp.literal(param)
	if err != nil {
		return err
	}
	lp.p.Init.Put(param, v)
	param.Set(v)
	return nil
}

func (lp *lineParser) literal(param *expr.Param) (float32, error) {
	v, term, err := lp.parser.ParseLiteral()
	if err != nil {
		return 0, err
	}
	if term == expr.TokRPr || term == expr.TokComma {
		return 0, lp.errorf("unexpected %s", term)
	}
	if param.Type == expr.TypeString {
		return 0, lp.errorf("%s takes text", param.Name)
	}
	return v, nil
}
