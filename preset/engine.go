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

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/launix-de/milkvm/expr"
)

var ErrNoPreset = errors.New("no preset active")

/*
Engine owns everything one visualization instance needs: the builtin
function table with its seeded PRNG, the active preset and the renderer the
outputs go to. A failed load never replaces the active preset.

The engine is single threaded; callers serialize access (main.go funnels the
REPL and the file watcher through the frame loop).
*/
type Engine struct {
	ID       uuid.UUID
	Settings SettingsT
	Funcs    *expr.FuncTable
	Rng      *rand.Rand
	Active   *Preset
	Renderer Renderer
	Beat     BeatSource
	Stats    *Stats

	log    zerolog.Logger
	frame  int
	in     Inputs
	gx, gy int
}

func NewEngine(settings SettingsT, renderer Renderer) *Engine {
	seed := settings.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	e := &Engine{
		ID:       uuid.New(),
		Settings: settings,
		Funcs:    expr.NewFuncTable(rng),
		Rng:      rng,
		Renderer: renderer,
		Beat:     NewSyntheticBeat(MaxSamples),
		Stats:    newStats(),
		gx:       settings.MeshX,
		gy:       settings.MeshY,
	}
	e.log = log.With().Str("engine", e.ID.String()).Logger()
	e.log.Info().Uint64("seed", seed).Int("gx", e.gx).Int("gy", e.gy).Msg("engine started")
	return e
}

// LoadPreset reads, parses and activates a preset file.
func (e *Engine) LoadPreset(path string) error {
	data, err := ReadPreset(path, e.Settings.MaxPresetBytes())
	if err != nil {
		e.Stats.Rejected.Add(1)
		e.log.Error().Str("file", path).Err(err).Msg("preset rejected")
		return err
	}
	e.Stats.BytesLoaded.Add(int64(len(data)))
	return e.LoadPresetFrom(PresetName(path), path, bytes.NewReader(data))
}

// LoadPresetFrom parses preset text from r and activates it on success.
func (e *Engine) LoadPresetFrom(name, path string, r io.Reader) error {
	p, err := Load(name, r, e.Funcs, e.gx, e.gy)
	if err != nil {
		e.Stats.Rejected.Add(1)
		e.log.Error().Str("preset", name).Err(err).Msg("preset rejected, keeping the active one")
		return err
	}
	p.Path = path
	e.activate(p)
	return nil
}

func (e *Engine) activate(p *Preset) {
	p.Trace = Trace
	if Trace != nil {
		Trace.Marker("activate", p.Name)
	}
	e.Active = p
	e.frame = 0
	e.Stats.Loads.Add(1)
	e.Stats.DroppedLines.Add(int64(p.Dropped))
	e.log.Info().Str("preset", p.Name).Int("lines", p.Lines).Int("dropped", p.Dropped).Msg("preset activated")
}

// NewEmpty activates an empty preset, e.g. for the REPL when no file was given.
func (e *Engine) NewEmpty(name string) error {
	p, err := NewPreset(e.Funcs, e.gx, e.gy)
	if err != nil {
		return err
	}
	p.Name = name
	p.Finalize()
	e.activate(p)
	return nil
}

// Resize changes the mesh size of the engine and of the active preset.
func (e *Engine) Resize(gx, gy int) error {
	if e.Active != nil {
		if err := e.Active.Resize(gx, gy); err != nil {
			return err
		}
	} else if _, err := NewMesh(gx, gy); err != nil {
		return err
	}
	e.gx, e.gy = gx, gy
	return nil
}

// NextInputs advances the engine clock by one frame and asks the beat source for levels.
func (e *Engine) NextInputs() *Inputs {
	fps := e.Settings.FPS
	if fps <= 0 {
		fps = 30
	}
	in := &e.in
	in.Frame = e.frame
	in.FPS = float32(fps)
	in.Time = float32(e.frame) / float32(fps)
	if d := e.Settings.PresetDuration; d > 0 {
		in.Progress = float32(math.Mod(float64(in.Time)/d, 1))
	}
	if e.Beat != nil {
		e.Beat.Analyze(in)
	}
	return in
}

// Frame evaluates the active preset with the given inputs and hands the outputs to the renderer.
func (e *Engine) Frame(in *Inputs) (*Outputs, error) {
	p := e.Active
	if p == nil {
		return nil, ErrNoPreset
	}
	if in == nil {
		in = e.NextInputs()
	}
	began := time.Now()
	out := p.EvaluateFrame(in)
	e.Stats.observeFrame(time.Since(began))
	e.frame++
	if e.Renderer != nil {
		e.Renderer.Render(out)
	}
	return out, nil
}

// Eval evaluates a single expression against the active preset.
func (e *Engine) Eval(text string) (expr.Expr, float32, error) {
	p := e.Active
	if p == nil {
		return nil, 0, ErrNoPreset
	}
	lex := expr.NewLexer(bytes.NewBufferString(text))
	x, term, err := expr.NewParser(lex, e.Funcs, p.res).ParseExpr()
	if err != nil {
		return nil, 0, err
	}
	if term != expr.TokEOF && term != expr.TokEOL && term != expr.TokSemiColon {
		return nil, 0, fmt.Errorf("unexpected %s", term)
	}
	return x, x.Eval(p.arena, expr.NoMesh, expr.NoMesh), nil
}
