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
import "os"
import "fmt"
import "sync"
import "time"
import "encoding/json"
import "github.com/rs/zerolog/log"

/*
Tracefile records pipeline stages in the chrome trace format (open it in
chrome://tracing or ui.perfetto.dev). Every stage becomes a begin/end pair
on the thread of its preset, tagged with the preset name and frame number;
preset activations are instant markers.
*/
type Tracefile struct {
	file    io.WriteCloser
	enc     *json.Encoder
	isFirst bool
	tids    map[string]int
	m       sync.Mutex
}

type traceArgs struct {
	Preset string `json:"preset"`
	Frame  int    `json:"frame"`
}

type traceEvent struct {
	Name  string     `json:"name"`
	Cat   string     `json:"cat"`
	Phase string     `json:"ph"`
	TS    int64      `json:"ts"`
	PID   int        `json:"pid"`
	TID   int        `json:"tid"`
	Scope string     `json:"s,omitempty"`
	Args  *traceArgs `json:"args,omitempty"`
}

var Trace *Tracefile // active trace; nil disables tracing
var TracePrint bool  // log every traced stage

// SetTrace closes the active trace and, if on, starts a new file in $MILKVM_TRACEDIR.
func SetTrace(on bool) error {
	if Trace != nil {
		Trace.Close()
		Trace = nil
	}
	if on {
		name := fmt.Sprintf("%smilkvm_%d.json", os.Getenv("MILKVM_TRACEDIR"), time.Now().Unix())
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		log.Info().Str("file", name).Msg("tracing pipeline stages")
		Trace = NewTrace(f)
	}
	return nil
}

func NewTrace(file io.WriteCloser) *Tracefile {
	file.Write([]byte("["))
	return &Tracefile{file: file, enc: json.NewEncoder(file), isFirst: true, tids: make(map[string]int)}
}

func (t *Tracefile) Close() {
	t.file.Write([]byte("]"))
	t.file.Close()
}

// Stage wraps f in a begin/end pair named after the stage.
func (t *Tracefile) Stage(s Stage, preset string, frame int, f func()) {
	begin := time.Now()
	args := &traceArgs{preset, frame}
	t.write(traceEvent{Name: s.String(), Cat: "frame", Phase: "B"}, preset, args)
	f()
	t.write(traceEvent{Name: s.String(), Cat: "frame", Phase: "E"}, preset, nil)
	if TracePrint {
		log.Debug().Str("preset", preset).Int("frame", frame).Stringer("stage", s).Dur("took", time.Since(begin)).Msg("stage")
	}
}

// Marker records an instant event, e.g. a preset activation.
func (t *Tracefile) Marker(name, preset string) {
	t.write(traceEvent{Name: name, Cat: "preset", Phase: "i", Scope: "g"}, preset, &traceArgs{Preset: preset})
}

func (t *Tracefile) write(ev traceEvent, preset string, args *traceArgs) {
	t.m.Lock()
	defer t.m.Unlock()
	tid, ok := t.tids[preset]
	if !ok {
		// one timeline row per preset
		tid = len(t.tids) + 1
		t.tids[preset] = tid
	}
	ev.TS = time.Since(start).Microseconds()
	ev.TID = tid
	ev.Args = args
	if t.isFirst {
		t.isFirst = false
	} else {
		t.file.Write([]byte(","))
	}
	t.enc.Encode(ev)
}

var start time.Time = time.Now()
