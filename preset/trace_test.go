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
	"encoding/json"
	"testing"
)

type traceBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *traceBuffer) Close() error {
	b.closed = true
	return nil
}

func (b *traceBuffer) events(t *testing.T) []map[string]any {
	t.Helper()
	var result []map[string]any
	if err := json.Unmarshal(b.Bytes(), &result); err != nil {
		t.Fatalf("trace is not valid JSON: %v\n%s", err, b.String())
	}
	return result
}

// TestTraceFormat checks that the trace file is a JSON array of tagged events.
func TestTraceFormat(t *testing.T) {
	var buf traceBuffer
	tr := NewTrace(&buf)
	tr.Stage(StagePerFrameEqns, "dark \"tunnel\"", 7, func() {})
	tr.Marker("activate", "dark \"tunnel\"")
	tr.Stage(StagePublishOutputs, "other", 0, func() {})
	tr.Close()
	if !buf.closed {
		t.Errorf("file not closed")
	}
	events := buf.events(t)
	if len(events) != 5 {
		t.Fatalf("%d events", len(events))
	}
	if events[0]["name"] != "PerFrameEqns" || events[0]["ph"] != "B" || events[1]["ph"] != "E" {
		t.Errorf("unexpected events %v", events)
	}
	args, ok := events[0]["args"].(map[string]any)
	if !ok || args["preset"] != "dark \"tunnel\"" || args["frame"] != 7.0 {
		t.Errorf("stage args: %v", events[0]["args"])
	}
	if events[2]["ph"] != "i" || events[2]["cat"] != "preset" {
		t.Errorf("marker: %v", events[2])
	}
	if events[0]["tid"] != events[2]["tid"] || events[0]["tid"] == events[3]["tid"] {
		t.Errorf("presets must have their own rows: %v", events)
	}
}

// TestEmptyTrace checks that a trace without events is still valid.
func TestEmptyTrace(t *testing.T) {
	var buf traceBuffer
	NewTrace(&buf).Close()
	if len(buf.events(t)) != 0 {
		t.Errorf("events in empty trace")
	}
}
