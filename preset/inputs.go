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

import "math"

// AudioLevels are the band levels delivered by beat detection. 1 is the long term average.
type AudioLevels struct {
	Bass, Mid, Treb          float32
	BassAtt, MidAtt, TrebAtt float32
}

// Inputs are the read-only values of one frame.
type Inputs struct {
	Time     float32
	Frame    int
	Progress float32
	FPS      float32
	AudioLevels
	PCMLeft  []float32
	PCMRight []float32
	Spectrum []float32
}

// BeatSource fills the audio part of the inputs of a frame.
type BeatSource interface {
	Analyze(in *Inputs)
}

/*
SyntheticBeat produces a deterministic test signal: three sine oscillators
stand in for bass, mid and treble, and the attenuated levels follow them with
exponential smoothing. It is used by the headless frame loop when no audio is
attached.
*/
type SyntheticBeat struct {
	Samples int
	att     AudioLevels
}

func NewSyntheticBeat(samples int) *SyntheticBeat {
	return &SyntheticBeat{Samples: samples}
}

func (s *SyntheticBeat) Analyze(in *Inputs) {
	t := float64(in.Time)
	lv := AudioLevels{
		Bass: float32(1 + 0.8*math.Sin(t*2*math.Pi*2)),
		Mid:  float32(1 + 0.5*math.Sin(t*2*math.Pi*3.1+1)),
		Treb: float32(1 + 0.3*math.Sin(t*2*math.Pi*5.3+2)),
	}
	s.att.BassAtt = smooth(s.att.BassAtt, lv.Bass)
	s.att.MidAtt = smooth(s.att.MidAtt, lv.Mid)
	s.att.TrebAtt = smooth(s.att.TrebAtt, lv.Treb)
	lv.BassAtt, lv.MidAtt, lv.TrebAtt = s.att.BassAtt, s.att.MidAtt, s.att.TrebAtt
	in.AudioLevels = lv

	n := s.Samples
	in.PCMLeft = resize(in.PCMLeft, n)
	in.PCMRight = resize(in.PCMRight, n)
	in.Spectrum = resize(in.Spectrum, n)
	for k := 0; k < n; k++ {
		phase := t + float64(k)/float64(n)
		in.PCMLeft[k] = float32(0.5 * math.Sin(phase*2*math.Pi*float64(lv.Bass)))
		in.PCMRight[k] = float32(0.5 * math.Cos(phase*2*math.Pi*float64(lv.Mid)))
		in.Spectrum[k] = float32(math.Abs(float64(lv.Treb)) / float64(k+1))
	}
}

func smooth(prev, cur float32) float32 {
	return prev*0.8 + cur*0.2
}

func resize(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}
