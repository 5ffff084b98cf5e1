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

import "fmt"
import "github.com/launix-de/milkvm/expr"

const NumQVars = 32
const NumTVars = 8

// MaxSamples is the point capacity of a custom wave.
const MaxSamples = 512

const (
	ro       = expr.FlagReadOnly
	perPixel = expr.FlagPerPixel
	perPoint = expr.FlagPerPoint | expr.FlagAlwaysMatrix
	meshIn   = expr.FlagPerPixel | expr.FlagAlwaysMatrix | expr.FlagReadOnly
)

type paramDef struct {
	name  string
	alias string
	typ   expr.ParamType
	flags expr.ParamFlags
	def   float32
	lower float32
	upper float32
	desc  string
}

func dbl(name, alias string, def float32, flags expr.ParamFlags, desc string) paramDef {
	return paramDef{name, alias, expr.TypeDouble, flags, def, -expr.Unbounded, expr.Unbounded, desc}
}

func unit(name, alias string, def float32, desc string) paramDef {
	return paramDef{name, alias, expr.TypeDouble, 0, def, 0, 1, desc}
}

func flag(name, alias string, def float32, desc string) paramDef {
	return paramDef{name, alias, expr.TypeBool, 0, def, 0, 1, desc}
}

func integer(name, alias string, def, lower, upper float32, flags expr.ParamFlags, desc string) paramDef {
	return paramDef{name, alias, expr.TypeInt, flags, def, lower, upper, desc}
}

// per-pixel warp parameters, published as matrices
var meshParams = []string{"zoom", "zoomexp", "rot", "warp", "cx", "cy", "dx", "dy", "sx", "sy"}

var presetParams = []paramDef{
	dbl("zoom", "", 1, perPixel, "inward/outward motion, 1 is none"),
	dbl("zoomexp", "fZoomExponent", 1, perPixel, "curvature of the zoom"),
	dbl("rot", "", 0, perPixel, "rotation around (cx, cy)"),
	dbl("warp", "", 1, perPixel, "warping amount"),
	dbl("cx", "", 0.5, perPixel, "rotation center x"),
	dbl("cy", "", 0.5, perPixel, "rotation center y"),
	dbl("dx", "", 0, perPixel, "horizontal motion"),
	dbl("dy", "", 0, perPixel, "vertical motion"),
	dbl("sx", "", 1, perPixel, "horizontal stretch"),
	dbl("sy", "", 1, perPixel, "vertical stretch"),

	unit("decay", "fDecay", 0.98, "fade to black per frame"),
	dbl("gamma", "fGammaAdj", 2, 0, "brightness adjustment"),
	dbl("echo_zoom", "fVideoEchoZoom", 2, 0, "video echo zoom"),
	unit("echo_alpha", "fVideoEchoAlpha", 0, "video echo opacity"),
	integer("echo_orient", "nVideoEchoOrientation", 0, 0, 3, 0, "video echo orientation"),
	dbl("fRating", "", 3, 0, "preset rating"),
	dbl("fShader", "", 0, 0, "hue shader amount"),
	dbl("warpanimspeed", "fWarpAnimSpeed", 1, 0, "warp animation speed"),
	dbl("warpscale", "fWarpScale", 1, 0, "warp scale"),

	integer("wave_mode", "nWaveMode", 0, 0, 7, 0, "waveform drawing mode"),
	unit("wave_r", "", 1, "waveform red"),
	unit("wave_g", "", 1, "waveform green"),
	unit("wave_b", "", 1, "waveform blue"),
	unit("wave_x", "", 0.5, "waveform x position"),
	unit("wave_y", "", 0.5, "waveform y position"),
	dbl("wave_a", "fWaveAlpha", 0.8, 0, "waveform opacity"),
	dbl("wave_mystery", "fWaveParam", 0, 0, "mode dependent waveform parameter"),
	dbl("wave_scale", "fWaveScale", 1, 0, "waveform scale"),
	unit("wave_smoothing", "fWaveSmoothing", 0.75, "waveform smoothing"),
	flag("wave_additive", "bAdditiveWaves", 0, "additive waveform drawing"),
	flag("wave_usedots", "bWaveDots", 0, "draw waveform as dots"),
	flag("wave_thick", "bWaveThick", 0, "thick waveform"),
	flag("wave_brighten", "bMaximizeWaveColor", 1, "maximize waveform color"),
	flag("modwavealphabyvolume", "bModWaveAlphaByVolume", 0, "modulate waveform opacity by volume"),
	dbl("modwavealphastart", "fModWaveAlphaStart", 0.75, 0, "volume where waveform opacity starts"),
	dbl("modwavealphaend", "fModWaveAlphaEnd", 0.95, 0, "volume where waveform opacity ends"),

	flag("wrap", "bTexWrap", 1, "wrap texture at the edges"),
	flag("darken_center", "bDarkenCenter", 0, "darken the center"),
	flag("red_blue", "bRedBlueStereo", 0, "red/blue stereo"),
	flag("brighten", "bBrighten", 0, "brighten filter"),
	flag("darken", "bDarken", 0, "darken filter"),
	flag("solarize", "bSolarize", 0, "solarize filter"),
	flag("invert", "bInvert", 0, "invert filter"),

	dbl("ob_size", "", 0.01, 0, "outer border size"),
	unit("ob_r", "", 0, "outer border red"),
	unit("ob_g", "", 0, "outer border green"),
	unit("ob_b", "", 0, "outer border blue"),
	unit("ob_a", "", 0, "outer border opacity"),
	dbl("ib_size", "", 0.01, 0, "inner border size"),
	unit("ib_r", "", 0.25, "inner border red"),
	unit("ib_g", "", 0.25, "inner border green"),
	unit("ib_b", "", 0.25, "inner border blue"),
	unit("ib_a", "", 0, "inner border opacity"),

	dbl("mv_x", "nMotionVectorsX", 12, 0, "motion vector columns"),
	dbl("mv_y", "nMotionVectorsY", 9, 0, "motion vector rows"),
	dbl("mv_dx", "", 0, 0, "motion vector x offset"),
	dbl("mv_dy", "", 0, 0, "motion vector y offset"),
	dbl("mv_l", "", 0.9, 0, "motion vector length"),
	unit("mv_r", "", 1, "motion vector red"),
	unit("mv_g", "", 1, "motion vector green"),
	unit("mv_b", "", 1, "motion vector blue"),
	unit("mv_a", "", 1, "motion vector opacity"),
	dbl("monitor", "", 0, 0, "debug output value"),

	dbl("time", "", 0, ro, "seconds since the preset started"),
	integer("frame", "", 0, 0, expr.Unbounded, ro, "frames since the preset started"),
	integer("fps", "", 30, 0, expr.Unbounded, ro, "frames per second"),
	paramDef{"progress", "", expr.TypeDouble, ro, 0, 0, 1, "position in the preset's display time"},
	dbl("bass", "", 0, ro, "bass level, 1 is average"),
	dbl("mid", "", 0, ro, "mid level, 1 is average"),
	dbl("treb", "", 0, ro, "treble level, 1 is average"),
	dbl("bass_att", "", 0, ro, "attenuated bass level"),
	dbl("mid_att", "", 0, ro, "attenuated mid level"),
	dbl("treb_att", "", 0, ro, "attenuated treble level"),
	integer("meshx", "", 32, 0, expr.Unbounded, ro, "mesh columns"),
	integer("meshy", "", 24, 0, expr.Unbounded, ro, "mesh rows"),

	dbl("x", "", 0, meshIn, "mesh x coordinate, 0 left 1 right"),
	dbl("y", "", 0, meshIn, "mesh y coordinate, 0 bottom 1 top"),
	dbl("rad", "", 0, meshIn, "distance from the center"),
	dbl("ang", "", 0, meshIn, "angle around the center"),
}

var waveParams = []paramDef{
	flag("enabled", "bEnabled", 0, "wave is drawn"),
	flag("spectrum", "bSpectrum", 0, "use the spectrum instead of the waveform"),
	flag("additive", "bAdditive", 0, "additive drawing"),
	flag("usedots", "bUseDots", 0, "draw dots"),
	flag("thick", "bDrawThick", 0, "thick lines"),
	dbl("scaling", "", 1, 0, "sample scaling"),
	unit("smoothing", "", 0.5, "sample smoothing"),
	integer("samples", "", MaxSamples, 0, MaxSamples, 0, "number of points"),
	integer("sep", "", 0, 0, MaxSamples, 0, "separation between left and right channel"),

	dbl("x", "", 0.5, perPoint, "point x"),
	dbl("y", "", 0.5, perPoint, "point y"),
	dbl("r", "", 1, perPoint, "point red"),
	dbl("g", "", 1, perPoint, "point green"),
	dbl("b", "", 1, perPoint, "point blue"),
	dbl("a", "", 1, perPoint, "point opacity"),

	dbl("sample", "", 0, ro, "position of the point, 0 to 1"),
	dbl("value1", "", 0, ro, "left channel value at the point"),
	dbl("value2", "", 0, ro, "right channel value at the point"),
}

var shapeParams = []paramDef{
	flag("enabled", "bEnabled", 0, "shape is drawn"),
	integer("sides", "", 4, 3, 100, 0, "number of sides"),
	flag("additive", "bAdditive", 0, "additive drawing"),
	flag("thickoutline", "", 0, "thick border"),
	flag("textured", "", 0, "map the previous frame onto the shape"),
	dbl("tex_zoom", "", 1, 0, "texture zoom"),
	dbl("tex_ang", "", 0, 0, "texture angle"),
	dbl("x", "", 0.5, 0, "center x"),
	dbl("y", "", 0.5, 0, "center y"),
	dbl("rad", "", 0.1, 0, "radius"),
	dbl("ang", "", 0, 0, "rotation"),
	unit("r", "", 1, "center red"),
	unit("g", "", 0, "center green"),
	unit("b", "", 0, "center blue"),
	unit("a", "", 1, "center opacity"),
	unit("r2", "", 0, "edge red"),
	unit("g2", "", 1, "edge green"),
	unit("b2", "", 0, "edge blue"),
	unit("a2", "", 0, "edge opacity"),
	unit("border_r", "", 1, "border red"),
	unit("border_g", "", 1, "border green"),
	unit("border_b", "", 1, "border blue"),
	unit("border_a", "", 0.1, "border opacity"),
}

func defineAll(scope *expr.Scope, defs []paramDef) {
	for _, d := range defs {
		var aliases []string
		if d.alias != "" {
			aliases = append(aliases, d.alias)
		}
		scope.Define(expr.Param{
			Name:    d.name,
			Desc:    d.desc,
			Type:    d.typ,
			Flags:   d.flags,
			Default: d.def,
			Lower:   d.lower,
			Upper:   d.upper,
		}, aliases...)
	}
}

// defineQVars adds q1..q32 with the given extra flags.
func defineQVars(scope *expr.Scope, flags expr.ParamFlags) (result [NumQVars]*expr.Param) {
	for i := range result {
		result[i] = scope.Define(expr.Param{
			Name:  fmt.Sprintf("q%d", i+1),
			Desc:  "scratch value shared with custom waves and shapes",
			Type:  expr.TypeDouble,
			Flags: expr.FlagQVar | flags,
		})
	}
	return
}

func defineTVars(scope *expr.Scope) {
	for i := 1; i <= NumTVars; i++ {
		scope.Define(expr.Param{
			Name:  fmt.Sprintf("t%d", i),
			Desc:  "scratch value of this object",
			Type:  expr.TypeDouble,
			Flags: expr.FlagTVar,
		})
	}
}

// DocScopes returns scopes carrying the builtin parameters for documentation purposes.
func DocScopes() []expr.ParamChapter {
	arena := expr.NewArena()
	p := expr.NewScope("preset", arena)
	defineAll(p, presetParams)
	defineQVars(p, expr.FlagPerPixel)
	w := expr.NewScope("wave", arena)
	defineAll(w, waveParams)
	defineTVars(w)
	s := expr.NewScope("shape", arena)
	defineAll(s, shapeParams)
	defineTVars(s)
	return []expr.ParamChapter{
		{Title: "Preset parameters", Scope: p},
		{Title: "Custom wave parameters", Scope: w},
		{Title: "Custom shape parameters", Scope: s},
	}
}
