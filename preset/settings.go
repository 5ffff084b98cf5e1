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
	"fmt"
	"os"
	"strconv"

	"github.com/dc0d/onexit"
	"github.com/docker/go-units"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type SettingsT struct {
	MeshX          int     `yaml:"mesh_x"`
	MeshY          int     `yaml:"mesh_y"`
	Seed           uint64  `yaml:"seed"` // 0 = random
	FPS            int     `yaml:"fps"`
	PresetDuration float64 `yaml:"preset_duration"` // seconds until progress reaches 1
	MaxPresetSize  string  `yaml:"max_preset_size"`
	Trace          bool    `yaml:"trace"`
	TracePrint     bool    `yaml:"trace_print"`
	LogLevel       string  `yaml:"log_level"`
	PresetDir      string  `yaml:"preset_dir"`
	Watch          bool    `yaml:"watch"`
}

var Settings SettingsT = SettingsT{32, 24, 0, 30, 15, "4MB", false, false, "info", ".", false}

// call this after you filled Settings
func InitSettings() error {
	if err := SetTrace(Settings.Trace); err != nil {
		return err
	}
	TracePrint = Settings.TracePrint
	onexit.Register(func() { SetTrace(false) }) // close trace file on exit
	return nil
}

// LoadSettingsFile overlays Settings with the keys of a YAML file. Unknown keys are an error.
func LoadSettingsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	s := Settings
	if err := dec.Decode(&s); err != nil {
		return fmt.Errorf("settings %s: %w", path, err)
	}
	if _, err := units.RAMInBytes(s.MaxPresetSize); err != nil {
		return fmt.Errorf("settings %s: max_preset_size: %w", path, err)
	}
	Settings = s
	log.Debug().Str("file", path).Msg("settings loaded")
	return nil
}

// MaxPresetBytes is MaxPresetSize in bytes.
func (s SettingsT) MaxPresetBytes() int64 {
	n, err := units.RAMInBytes(s.MaxPresetSize)
	if err != nil || n <= 0 {
		return 4 * units.MiB
	}
	return n
}

var settingNames = []string{"MeshX", "MeshY", "Seed", "FPS", "PresetDuration", "MaxPresetSize", "Trace", "TracePrint", "LogLevel", "PresetDir", "Watch"}

func getSetting(name string) string {
	switch name {
	case "MeshX":
		return strconv.Itoa(Settings.MeshX)
	case "MeshY":
		return strconv.Itoa(Settings.MeshY)
	case "Seed":
		return strconv.FormatUint(Settings.Seed, 10)
	case "FPS":
		return strconv.Itoa(Settings.FPS)
	case "PresetDuration":
		return strconv.FormatFloat(Settings.PresetDuration, 'g', -1, 64)
	case "MaxPresetSize":
		return Settings.MaxPresetSize
	case "Trace":
		return strconv.FormatBool(Settings.Trace)
	case "TracePrint":
		return strconv.FormatBool(Settings.TracePrint)
	case "LogLevel":
		return Settings.LogLevel
	case "PresetDir":
		return Settings.PresetDir
	case "Watch":
		return strconv.FormatBool(Settings.Watch)
	default:
		panic("unknown setting: " + name)
	}
}

/*
ChangeSettings reads or writes a setting by name:

	ChangeSettings()             name, value, name, value, ...
	ChangeSettings(name)         value
	ChangeSettings(name, value)  stores value and returns it

An unknown name panics; a malformed value is returned as error.
*/
func ChangeSettings(a ...string) ([]string, error) {
	if len(a) == 0 {
		result := make([]string, 0, 2*len(settingNames))
		for _, name := range settingNames {
			result = append(result, name, getSetting(name))
		}
		return result, nil
	} else if len(a) == 1 {
		return []string{getSetting(a[0])}, nil
	}
	var err error
	value := a[1]
	switch a[0] {
	case "MeshX":
		Settings.MeshX, err = strconv.Atoi(value)
	case "MeshY":
		Settings.MeshY, err = strconv.Atoi(value)
	case "Seed":
		Settings.Seed, err = strconv.ParseUint(value, 10, 64)
	case "FPS":
		Settings.FPS, err = strconv.Atoi(value)
	case "PresetDuration":
		Settings.PresetDuration, err = strconv.ParseFloat(value, 64)
	case "MaxPresetSize":
		if _, err = units.RAMInBytes(value); err == nil {
			Settings.MaxPresetSize = value
		}
	case "Trace":
		if Settings.Trace, err = strconv.ParseBool(value); err == nil {
			err = SetTrace(Settings.Trace)
		}
	case "TracePrint":
		Settings.TracePrint, err = strconv.ParseBool(value)
		TracePrint = Settings.TracePrint
	case "LogLevel":
		Settings.LogLevel = value
	case "PresetDir":
		Settings.PresetDir = value
	case "Watch":
		Settings.Watch, err = strconv.ParseBool(value)
	default:
		panic("unknown setting: " + a[0])
	}
	if err != nil {
		return nil, fmt.Errorf("setting %s: %w", a[0], err)
	}
	return []string{getSetting(a[0])}, nil
}
