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
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/go-units"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var ErrPresetTooLarge = errors.New("preset too large")

// preset file suffixes, plain and compressed
var presetSuffixes = []string{".milk", ".milk.xz", ".milk.lz4", ".milk.gz"}

// ReadPreset reads a preset file, decompressing .xz, .lz4 and .gz on the fly.
// More than maxSize decompressed bytes are refused.
func ReadPreset(path string, maxSize int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	switch {
	case strings.HasSuffix(path, ".xz"):
		if r, err = xz.NewReader(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case strings.HasSuffix(path, ".lz4"):
		r = lz4.NewReader(f)
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%s exceeds %s: %w", path, units.HumanSize(float64(maxSize)), ErrPresetTooLarge)
	}
	return data, nil
}

// PresetName derives the display name from a file name.
func PresetName(path string) string {
	base := filepath.Base(path)
	for _, suffix := range []string{".xz", ".lz4", ".gz", ".milk"} {
		base = strings.TrimSuffix(base, suffix)
	}
	return base
}

func isPresetFile(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range presetSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// ListPresets returns the preset files of dir in case-insensitive, numeric-aware order.
func ListPresets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && isPresetFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	c := collate.New(language.Und, collate.Numeric, collate.IgnoreCase)
	c.SortStrings(names)
	result := make([]string, len(names))
	for k, name := range names {
		result[k] = filepath.Join(dir, name)
	}
	return result, nil
}
