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

import "os"
import "fmt"
import "strings"
import "path/filepath"

// ParamChapter groups a scope of builtin parameters under a documentation title.
type ParamChapter struct {
	Title string
	Scope *Scope
}

// slugify makes a filesystem-safe, lowercase slug from a chapter title.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		out = "chapter"
	}
	return out
}

// WriteDocumentation generates Markdown docs:
// - index.md with links to chapters
// - one file per function chapter and one per parameter chapter
func WriteDocumentation(folder string, t *FuncTable, params ...ParamChapter) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %q: %w", folder, err)
	}

	type chapter struct {
		Title string
		Fns   []*Func
	}
	var chapters []*chapter
	for _, title := range t.titles {
		if title[0] == '#' {
			chapters = append(chapters, &chapter{Title: title[1:]})
			continue
		}
		if len(chapters) == 0 {
			chapters = append(chapters, &chapter{Title: "General"})
		}
		if fn := t.Lookup(title); fn != nil {
			last := chapters[len(chapters)-1]
			last.Fns = append(last.Fns, fn)
		}
	}

	indexPath := filepath.Join(folder, "index.md")
	index, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", indexPath, err)
	}
	defer index.Close()
	fmt.Fprint(index, "# Documentation\n\n")

	for _, ch := range chapters {
		if len(ch.Fns) == 0 {
			continue
		}
		slug := slugify(ch.Title)
		fmt.Fprintf(index, "- [%s](%s.md)\n", ch.Title, slug)
		err := writeFile(filepath.Join(folder, slug+".md"), func(f *os.File) {
			fmt.Fprintf(f, "# %s\n\n", ch.Title)
			for _, fn := range ch.Fns {
				fmt.Fprintf(f, "## %s\n\n", fn.Name)
				if fn.Desc != "" {
					fmt.Fprintf(f, "%s\n\n", fn.Desc)
				}
				fmt.Fprintf(f, "**Number of parameters:** %d\n\n", fn.NumArgs())
				fmt.Fprint(f, "### Parameters\n\n")
				for _, p := range fn.Params {
					fmt.Fprintf(f, "- **%s**: %s\n", p.Name, p.Desc)
				}
				fmt.Fprintln(f)
			}
		})
		if err != nil {
			return err
		}
	}

	for _, ch := range params {
		slug := slugify(ch.Title)
		fmt.Fprintf(index, "- [%s](%s.md)\n", ch.Title, slug)
		err := writeFile(filepath.Join(folder, slug+".md"), func(f *os.File) {
			fmt.Fprintf(f, "# %s\n\n", ch.Title)
			fmt.Fprint(f, "| name | type | default | range | flags | description |\n")
			fmt.Fprint(f, "|---|---|---|---|---|---|\n")
			ch.Scope.Each(func(p *Param) bool {
				fmt.Fprintf(f, "| %s | %s | %g | %s | %s | %s |\n", p.Name, p.Type, p.Default, describeRange(p), describeFlags(p.Flags), p.Desc)
				return true
			})
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, fn func(*os.File)) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	fn(f)
	return f.Close()
}

func describeRange(p *Param) string {
	if p.Lower <= -Unbounded && p.Upper >= Unbounded {
		return ""
	}
	if p.Upper >= Unbounded {
		return fmt.Sprintf("%g..", p.Lower)
	}
	return fmt.Sprintf("%g..%g", p.Lower, p.Upper)
}

func describeFlags(f ParamFlags) string {
	var parts []string
	for _, x := range []struct {
		flag ParamFlags
		name string
	}{
		{FlagReadOnly, "read-only"},
		{FlagQVar, "q"},
		{FlagTVar, "t"},
		{FlagPerPixel, "per-pixel"},
		{FlagPerPoint, "per-point"},
	} {
		if f.Has(x.flag) {
			parts = append(parts, x.name)
		}
	}
	return strings.Join(parts, ", ")
}

// Help returns a short description of a builtin function.
func (t *FuncTable) Help(name string) string {
	fn := t.Lookup(name)
	if fn == nil {
		return ""
	}
	args := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		args[i] = p.Name
	}
	return fmt.Sprintf("%s(%s): %s", fn.Name, strings.Join(args, ", "), fn.Desc)
}
