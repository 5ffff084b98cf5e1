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
	"io"
	"runtime/debug"
	"strings"

	"github.com/chzyer/readline"
	"github.com/launix-de/milkvm/expr"
)

const newprompt = "\033[32m>\033[0m "
const contprompt = "\033[32m.\033[0m "
const resultprompt = "\033[31m=\033[0m "

var ReplInstance *readline.Instance

/*
Repl reads commands from the terminal until EOF. Every command is handed to
run, so the caller can execute it on the goroutine that owns the engine; a nil
run executes directly. Accepted input:

	per_frame_1=zoom=1.01    any preset line, added to the active preset
	zoom*2                   an expression, evaluated against the active preset
	:load file  :frame [n]  :explain expr  :help [fn]  :set [name [value]]  :stats
*/
func Repl(eng *Engine, run func(func())) {
	if run == nil {
		run = func(f func()) { f() }
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:            newprompt,
		HistoryFile:       ".milkvm-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	ReplInstance = l
	defer l.Close()
	l.CaptureExitSignal()

	oldline := ""
	for {
		line, err := l.Readline()
		line = oldline + line
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				oldline = ""
				l.SetPrompt(newprompt)
				continue
			}
		} else if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Count(line, "(") > strings.Count(line, ")") {
			// keep oldline
			oldline = line + " "
			l.SetPrompt(contprompt)
			continue
		}
		oldline = ""
		l.SetPrompt(newprompt)

		run(func() {
			// anti-panic func
			defer func() {
				if r := recover(); r != nil {
					fmt.Println("panic:", r, string(debug.Stack()))
				}
			}()
			out, err := Command(eng, line)
			if err != nil {
				fmt.Println("error:", err)
				return
			}
			if out != "" {
				fmt.Print(resultprompt)
				fmt.Println(out)
			}
		})
	}
}

// Command executes one REPL line and returns the text to print.
func Command(eng *Engine, line string) (string, error) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, ":") {
		fields := strings.Fields(line[1:])
		if len(fields) == 0 {
			return "", fmt.Errorf("empty command")
		}
		return command(eng, fields[0], strings.TrimSpace(strings.TrimPrefix(line[1:], fields[0])))
	}
	if strings.Contains(line, "=") {
		if eng.Active == nil {
			return "", ErrNoPreset
		}
		return "", eng.Active.ParseLine(line)
	}
	_, v, err := eng.Eval(line)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

func command(eng *Engine, name, arg string) (string, error) {
	switch name {
	case "load":
		if err := eng.LoadPreset(arg); err != nil {
			return "", err
		}
		return eng.Active.Name, nil
	case "frame":
		n := 1
		if arg != "" {
			if _, err := fmt.Sscan(arg, &n); err != nil {
				return "", err
			}
		}
		if n < 1 {
			n = 1
		}
		var out *Outputs
		for k := 0; k < n; k++ {
			var err error
			if out, err = eng.Frame(nil); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("frame %d zoom=%g rot=%g decay=%g", out.Frame, out.Scalars["zoom"], out.Scalars["rot"], out.Scalars["decay"]), nil
	case "explain":
		x, v, err := eng.Eval(arg)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %g", x, v), nil
	case "help":
		if arg == "" {
			var names []string
			for _, fn := range eng.Funcs.All() {
				names = append(names, fn.Name)
			}
			return strings.Join(names, " "), nil
		}
		if h := eng.Funcs.Help(arg); h != "" {
			return h, nil
		}
		if eng.Active != nil {
			if p := eng.Active.Param(arg); p != nil {
				return fmt.Sprintf("%s (%s): %s", p.Name, p.Type, p.Desc), nil
			}
		}
		return "", fmt.Errorf("no help for %s", arg)
	case "set":
		result, err := ChangeSettings(strings.Fields(arg)...)
		if err != nil {
			return "", err
		}
		return strings.Join(result, " "), nil
	case "vars":
		if eng.Active == nil {
			return "", ErrNoPreset
		}
		var lines []string
		eng.Active.User.Each(func(p *expr.Param) bool {
			lines = append(lines, fmt.Sprintf("%s=%g", p.Name, p.Value()))
			return true
		})
		return strings.Join(lines, "\n"), nil
	case "stats":
		return eng.Stats.String(), nil
	}
	return "", fmt.Errorf("unknown command :%s", name)
}
