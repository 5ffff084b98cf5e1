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
/*
	milkvm evaluates Milkdrop presets headless: equations are compiled once
	and run per frame against the warp mesh; the outputs go to a renderer.

*/
package main

import "os"
import "fmt"
import "flag"
import "time"
import "syscall"
import "os/signal"
import "crypto/rand"
import "runtime/pprof"
import "github.com/google/uuid"
import "github.com/rs/zerolog"
import "github.com/rs/zerolog/log"
import "github.com/launix-de/milkvm/preset"

// workaround for flags package to allow multiple values
type arrayFlags []string

func (i *arrayFlags) String() string {
	return "dummy"
}

func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func setupLogging(level string, json bool) {
	if !json {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// summary is the renderer of the headless mode: it logs a line per second of preset time.
func summary(fps int) preset.Renderer {
	if fps <= 0 {
		fps = 30
	}
	return preset.RendererFunc(func(o *preset.Outputs) {
		if o.Frame%fps != 0 {
			return
		}
		log.Debug().Int("frame", o.Frame).
			Float32("zoom", o.Scalars["zoom"]).
			Float32("rot", o.Scalars["rot"]).
			Float32("decay", o.Scalars["decay"]).
			Int("matrices", len(o.Matrices)).
			Int("waves", len(o.Waves)).
			Int("shapes", len(o.Shapes)).
			Msg("frame")
	})
}

func main() {
	fmt.Fprint(os.Stderr, `milkvm Copyright (C) 2026   Carl-Philip Hänsch
    This program comes with ABSOLUTELY NO WARRANTY;
    This is free software, and you are welcome to redistribute it
    under certain conditions;

`)

	// init random generator for UUIDs
	uuid.SetRand(rand.Reader)

	// parse command line options
	var commands arrayFlags
	flag.Var(&commands, "c", "Execute a preset line, expression or :command")
	config := flag.String("config", "", "YAML settings file")
	presetFile := flag.String("preset", "", "Preset file to load (.milk, .milk.xz, .milk.lz4, .milk.gz)")
	dir := flag.String("dir", "", "Preset folder; the first preset is loaded if -preset is not given")
	frames := flag.Int("frames", 0, "Number of frames to evaluate headless")
	mesh := flag.String("mesh", "", "Mesh size WxH (Default: 32x24)")
	seed := flag.Uint64("seed", 0, "PRNG seed for rand() (Default: random)")
	watch := flag.Bool("watch", false, "Reload the preset when the file changes")
	trace := flag.Bool("trace", false, "Write a chrome trace of every pipeline stage")
	repl := flag.Bool("repl", false, "Start the interactive prompt")
	logjson := flag.Bool("logjson", false, "Log JSON instead of console output")
	loglevel := flag.String("loglevel", "", "Log level (debug, info, warn, error)")
	profile := flag.String("profile", "", "Write a CPU profile to this file")
	flag.Parse()

	setupLogging(preset.Settings.LogLevel, *logjson)
	if *config != "" {
		if err := preset.LoadSettingsFile(*config); err != nil {
			log.Fatal().Err(err).Msg("cannot read settings")
		}
	}
	// flags override the settings file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			preset.Settings.PresetDir = *dir
		case "seed":
			preset.Settings.Seed = *seed
		case "watch":
			preset.Settings.Watch = *watch
		case "trace":
			preset.Settings.Trace = *trace
		case "loglevel":
			preset.Settings.LogLevel = *loglevel
		case "mesh":
			if _, err := fmt.Sscanf(*mesh, "%dx%d", &preset.Settings.MeshX, &preset.Settings.MeshY); err != nil {
				log.Fatal().Str("mesh", *mesh).Msg("mesh must look like 48x36")
			}
		}
	})
	setupLogging(preset.Settings.LogLevel, *logjson)
	if err := preset.InitSettings(); err != nil {
		log.Fatal().Err(err).Msg("cannot initialize settings")
	}

	eng := preset.NewEngine(preset.Settings, summary(preset.Settings.FPS))

	// the engine is single threaded: the REPL and the watcher send their work here
	jobs := make(chan func())
	go func() {
		for f := range jobs {
			f()
		}
	}()
	run := func(f func()) {
		finished := make(chan struct{})
		jobs <- func() {
			defer close(finished)
			f()
		}
		<-finished
	}

	path := *presetFile
	if path == "" && *dir != "" {
		list, err := preset.ListPresets(preset.Settings.PresetDir)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot list presets")
		}
		if len(list) > 0 {
			path = list[0]
		}
		log.Info().Int("presets", len(list)).Str("dir", preset.Settings.PresetDir).Msg("preset folder")
	}
	if path != "" {
		if err := eng.LoadPreset(path); err != nil {
			log.Fatal().Err(err).Msg("cannot load preset")
		}
	} else if err := eng.NewEmpty("scratch"); err != nil {
		log.Fatal().Err(err).Msg("cannot create preset")
	}

	if preset.Settings.Watch && path != "" {
		w, err := preset.Watch(path, func(path string) {
			run(func() {
				if err := eng.LoadPreset(path); err == nil {
					log.Info().Str("file", path).Msg("preset reloaded")
				}
			})
		})
		if err != nil {
			log.Fatal().Err(err).Msg("cannot watch preset")
		}
		defer w.Close()
	}

	for _, command := range commands {
		fmt.Println("Executing " + command + " ...")
		run(func() {
			out, err := preset.Command(eng, command)
			if err != nil {
				log.Error().Str("command", command).Err(err).Msg("command failed")
			} else if out != "" {
				fmt.Println(out)
			}
		})
	}

	// install exit handler
	cancelChan := make(chan os.Signal, 1)
	signal.Notify(cancelChan, syscall.SIGTERM, syscall.SIGINT)
	go (func() {
		<-cancelChan
		exitroutine(eng)
		os.Exit(1)
	})()

	// init profiling
	if *profile != "" {
		f, err := os.Create(*profile)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot create profile")
		}
		defer f.Close()
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if *frames > 0 {
		run(func() {
			for k := 0; k < *frames; k++ {
				if _, err := eng.Frame(nil); err != nil {
					log.Error().Err(err).Msg("frame failed")
					return
				}
			}
		})
		log.Info().Str("stats", eng.Stats.String()).Msg("frames done")
	}

	if *repl {
		fmt.Print(`
    Type :help to list the builtin functions

`)
		preset.Repl(eng, run)
	}

	// normal shutdown
	exitroutine(eng)
}

func exitroutine(eng *preset.Engine) {
	log.Info().Str("stats", eng.Stats.String()).Msg("exit procedure")
	if preset.ReplInstance != nil {
		// in case it dosen't exit properly
		preset.ReplInstance.Close()
	}
	preset.SetTrace(false)
}
