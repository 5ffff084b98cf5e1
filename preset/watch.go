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

import "time"
import "github.com/fsnotify/fsnotify"
import "github.com/rs/zerolog/log"

// Watcher calls onChange whenever the watched preset file was written.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	done    chan struct{}
}

// Watch starts watching path. onChange runs on the watcher goroutine; a
// panic inside it is logged and does not stop the watcher.
func Watch(path string, onChange func(path string)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{watcher: watcher, path: path, done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-w.done:
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Str("file", path).Err(err).Msg("watch error")
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				// flush all other events
				for {
					time.Sleep(10 * time.Millisecond) // delay a bit, so we don't read empty files
					select {
					case <-watcher.Events:
						// ignore
					default:
						goto to_reread
					}
				}
			to_reread:
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Error().Str("file", path).Interface("panic", r).Msg("reload failed")
						}
					}()
					onChange(path)
				}()
				watcher.Add(path) // text editors rename, so we have to rewatch
			}
		}
	}()
	if err := watcher.Add(path); err != nil {
		close(w.done)
		watcher.Close()
		return nil, err
	}
	log.Info().Str("file", path).Msg("watching preset")
	return w, nil
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
