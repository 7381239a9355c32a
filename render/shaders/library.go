package shaders

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"
	"github.com/gekko3d/prism"
)

var ErrUnknownShader = errors.New("unknown shader")

// Library resolves shader sources by file name. When Dir is set, a file of the same
// name in Dir overrides the embedded copy, which lets shaders be edited while running.
type Library struct {
	Dir    string
	logger prism.Logger
}

func NewLibrary(dir string, logger prism.Logger) *Library {
	return &Library{Dir: dir, logger: prism.OrNop(logger)}
}

func Names() []string {
	names := make([]string, 0, len(embedded))
	for name := range embedded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Overrides lists the known shaders that have a file of the same name in Dir.
func (l *Library) Overrides() []string {
	if l.Dir == "" {
		return nil
	}
	var found []string
	for _, name := range Names() {
		if _, err := os.Stat(filepath.Join(l.Dir, name)); err == nil {
			found = append(found, name)
		}
	}
	return found
}

func (l *Library) Source(name string) (string, error) {
	src, ok := embedded[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownShader, name)
	}
	if l.Dir == "" {
		return *src, nil
	}

	data, err := os.ReadFile(filepath.Join(l.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return *src, nil
	}
	if err != nil {
		return "", fmt.Errorf("read shader override %s: %w", name, err)
	}
	l.logger.Debugf("shader %s loaded from %s", name, l.Dir)
	return string(data), nil
}

// Watch reports the names of known shaders changed in Dir until ctx is done.
// The channel is closed when watching stops. Watch is a no-op without a Dir.
func (l *Library) Watch(ctx context.Context) (<-chan string, error) {
	changed := make(chan string, len(embedded))
	if l.Dir == "" {
		close(changed)
		return changed, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader watcher: %w", err)
	}
	if err := watcher.Add(l.Dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", l.Dir, err)
	}

	go func() {
		defer close(changed)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				name := filepath.Base(event.Name)
				if _, known := embedded[name]; !known {
					continue
				}
				select {
				case changed <- name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warnf("shader watcher: %v", err)
			}
		}
	}()
	return changed, nil
}
