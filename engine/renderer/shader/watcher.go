package shader

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/events"

	"github.com/fsnotify/fsnotify"
)

// debounce is the window in which repeated writes to one file produce a single event.
// Editors commonly truncate and then write, which fsnotify reports as two writes.
const debounce = 50 * time.Millisecond

type watcher struct {
	fs    *fsnotify.Watcher
	queue events.Queue

	mu       sync.Mutex
	dirs     map[string]bool
	files    map[string]bool
	lastPush map[string]time.Time

	done chan struct{}
	wg   sync.WaitGroup
}

// Watcher turns file system changes to shader sources into events.ShaderChanged
// events on a queue. It watches the directories of every registered file so editors
// that save by renaming a temporary file are still observed.
type Watcher interface {
	// Watch registers every file the shader was assembled from.
	//
	// Parameters:
	//   - s: the shader to watch
	//
	// Returns:
	//   - error: an error if a directory could not be watched
	Watch(s Shader) error

	// Close stops watching and waits for the event goroutine to exit.
	//
	// Returns:
	//   - error: the error reported by the underlying watcher, if any
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher starts a watcher publishing to queue.
//
// Parameters:
//   - queue: the event queue receiving ShaderChanged and error events
//
// Returns:
//   - Watcher: the running watcher
//   - error: an error if the platform watcher could not be created
func NewWatcher(queue events.Queue) (Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader: create watcher: %w", err)
	}
	w := &watcher{
		fs:       fw,
		queue:    queue,
		dirs:     make(map[string]bool),
		files:    make(map[string]bool),
		lastPush: make(map[string]time.Time),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *watcher) Watch(s Shader) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range s.Files() {
		w.files[f] = true
		dir := filepath.Dir(f)
		if w.dirs[dir] {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("shader: watch %q: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	return nil
}

func (w *watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.changed(ev.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.queue.Push(events.Event{Kind: events.KindError, Payload: events.Error{Source: "shader watcher", Err: err}})
		}
	}
}

func (w *watcher) changed(name string) {
	path, err := filepath.Abs(name)
	if err != nil {
		return
	}

	w.mu.Lock()
	watched := w.files[path]
	now := time.Now()
	recent := now.Sub(w.lastPush[path]) < debounce
	if watched && !recent {
		w.lastPush[path] = now
	}
	w.mu.Unlock()

	if watched && !recent {
		w.queue.Push(events.Event{Kind: events.KindShaderChanged, Payload: events.ShaderChanged{Path: path}})
	}
}
