package watchers

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/arvhem/beambar/internal/scheduler"
)

// FileWatcher watches one file for writes and queues a scheduler task per
// write. A watch failure never takes the process down: it is logged,
// reported once through the failure callback, and ends only this watcher.
type FileWatcher struct {
	path    string
	id      string
	tasks   chan<- scheduler.Task
	log     zerolog.Logger
	onFail  func(error)
	stop    chan struct{}
	done    chan struct{}
	failing sync.Once
	started bool
}

func NewFileWatcher(path, id string, tasks chan<- scheduler.Task, log zerolog.Logger) *FileWatcher {
	return &FileWatcher{
		path:  path,
		id:    id,
		tasks: tasks,
		log:   log.With().Str("watch", path).Logger(),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// OnFailure registers a callback invoked at most once, when the watch loop
// dies from an I/O error. Must be called before Start.
func (w *FileWatcher) OnFailure(fn func(error)) {
	w.onFail = fn
}

// Start registers the watch and spawns the loop. Initialization errors are
// returned to the caller instead of being treated as fatal.
func (w *FileWatcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watchers: init fsnotify: %w", err)
	}
	if err := fw.Add(w.path); err != nil {
		fw.Close()
		return fmt.Errorf("watchers: watch %s: %w", w.path, err)
	}

	w.started = true
	go w.run(fw)
	return nil
}

// Stop ends the watch loop and waits for it to exit.
func (w *FileWatcher) Stop() {
	close(w.stop)
	if w.started {
		<-w.done
	}
}

func (w *FileWatcher) run(fw *fsnotify.Watcher) {
	defer close(w.done)
	defer fw.Close()

	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				w.fail(errors.New("watchers: event channel closed"))
				return
			}
			if !ev.Has(fsnotify.Write) {
				continue
			}
			select {
			case w.tasks <- scheduler.Task{ID: w.id, UpdateTime: time.Now()}:
			case <-w.stop:
				return
			}
		case err, ok := <-fw.Errors:
			if !ok {
				w.fail(errors.New("watchers: error channel closed"))
				return
			}
			w.fail(fmt.Errorf("watchers: watch %s: %w", w.path, err))
			return
		}
	}
}

func (w *FileWatcher) fail(err error) {
	w.failing.Do(func() {
		w.log.Warn().Err(err).Msg("file watch lost")
		if w.onFail != nil {
			w.onFail(err)
		}
	})
}
