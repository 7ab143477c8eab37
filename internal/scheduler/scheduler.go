package scheduler

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/arvhem/beambar/internal/protocol"
	"github.com/arvhem/beambar/internal/widget"
)

// Task asks the scheduler to refresh the block that raised it. Watchers are
// the producers; the scheduler loop is the only consumer.
type Task struct {
	ID         string
	UpdateTime time.Time
}

// Block is the contract every bar block implements.
type Block interface {
	// ID is the process-unique identity used to route tasks back to the
	// block.
	ID() string
	// Update recomputes the block's widgets. A positive duration asks for
	// a re-poll after that delay; zero means the block refreshes only on
	// tasks.
	Update() (time.Duration, error)
	// View returns the block's widgets for rendering.
	View() []widget.Widget
	Click(ev protocol.ClickEvent) error
	// Close releases background work owned by the block.
	Close() error
}

// Scheduler owns the task queue and drives block updates and rendering.
type Scheduler struct {
	blocks []Block
	byID   map[string]Block
	tasks  chan Task
	clicks <-chan protocol.ClickEvent
	out    io.Writer
	next   map[string]time.Time
	log    zerolog.Logger
}

func New(out io.Writer, clicks <-chan protocol.ClickEvent, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		byID:   make(map[string]Block),
		tasks:  make(chan Task, 64),
		clicks: clicks,
		out:    out,
		next:   make(map[string]time.Time),
		log:    log,
	}
}

// Tasks is the shared update-request channel handed to block constructors.
func (s *Scheduler) Tasks() chan<- Task {
	return s.tasks
}

func (s *Scheduler) Register(b Block) {
	s.blocks = append(s.blocks, b)
	s.byID[b.ID()] = b
}

// Run updates every block once, renders, then serves tasks, clicks and
// scheduled re-polls until stop is closed. Blocks are closed on the way out.
func (s *Scheduler) Run(stop <-chan struct{}) {
	defer s.closeAll()

	for _, b := range s.blocks {
		s.updateBlock(b)
	}
	s.render()

	for {
		var timer *time.Timer
		var due <-chan time.Time
		if at, ok := s.earliest(); ok {
			timer = time.NewTimer(time.Until(at))
			due = timer.C
		}

		select {
		case <-stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case task := <-s.tasks:
			b, ok := s.byID[task.ID]
			if !ok {
				s.log.Debug().Str("block", task.ID).Msg("task for unknown block")
				break
			}
			s.updateBlock(b)
			s.render()
		case ev := <-s.clicks:
			s.click(ev)
		case <-due:
			now := time.Now()
			for id, at := range s.next {
				if at.After(now) {
					continue
				}
				delete(s.next, id)
				s.updateBlock(s.byID[id])
			}
			s.render()
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

func (s *Scheduler) click(ev protocol.ClickEvent) {
	b, ok := s.byID[ev.Instance]
	if !ok {
		return
	}
	if err := b.Click(ev); err != nil {
		s.log.Error().Err(err).Str("block", b.ID()).Msg("click handler failed")
		return
	}
	s.updateBlock(b)
	s.render()
}

// updateBlock runs one update. On failure the widgets keep whatever they
// showed before, and any scheduled re-poll stays in place.
func (s *Scheduler) updateBlock(b Block) {
	delay, err := b.Update()
	if err != nil {
		s.log.Error().Err(err).Str("block", b.ID()).Msg("update failed")
		return
	}
	if delay > 0 {
		s.next[b.ID()] = time.Now().Add(delay)
	} else {
		delete(s.next, b.ID())
	}
}

func (s *Scheduler) earliest() (time.Time, bool) {
	var at time.Time
	for _, t := range s.next {
		if at.IsZero() || t.Before(at) {
			at = t
		}
	}
	return at, !at.IsZero()
}

func (s *Scheduler) render() {
	var line []protocol.Block
	for _, b := range s.blocks {
		for _, w := range b.View() {
			line = append(line, w.Block())
		}
	}
	if err := protocol.WriteStatusLine(s.out, line); err != nil {
		s.log.Error().Err(err).Msg("write status line")
	}
}

func (s *Scheduler) closeAll() {
	for _, b := range s.blocks {
		if err := b.Close(); err != nil {
			s.log.Warn().Err(err).Str("block", b.ID()).Msg("close failed")
		}
	}
}
