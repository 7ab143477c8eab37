package blocks

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arvhem/beambar/internal/config"
	"github.com/arvhem/beambar/internal/protocol"
	"github.com/arvhem/beambar/internal/scheduler"
	"github.com/arvhem/beambar/internal/watchers"
	"github.com/arvhem/beambar/internal/widget"
	"github.com/arvhem/beambar/pkg/backlight"
)

// Swapped out by tests.
var backlightDir = backlight.DefaultDir

type backlightConfig struct {
	Block string `yaml:"block"`
	// Device in /sys/class/backlight to read brightness from. Empty means
	// the first device found.
	Device string `yaml:"device"`
}

// Backlight shows the current display brightness as a percentage with a
// tiered icon. It refreshes reactively, via a file watch on the device's
// brightness attribute, rather than by polling.
type Backlight struct {
	id        string
	device    *backlight.Device
	output    *widget.TextWidget
	watcher   *watchers.FileWatcher
	polling   atomic.Bool
	pollEvery time.Duration
	log       zerolog.Logger
}

func newBacklight(cfg config.BlockConfig, global *config.Global, theme *widget.Theme, tasks chan<- scheduler.Task, log zerolog.Logger) (scheduler.Block, error) {
	var bc backlightConfig
	if err := cfg.Decode(&bc); err != nil {
		return nil, err
	}

	var dev *backlight.Device
	var err error
	if bc.Device != "" {
		dev, err = backlight.NamedDevice(backlightDir, bc.Device)
	} else {
		dev, err = backlight.DefaultDevice(backlightDir)
	}
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	b := &Backlight{
		id:        id,
		device:    dev,
		output:    widget.NewText(theme, "backlight", id),
		pollEvery: global.PollFallback,
		log:       log.With().Str("block", "backlight").Logger(),
	}

	w := watchers.NewFileWatcher(dev.BrightnessFile(), id, tasks, b.log)
	w.OnFailure(func(err error) {
		b.polling.Store(true)
		// Queue one refresh so the fallback interval takes effect now.
		select {
		case tasks <- scheduler.Task{ID: id, UpdateTime: time.Now()}:
		default:
		}
	})
	if err := w.Start(); err != nil {
		b.log.Warn().Err(err).Msg("reactive refresh unavailable, falling back to polling")
		b.polling.Store(true)
	} else {
		b.watcher = w
	}
	return b, nil
}

func (b *Backlight) ID() string { return b.id }

func (b *Backlight) Update() (time.Duration, error) {
	brightness, err := b.device.Brightness()
	if err != nil {
		return 0, err
	}

	pct := backlight.Percent(brightness, b.device.MaxBrightness)
	b.output.SetText(fmt.Sprintf("%d%%", pct))
	b.output.SetIcon(iconForPercent(pct))

	if b.polling.Load() {
		return b.pollEvery, nil
	}
	return 0, nil
}

func (b *Backlight) View() []widget.Widget {
	return []widget.Widget{b.output}
}

func (b *Backlight) Click(protocol.ClickEvent) error {
	return nil
}

func (b *Backlight) Close() error {
	if b.watcher != nil {
		b.watcher.Stop()
	}
	return nil
}

// iconForPercent selects an icon tier by inclusive percentage bands:
// [0,19] empty, [20,39] low, [40,59] mid, [60,79] high, [80,100] full.
func iconForPercent(pct int) string {
	switch {
	case pct < 20:
		return widget.IconBacklightEmpty
	case pct < 40:
		return widget.IconBacklightPartialLow
	case pct < 60:
		return widget.IconBacklightPartialMid
	case pct < 80:
		return widget.IconBacklightPartialHigh
	default:
		return widget.IconBacklightFull
	}
}
