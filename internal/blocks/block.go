package blocks

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arvhem/beambar/internal/config"
	"github.com/arvhem/beambar/internal/scheduler"
	"github.com/arvhem/beambar/internal/widget"
)

type constructor func(cfg config.BlockConfig, global *config.Global, theme *widget.Theme, tasks chan<- scheduler.Task, log zerolog.Logger) (scheduler.Block, error)

var registry = map[string]constructor{
	"backlight": newBacklight,
}

// New builds the block described by cfg.
func New(cfg config.BlockConfig, global *config.Global, theme *widget.Theme, tasks chan<- scheduler.Task, log zerolog.Logger) (scheduler.Block, error) {
	ctor, ok := registry[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("blocks: unknown block kind %q", cfg.Kind)
	}
	return ctor(cfg, global, theme, tasks, log)
}
