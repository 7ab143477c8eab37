package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arvhem/beambar/internal/blocks"
	"github.com/arvhem/beambar/internal/config"
	"github.com/arvhem/beambar/internal/protocol"
	"github.com/arvhem/beambar/internal/scheduler"
	"github.com/arvhem/beambar/internal/widget"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the bar in the foreground",
	Long:  "Emits the i3bar protocol on stdout and reads click events from stdin. Logs go to stderr.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runStart()
	},
}

func runStart() error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	m, err := config.Load(configPath)
	if err != nil {
		return err
	}

	stop := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		close(stop)
	}()

	// Viper re-reads the file itself; we only get poked to rebuild.
	reloads := make(chan struct{}, 1)
	m.Watch(func() {
		select {
		case reloads <- struct{}{}:
		default:
		}
	})

	clicks := make(chan protocol.ClickEvent, 8)
	go protocol.ReadClickEvents(os.Stdin, clicks, stop)

	if err := protocol.WriteHeader(os.Stdout); err != nil {
		return err
	}

	for first := true; ; first = false {
		sched, err := buildBar(m, clicks, log)
		if err != nil {
			if first {
				return err
			}
			log.Error().Err(err).Msg("config reload failed, waiting for next change")
			select {
			case <-stop:
				return nil
			case <-reloads:
				continue
			}
		}

		runStop := make(chan struct{})
		go func() {
			defer close(runStop)
			select {
			case <-stop:
			case <-reloads:
				log.Info().Msg("config changed, rebuilding blocks")
			}
		}()
		sched.Run(runStop)

		select {
		case <-stop:
			return nil
		default:
		}
	}
}

// buildBar assembles a scheduler from the current config. A block whose
// construction fails is logged and left out of the bar; the rest keep
// running.
func buildBar(m *config.Manager, clicks <-chan protocol.ClickEvent, log zerolog.Logger) (*scheduler.Scheduler, error) {
	global, err := m.Global()
	if err != nil {
		return nil, err
	}
	entries, err := m.Blocks()
	if err != nil {
		return nil, err
	}

	theme := widget.NewTheme(global.Theme)
	sched := scheduler.New(os.Stdout, clicks, log)
	for _, entry := range entries {
		b, err := blocks.New(entry, global, theme, sched.Tasks(), log)
		if err != nil {
			log.Error().Err(err).Str("kind", entry.Kind).Msg("block construction failed, leaving it out")
			continue
		}
		sched.Register(b)
	}
	return sched, nil
}
