package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global holds display-wide settings shared by every block.
type Global struct {
	Theme        map[string]string
	PollFallback time.Duration
}

// Manager wraps the viper instance behind the beambar config file.
type Manager struct {
	v *viper.Viper
}

// Load reads the config file at path, or the default
// <user-config-dir>/beambar/beambar.yaml when path is empty.
func Load(path string) (*Manager, error) {
	v := viper.New()

	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("config: locate config dir: %w", err)
		}
		path = filepath.Join(configDir, "beambar", "beambar.yaml")
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("poll_fallback", "5s")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return &Manager{v: v}, nil
}

func (m *Manager) Global() (*Global, error) {
	g := &Global{
		Theme:        m.v.GetStringMapString("theme"),
		PollFallback: m.v.GetDuration("poll_fallback"),
	}
	if g.PollFallback <= 0 {
		return nil, fmt.Errorf("config: poll_fallback must be positive, got %q", m.v.GetString("poll_fallback"))
	}
	return g, nil
}

// Blocks returns the configured block entries in file order.
func (m *Manager) Blocks() ([]BlockConfig, error) {
	raw := m.v.Get("blocks")
	if raw == nil {
		return nil, errors.New("config: no blocks configured")
	}

	// Round-trip through yaml so each entry keeps its node for strict
	// per-block decoding.
	buf, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("config: blocks: %w", err)
	}
	var list []BlockConfig
	if err := yaml.Unmarshal(buf, &list); err != nil {
		return nil, fmt.Errorf("config: blocks: %w", err)
	}
	return list, nil
}

// Watch invokes onChange whenever the config file is rewritten.
func (m *Manager) Watch(onChange func()) {
	m.v.OnConfigChange(func(e fsnotify.Event) {
		onChange()
	})
	m.v.WatchConfig()
}

// BlockConfig is one entry of the blocks list: a kind selector plus the
// entry's raw node, decoded strictly by the block's own constructor.
type BlockConfig struct {
	Kind string
	node yaml.Node
}

func (c *BlockConfig) UnmarshalYAML(value *yaml.Node) error {
	var probe struct {
		Kind string `yaml:"block"`
	}
	if err := value.Decode(&probe); err != nil {
		return err
	}
	if probe.Kind == "" {
		return errors.New("block entry is missing the \"block\" field")
	}
	c.Kind = probe.Kind
	c.node = *value
	return nil
}

// Decode unmarshals the entry into out, rejecting fields out does not
// declare.
func (c *BlockConfig) Decode(out any) error {
	buf, err := yaml.Marshal(&c.node)
	if err != nil {
		return fmt.Errorf("config: %s block: %w", c.Kind, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("config: %s block: %w", c.Kind, err)
	}
	return nil
}
