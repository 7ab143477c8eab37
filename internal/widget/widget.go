package widget

import (
	"strings"

	"github.com/arvhem/beambar/internal/protocol"
)

// Icon tokens understood by the built-in theme.
const (
	IconBacklightEmpty       = "backlight-empty"
	IconBacklightPartialLow  = "backlight-partial-low"
	IconBacklightPartialMid  = "backlight-partial-mid"
	IconBacklightPartialHigh = "backlight-partial-high"
	IconBacklightFull        = "backlight-full"
)

var defaultIcons = map[string]string{
	IconBacklightEmpty:       "\U000F00DB",
	IconBacklightPartialLow:  "\U000F00DC",
	IconBacklightPartialMid:  "\U000F00DD",
	IconBacklightPartialHigh: "\U000F00DE",
	IconBacklightFull:        "\U000F00E0",
}

// Theme resolves icon tokens to glyphs. Overrides from the config file win
// over the built-in table.
type Theme struct {
	icons map[string]string
}

func NewTheme(overrides map[string]string) *Theme {
	icons := make(map[string]string, len(defaultIcons)+len(overrides))
	for k, v := range defaultIcons {
		icons[k] = v
	}
	for k, v := range overrides {
		icons[k] = v
	}
	return &Theme{icons: icons}
}

// Icon returns the glyph for a token, or "" for unknown tokens.
func (t *Theme) Icon(name string) string {
	return t.icons[name]
}

// Widget is a renderable piece of a block's output.
type Widget interface {
	Block() protocol.Block
}

// TextWidget holds one line of text plus an optional icon. It is only ever
// mutated from the scheduler loop, so it carries no locking.
type TextWidget struct {
	theme    *Theme
	name     string
	instance string
	icon     string
	text     string
}

func NewText(theme *Theme, name, instance string) *TextWidget {
	return &TextWidget{theme: theme, name: name, instance: instance}
}

func (w *TextWidget) SetText(text string) {
	w.text = text
}

// SetIcon selects the widget's icon by theme token.
func (w *TextWidget) SetIcon(name string) {
	w.icon = name
}

func (w *TextWidget) Text() string { return w.text }
func (w *TextWidget) Icon() string { return w.icon }

func (w *TextWidget) Block() protocol.Block {
	var b strings.Builder
	if glyph := w.theme.Icon(w.icon); glyph != "" {
		b.WriteString(glyph)
		b.WriteString(" ")
	}
	b.WriteString(w.text)
	return protocol.Block{
		Name:     w.name,
		Instance: w.instance,
		FullText: b.String(),
	}
}
