package backlight

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultDir is where the kernel exposes backlight devices.
const DefaultDir = "/sys/class/backlight"

// Device is one entry under the backlight class directory.
type Device struct {
	MaxBrightness uint64
	Path          string
}

// ReadBrightness reads a sysfs brightness attribute: a decimal number
// followed by a trailing newline. Trailing whitespace is trimmed so files
// without the newline still parse.
func ReadBrightness(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("backlight: open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("backlight: read %s: %w", path, err)
	}

	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("backlight: parse %s: %w", path, err)
	}
	return v, nil
}

// DefaultDevice picks the first device directory under dir. os.ReadDir
// returns entries sorted by name, so "first" is lexicographic.
func DefaultDevice(dir string) (*Device, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("backlight: read device directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		return newDevice(filepath.Join(dir, entry.Name()))
	}
	return nil, fmt.Errorf("backlight: no backlight devices found in %s", dir)
}

// NamedDevice uses the device named name under dir. Existence of the
// directory is the only validation beyond reading max_brightness.
func NamedDevice(dir, name string) (*Device, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("backlight: device %q does not exist: %w", name, err)
	}
	return newDevice(path)
}

func newDevice(path string) (*Device, error) {
	max, err := ReadBrightness(filepath.Join(path, "max_brightness"))
	if err != nil {
		return nil, err
	}
	if max == 0 {
		return nil, fmt.Errorf("backlight: device %s reports max_brightness of zero", path)
	}
	return &Device{MaxBrightness: max, Path: path}, nil
}

// Brightness reads the current brightness value for the device.
func (d *Device) Brightness() (uint64, error) {
	return ReadBrightness(d.BrightnessFile())
}

// BrightnessFile is the attribute the kernel updates on brightness changes.
func (d *Device) BrightnessFile() string {
	return filepath.Join(d.Path, "brightness")
}

// Percent maps a brightness value onto its scale as a rounded integer
// percentage, clamped to [0,100].
func Percent(brightness, max uint64) int {
	if max == 0 {
		return 0
	}
	p := int(math.Round(float64(brightness) / float64(max) * 100))
	if p < 0 {
		p = 0
	} else if p > 100 {
		p = 100
	}
	return p
}
