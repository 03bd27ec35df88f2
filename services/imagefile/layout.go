package imagefile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bootcode-go/types"
)

// Layouts are the built-in address contracts by name.
var Layouts = map[string]types.Layout{
	types.STM32F0.Name: types.STM32F0,
	types.RP2040.Name:  types.RP2040,
}

// LayoutByName returns a built-in layout.
func LayoutByName(name string) (types.Layout, error) {
	l, ok := Layouts[name]
	if !ok {
		return types.Layout{}, fmt.Errorf("unknown layout %q", name)
	}
	return l, nil
}

// LoadLayout reads a layout from YAML. A "base" key names a built-in
// layout whose values the file overrides.
func LoadLayout(path string) (types.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Layout{}, fmt.Errorf("reading layout: %w", err)
	}
	return ParseLayout(data)
}

func ParseLayout(data []byte) (types.Layout, error) {
	var head struct {
		Base string `yaml:"base"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return types.Layout{}, fmt.Errorf("parsing layout: %w", err)
	}
	var l types.Layout
	if head.Base != "" {
		var err error
		if l, err = LayoutByName(head.Base); err != nil {
			return types.Layout{}, err
		}
	}
	if err := yaml.Unmarshal(data, &l); err != nil {
		return types.Layout{}, fmt.Errorf("parsing layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return types.Layout{}, err
	}
	return l, nil
}

// StampSpec is what imgtool writes into a header.
type StampSpec struct {
	Version   uint32 `yaml:"version"`
	ID        string `yaml:"id"`
	IgnoreCRC bool   `yaml:"ignore_crc"`
	// Dev must accompany IgnoreCRC. It is never read from files.
	Dev bool `yaml:"-"`
}

// Validate rejects specs that cannot be represented or that set the
// CRC override outside a development build.
func (s StampSpec) Validate() error {
	if len(s.ID) > types.IDStringLen-1 {
		return fmt.Errorf("id %q longer than %d bytes", s.ID, types.IDStringLen-1)
	}
	if s.IgnoreCRC && !s.Dev {
		return fmt.Errorf("ignore_crc is only allowed for development images")
	}
	return nil
}

// LoadStampSpec reads a stamp spec from YAML.
func LoadStampSpec(path string) (StampSpec, error) {
	var s StampSpec
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading stamp spec: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing stamp spec: %w", err)
	}
	return s, nil
}
