package shader

import "fmt"

// Preset is a compile-time quality tier of the effect library.
type Preset uint8

const (
	PresetLow Preset = iota
	PresetMedium
	PresetHigh
	PresetUltra
)

// Params are the per-preset constants compiled into the passes.
type Params struct {
	// Threshold is the minimum color delta reported as an edge.
	Threshold float64

	// MaxSearchSteps bounds each line search, two pixels per step.
	MaxSearchSteps int
}

var presetParams = [...]Params{
	PresetLow:    {Threshold: 0.15, MaxSearchSteps: 4},
	PresetMedium: {Threshold: 0.1, MaxSearchSteps: 8},
	PresetHigh:   {Threshold: 0.1, MaxSearchSteps: 16},
	PresetUltra:  {Threshold: 0.05, MaxSearchSteps: 32},
}

// Valid reports whether p is one of the four known presets.
func (p Preset) Valid() bool {
	return int(p) < len(presetParams)
}

// Params returns the constants of the preset.
func (p Preset) Params() (Params, error) {
	if !p.Valid() {
		return Params{}, fmt.Errorf("%w: %d", ErrUnknownPreset, p)
	}
	return presetParams[p], nil
}

// String returns the upper-case preset name used in the preset flag.
func (p Preset) String() string {
	switch p {
	case PresetLow:
		return "LOW"
	case PresetMedium:
		return "MEDIUM"
	case PresetHigh:
		return "HIGH"
	case PresetUltra:
		return "ULTRA"
	default:
		return fmt.Sprintf("Preset(%d)", p)
	}
}

// Flag returns the preprocessor flag selecting the preset, for example
// SMAA_PRESET_ULTRA.
func (p Preset) Flag() string {
	return "SMAA_PRESET_" + p.String()
}
