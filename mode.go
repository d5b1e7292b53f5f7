package fusion

import "fmt"

// Mode selects an evaluation profile: how dimension scores are weighted and
// how high the composite must reach before a step's output is accepted.
type Mode string

// The supported execution modes.
const (
	// ModeSimulate explores ideas; innovation weighs heaviest and the
	// acceptance bar is lowest.
	ModeSimulate Mode = "simulate"

	// ModeShip prepares output for delivery; feasibility and clarity
	// dominate and the bar is highest.
	ModeShip Mode = "ship"

	// ModeCritique reviews existing work; clarity and structure dominate.
	ModeCritique Mode = "critique"
)

// DefaultMode is used when a chain or command names no mode.
const DefaultMode = ModeSimulate

var modeWeights = map[Mode]Weights{
	ModeSimulate: {
		DimClarity:       0.15,
		DimStructure:     0.10,
		DimRelevance:     0.15,
		DimFeasibility:   0.10,
		DimInnovation:    0.30,
		DimEffectiveness: 0.20,
	},
	ModeShip: {
		DimClarity:       0.20,
		DimStructure:     0.20,
		DimRelevance:     0.15,
		DimFeasibility:   0.25,
		DimInnovation:    0.05,
		DimEffectiveness: 0.15,
	},
	ModeCritique: {
		DimClarity:       0.25,
		DimStructure:     0.25,
		DimRelevance:     0.20,
		DimFeasibility:   0.10,
		DimInnovation:    0.05,
		DimEffectiveness: 0.15,
	},
}

var modeThresholds = map[Mode]float64{
	ModeSimulate: 0.60,
	ModeShip:     0.75,
	ModeCritique: 0.70,
}

// Modes returns the supported modes in a fixed order.
func Modes() []Mode {
	return []Mode{ModeSimulate, ModeShip, ModeCritique}
}

// ParseMode resolves a mode name. An empty name yields DefaultMode;
// anything unrecognized fails with ErrUnknownMode.
func ParseMode(name string) (Mode, error) {
	if name == "" {
		return DefaultMode, nil
	}
	m := Mode(name)
	if _, ok := modeWeights[m]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownMode, name)
	}
	return m, nil
}

// WeightsFor returns a copy of the mode's dimension weights. Unknown modes
// fall back to DefaultMode.
func WeightsFor(mode Mode) Weights {
	src, ok := modeWeights[mode]
	if !ok {
		src = modeWeights[DefaultMode]
	}
	w := make(Weights, len(src))
	for d, v := range src {
		w[d] = v
	}
	return w
}

// ThresholdFor returns the mode's acceptance threshold. Unknown modes fall
// back to DefaultMode.
func ThresholdFor(mode Mode) float64 {
	if t, ok := modeThresholds[mode]; ok {
		return t
	}
	return modeThresholds[DefaultMode]
}
