// Package patterns loads prompt-pattern definition files: YAML frontmatter
// describing the pattern, followed by a markdown template body.
package patterns

// Definition is one parsed pattern file.
type Definition struct {
	// Name is the unique pattern identifier.
	Name string `yaml:"name"`

	// Description briefly describes what the pattern does.
	Description string `yaml:"description"`

	// Fallback is the pattern id tried when this one underperforms.
	Fallback string `yaml:"fallback,omitempty"`

	// Indicators are substrings whose presence in output marks the pattern
	// as having taken effect.
	Indicators []string `yaml:"indicators,omitempty"`

	// Tension tags the creative tensions this pattern works well under.
	Tension []string `yaml:"tension,omitempty"`

	// Template is the markdown body. Slots use {{name}} syntax.
	Template string `yaml:"-"`

	// path is the source file (internal).
	path string
}

// Path returns the file the definition was parsed from.
func (d *Definition) Path() string {
	return d.path
}

// Suggestion pairs a definition with its relevance to a brief.
type Suggestion struct {
	// Definition is the suggested pattern.
	Definition *Definition

	// Score is the relevance score (0.0-1.0).
	Score float64

	// Reason explains why the pattern was suggested.
	Reason string
}
