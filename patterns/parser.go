package patterns

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFile parses a pattern definition file.
// The file format is:
//
//	---
//	name: RiskLens
//	description: Analyze content through a risk assessment lens.
//	fallback: PatternCritiqueThenRewrite
//	indicators: [risk, mitigation]
//	---
//	Assess the following through a risk lens...
//
//	{{input}}
func ParseFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return Parse(data, path)
}

// Parse parses pattern content from bytes.
func Parse(data []byte, path string) (*Definition, error) {
	frontmatter, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	def := &Definition{
		path: path,
	}

	if len(frontmatter) > 0 {
		if err := yaml.Unmarshal(frontmatter, def); err != nil {
			return nil, fmt.Errorf("parse frontmatter: %w", err)
		}
	}

	def.Template = strings.TrimSpace(string(body))

	if def.Name == "" {
		def.Name = deriveNameFromPath(path)
	}
	if def.Template == "" {
		return nil, fmt.Errorf("pattern %s: empty template body", def.Name)
	}

	return def, nil
}

// splitFrontmatter splits content into frontmatter and body.
func splitFrontmatter(data []byte) (frontmatter, body []byte, err error) {
	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		// No frontmatter, entire content is body
		return nil, data, nil
	}

	rest := data[4:] // Skip opening "---\n"
	idx := bytes.Index(rest, []byte("\n---\n"))
	if idx == -1 {
		idx = bytes.Index(rest, []byte("\n---\r\n"))
	}
	if idx == -1 {
		idx = bytes.Index(rest, []byte("\r\n---\r\n"))
	}

	if idx == -1 {
		// No closing delimiter, treat as no frontmatter
		return nil, data, nil
	}

	frontmatter = rest[:idx]
	body = rest[idx+5:] // Skip "\n---\n"

	return frontmatter, body, nil
}

// deriveNameFromPath extracts a pattern name from a file path. Pattern ids
// are case-sensitive, so the filename's case is preserved; a bare PATTERN.md
// takes its directory's name.
func deriveNameFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if strings.HasSuffix(strings.ToLower(name), ".pattern") {
		name = name[:len(name)-len(".pattern")]
	}

	if name == "" || strings.EqualFold(name, "pattern") {
		if dir := filepath.Base(filepath.Dir(path)); dir != "." && dir != string(filepath.Separator) {
			return dir
		}
	}

	return name
}
