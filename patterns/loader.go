package patterns

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadDir parses every pattern definition in a directory: *.pattern.md
// files, plus PATTERN.md inside immediate subdirectories. Entries load in
// filename order so registration order is deterministic. A missing
// directory yields no definitions. Pattern files are configuration, so a
// file that fails to parse is an error, not a skip.
func LoadDir(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var defs []*Definition
	for _, entry := range entries {
		if entry.IsDir() {
			path := filepath.Join(dir, entry.Name(), "PATTERN.md")
			if _, err := os.Stat(path); err != nil {
				continue
			}
			def, err := ParseFile(path)
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
			continue
		}

		name := strings.ToLower(entry.Name())
		if name != "pattern.md" && !strings.HasSuffix(name, ".pattern.md") {
			continue
		}
		def, err := ParseFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	return defs, nil
}
