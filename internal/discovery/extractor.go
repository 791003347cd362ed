package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoDatabase is returned when a project declares no database name
var ErrNoDatabase = errors.New("database name not found")

var wpDatabasePattern = regexp.MustCompile(`define\s*\(\s*['"]DB_NAME['"]\s*,\s*(?:'([^']*)'|"([^"]*)")`)

// configSource describes where a framework keeps its database name
type configSource struct {
	file  string
	match func(content string) (string, bool)
}

// Extractor reads the configured database name out of a project's config file
type Extractor struct {
	sources map[Framework]configSource
}

// NewExtractor creates an extractor for every known framework
func NewExtractor() *Extractor {
	return &Extractor{
		sources: map[Framework]configSource{
			FrameworkWordPress: {file: "wp-config.php", match: matchWordPress},
			FrameworkLaravel:   {file: ".env", match: envMatcher("DB_DATABASE")},
			FrameworkPython:    {file: ".env", match: envMatcher("DB_NAME", "DB_DATABASE")},
		},
	}
}

// DatabaseName returns the database configured for the project at dir.
// A missing config file or a missing declaration yields ErrNoDatabase.
// Only the first declaration in the file is considered.
func (e *Extractor) DatabaseName(dir string, framework Framework) (string, error) {
	source, ok := e.sources[framework]
	if !ok {
		return "", ErrNoDatabase
	}

	path := filepath.Join(dir, source.file)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoDatabase
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	name, ok := source.match(string(content))
	if !ok {
		return "", ErrNoDatabase
	}
	return name, nil
}

func matchWordPress(content string) (string, bool) {
	m := wpDatabasePattern.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	name := m[1]
	if name == "" {
		name = m[2]
	}
	return name, name != ""
}

// envMatcher matches KEY=value lines, trying keys in order
func envMatcher(keys ...string) func(string) (string, bool) {
	patterns := make([]*regexp.Regexp, len(keys))
	for i, key := range keys {
		patterns[i] = regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(key) + `[ \t]*=(.*)$`)
	}

	return func(content string) (string, bool) {
		for _, p := range patterns {
			m := p.FindStringSubmatch(content)
			if m == nil {
				continue
			}
			if value := unquote(strings.TrimSpace(m[1])); value != "" {
				return value, true
			}
			return "", false
		}
		return "", false
	}
}

func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == '"' || first == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
