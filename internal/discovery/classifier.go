package discovery

import (
	"os"
	"path/filepath"
)

// Rule pairs a marker predicate with the verdict it produces
type Rule struct {
	Framework Framework
	Match     func(dir string) bool
}

// DefaultRules is the classification precedence. The first matching rule
// wins, so a directory carrying both WordPress and Laravel markers is
// always WordPress.
var DefaultRules = []Rule{
	{Framework: FrameworkWordPress, Match: isWordPress},
	{Framework: FrameworkLaravel, Match: isLaravel},
	{Framework: FrameworkPython, Match: isPython},
}

// Classifier assigns a framework verdict to a project directory
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier evaluating rules in order. With no
// rules, DefaultRules is used.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify returns the verdict of the first matching rule, or
// FrameworkUnknown. It only performs existence checks and never fails.
func (c *Classifier) Classify(dir string) Framework {
	for _, rule := range c.rules {
		if rule.Match(dir) {
			return rule.Framework
		}
	}
	return FrameworkUnknown
}

func isWordPress(dir string) bool {
	return exists(filepath.Join(dir, "wp-admin")) ||
		exists(filepath.Join(dir, "wp-config.php")) ||
		exists(filepath.Join(dir, "wp-content"))
}

func isLaravel(dir string) bool {
	if exists(filepath.Join(dir, "artisan")) {
		return true
	}
	if !isDir(filepath.Join(dir, "app")) {
		return false
	}
	return exists(filepath.Join(dir, "public", "index.php")) ||
		exists(filepath.Join(dir, "composer.json"))
}

func isPython(dir string) bool {
	return exists(filepath.Join(dir, "app.py")) &&
		isDir(filepath.Join(dir, "static")) &&
		exists(filepath.Join(dir, ".env"))
}

// exists treats any stat failure, including permission errors, as absence
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
