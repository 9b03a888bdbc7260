package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"zxd/rules"
)

// DiscoverRuleFiles walks root and returns every file matching one of the
// configured rule path globs, sorted.
func DiscoverRuleFiles(root string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range patterns {
			match, err := doublestar.Match(pattern, rel)
			if err != nil {
				return fmt.Errorf("bad rule path pattern %q: %w", pattern, err)
			}
			if match {
				seen[path] = true
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// LoadRuleFile reads and decodes one custom rule file.
func LoadRuleFile(path string) (*rules.CustomRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file: %w", err)
	}
	r, err := rules.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// LoadRules discovers and decodes every custom rule under root. Files that
// fail to decode are reported together after the loadable ones.
func LoadRules(root string, patterns []string) ([]*rules.CustomRule, error) {
	files, err := DiscoverRuleFiles(root, patterns)
	if err != nil {
		return nil, err
	}
	var out []*rules.CustomRule
	var firstErr error
	for _, f := range files {
		r, err := LoadRuleFile(f)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, r)
	}
	return out, firstErr
}
