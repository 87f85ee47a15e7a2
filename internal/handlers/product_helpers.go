package handlers

import (
	"fmt"
	"strings"

	"backend/internal/models"
)

// slugify lowercases a name and collapses everything outside [a-z0-9] into
// single hyphens.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func validatePriceOptions(options []models.PriceOption) error {
	if len(options) == 0 {
		return fmt.Errorf("at least one price option is required")
	}
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		label := strings.ToLower(strings.TrimSpace(opt.Label))
		if label == "" {
			return fmt.Errorf("price option label is required")
		}
		if opt.Price <= 0 {
			return fmt.Errorf("price option %q must have a price greater than 0", opt.Label)
		}
		if seen[label] {
			return fmt.Errorf("duplicate price option %q", opt.Label)
		}
		seen[label] = true
	}
	return nil
}

func normalizeCategories(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		name := strings.TrimSpace(v)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, name)
	}
	return out
}
