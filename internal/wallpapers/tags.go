package wallpapers

import (
	"fmt"
	"strings"
)

// ParseTags splits a comma-separated list, trimming entries and dropping
// empty ones. The result is never nil.
func ParseTags(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// ParseTypes parses a comma-separated set of mobile/desktop values. Blank
// input yields the desktop default; duplicates collapse.
func ParseTypes(raw string) ([]string, error) {
	values := ParseTags(raw)
	if len(values) == 0 {
		return []string{TypeDesktop}, nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(v)
		if v != TypeMobile && v != TypeDesktop {
			return nil, fmt.Errorf("%w: unknown wallpaper type %q", ErrInvalidInput, v)
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}
