package df

import (
	"fmt"
	"strings"
)

func has[C comparable](needle C, haystack []C) bool {
	return position(needle, haystack) >= 0
}

func position[C comparable](needle C, haystack []C) int {
	for ind, straw := range haystack {
		if needle == straw {
			return ind
		}
	}

	return -1
}

func validName(name string) error {
	const illegal = "!@#$%^&*()=+-;:'`/.,>< ~" + `"`

	if name == "" {
		return fmt.Errorf("column name cannot be empty")
	}

	if strings.ContainsAny(name, illegal) {
		return fmt.Errorf("invalid column name: %s", name)
	}

	return nil
}

// duplicates returns the names that appear more than once in names
func duplicates(names []string) []string {
	var (
		seen = make(map[string]bool)
		dups []string
	)

	for _, nm := range names {
		if seen[nm] && !has(nm, dups) {
			dups = append(dups, nm)
		}
		seen[nm] = true
	}

	return dups
}
