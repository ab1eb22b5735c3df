package gencode

import (
	"path"
	"sort"
	"strconv"
)

// releaseFloor is the newest release excluded from discovery. Older releases
// do not follow a consistent directory layout.
const releaseFloor = 21

// ResolveReleases turns a species directory listing into release identifiers,
// newest first. Only entries ending in two digits above the floor are kept;
// mouse releases carry the "M" prefix. An empty result is valid.
func ResolveReleases(listing []string, speciesTag string) []string {
	var numbers []int
	for _, entry := range listing {
		entry = path.Base(entry)
		if len(entry) < 2 {
			continue
		}
		suffix := entry[len(entry)-2:]
		if !isDigit(suffix[0]) || !isDigit(suffix[1]) {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n <= releaseFloor {
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(numbers)))

	prefix := ""
	if sp, ok := SpeciesByTag(speciesTag); ok {
		prefix = sp.ReleasePrefix
	}
	releases := make([]string, 0, len(numbers))
	for _, n := range numbers {
		releases = append(releases, prefix+strconv.Itoa(n))
	}
	return releases
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func extractDigits(s string) string {
	digits := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			digits = append(digits, s[i])
		}
	}
	return string(digits)
}
