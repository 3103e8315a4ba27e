package export

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileName returns the exported name of ref: the percentile with one
// decimal, zero-padded to five characters, then the original base name.
func FileName(percentile float64, ref string) string {
	return fmt.Sprintf("%05.1f_%s", percentile, filepath.Base(ref))
}

// DestinationName returns the folder name for an export of source taken at
// now: "<source base>-YYYYMMDD-<last four digits of unix seconds>".
func DestinationName(source string, now time.Time) string {
	secs := strconv.FormatInt(now.Unix(), 10)
	if len(secs) > 4 {
		secs = secs[len(secs)-4:]
	}
	base := filepath.Base(filepath.Clean(source))
	if base == "." || base == string(filepath.Separator) {
		base = "export"
	}
	return fmt.Sprintf("%s-%s-%s", base, now.Format("20060102"), secs)
}

// uniqueNames makes names distinct by adding "-2", "-3", ... before the
// extension of repeats, keeping the first occurrence unchanged.
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		candidate := name
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		for n := 2; seen[candidate]; n++ {
			candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
		}
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}
