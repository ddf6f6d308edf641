// Package palette assigns stable display colors to packet ids.
package palette

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	saturation = 70
	lightness  = 50
)

var hslPattern = regexp.MustCompile(`^hsl\(\s*(\d+(?:\.\d+)?)\s*,\s*(\d+(?:\.\d+)?)%\s*,\s*(\d+(?:\.\d+)?)%\s*\)$`)

// ColorMap spreads the distinct ids evenly around the hue wheel in
// lexicographic order, so the same id set always yields the same colors
// regardless of input order.
func ColorMap(ids []string) map[string]string {
	unique := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	sorted := make([]string, 0, len(unique))
	for id := range unique {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	out := make(map[string]string, len(sorted))
	n := len(sorted)
	for i, id := range sorted {
		hue := int(math.Round(float64(i*360) / float64(n)))
		out[id] = fmt.Sprintf("hsl(%d, %d%%, %d%%)", hue, saturation, lightness)
	}
	return out
}

// Hex converts an "hsl(h, s%, l%)" string produced by ColorMap to #rrggbb.
func Hex(color string) (string, error) {
	m := hslPattern.FindStringSubmatch(color)
	if m == nil {
		return "", fmt.Errorf("not an hsl color: %q", color)
	}
	h, _ := strconv.ParseFloat(m[1], 64)
	s, _ := strconv.ParseFloat(m[2], 64)
	l, _ := strconv.ParseFloat(m[3], 64)
	return colorful.Hsl(math.Mod(h, 360), s/100, l/100).Clamped().Hex(), nil
}
