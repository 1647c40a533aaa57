package progression

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
	"strconv"
)

// Policy names.
const (
	PolicyTable   = "table"
	PolicyFormula = "formula"
)

// DefaultBandWidth is the number of doublings per tier for the formula policy.
const DefaultBandWidth = 5

// DefaultThresholds are the first tiles of the Neon and Galaxy themes.
var DefaultThresholds = []int{4096, 33554432}

// DefaultNames are the theme names by tier.
var DefaultNames = []string{"Classic", "Neon", "Galaxy"}

var errBadSettings = errors.New("progression: invalid settings")

func init() {
	Register(PolicyTable, func(s Settings) (Classifier, error) {
		return NewTable(s.Thresholds)
	})
	Register(PolicyFormula, func(s Settings) (Classifier, error) {
		return NewFormula(s.BandWidth)
	})
}

// Table assigns tiers from an explicit list of ascending thresholds: the
// tier is the number of thresholds that are <= the maximum tile.
type Table struct {
	thresholds []int
}

// NewTable validates thresholds and builds a table policy. An empty list
// selects DefaultThresholds.
func NewTable(thresholds []int) (*Table, error) {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}
	for i, t := range thresholds {
		if t <= 0 {
			return nil, fmt.Errorf("%w: threshold %d is not positive", errBadSettings, t)
		}
		if i > 0 && t <= thresholds[i-1] {
			return nil, fmt.Errorf("%w: thresholds must be strictly ascending", errBadSettings)
		}
	}
	return &Table{thresholds: append([]int(nil), thresholds...)}, nil
}

// Tier implements Classifier.
func (t *Table) Tier(maxTile int) int {
	return sort.Search(len(t.thresholds), func(i int) bool {
		return t.thresholds[i] > maxTile
	})
}

// Floor implements Classifier.
func (t *Table) Floor(tier int) int {
	switch {
	case tier <= 0:
		return 0
	case tier > len(t.thresholds):
		return -1
	}
	return t.thresholds[tier-1]
}

// Formula assigns tier floor(log2(maxTile) / band).
type Formula struct {
	band int
}

// NewFormula builds a formula policy. A non-positive band selects DefaultBandWidth.
func NewFormula(band int) (*Formula, error) {
	if band <= 0 {
		band = DefaultBandWidth
	}
	if band >= bits.UintSize-1 {
		return nil, fmt.Errorf("%w: band width %d too large", errBadSettings, band)
	}
	return &Formula{band: band}, nil
}

// Tier implements Classifier.
func (f *Formula) Tier(maxTile int) int {
	if maxTile < 2 {
		return 0
	}
	return (bits.Len(uint(maxTile)) - 1) / f.band
}

// Floor implements Classifier.
func (f *Formula) Floor(tier int) int {
	if tier <= 0 {
		return 0
	}
	shift := tier * f.band
	if shift >= bits.UintSize-1 {
		return -1
	}
	return 1 << shift
}

// Name returns the theme name for tier. Tiers past the end of names reuse
// the last name with a "+n" suffix.
func Name(tier int, names []string) string {
	if len(names) == 0 {
		names = DefaultNames
	}
	if tier < 0 {
		tier = 0
	}
	if tier < len(names) {
		return names[tier]
	}
	last := len(names) - 1
	return names[last] + "+" + strconv.Itoa(tier-last)
}
