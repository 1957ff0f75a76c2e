package models

import (
	"sort"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

const ErrTypeYearIndexNotBuilt = "err-year-index-not-built"

// YearIndex answers "which turbines existed by year Y" queries without
// rescanning the whole field. It keeps a per-year bucket plus a sorted list
// of commissioning years so cumulative lookups are a binary search away.
type YearIndex struct {
	byYear      map[int][]*Turbine
	sortedYears []int
	cumulative  []int
	built       bool
}

func NewYearIndex() *YearIndex {
	return &YearIndex{
		byYear: make(map[int][]*Turbine),
	}
}

// Build indexes the given turbines by commissioning year. Any previous index
// content is discarded.
func (idx *YearIndex) Build(turbines []*Turbine) {
	idx.byYear = make(map[int][]*Turbine)
	idx.sortedYears = idx.sortedYears[:0]
	idx.cumulative = idx.cumulative[:0]

	for _, t := range turbines {
		idx.byYear[t.Year] = append(idx.byYear[t.Year], t)
	}

	for year := range idx.byYear {
		idx.sortedYears = append(idx.sortedYears, year)
	}
	sort.Ints(idx.sortedYears)

	total := 0
	for _, year := range idx.sortedYears {
		total += len(idx.byYear[year])
		idx.cumulative = append(idx.cumulative, total)
	}

	idx.built = true
}

// Built reports whether the index reflects the current field.
func (idx *YearIndex) Built() bool {
	return idx.built
}

// Invalidate marks the index stale. The next query through Scene rebuilds it.
func (idx *YearIndex) Invalidate() {
	idx.built = false
}

// Years returns the distinct commissioning years in ascending order.
func (idx *YearIndex) Years() []int {
	return idx.sortedYears
}

// CountUntil returns how many turbines were commissioned in or before year.
func (idx *YearIndex) CountUntil(year int) (int, error) {
	if !idx.built {
		return 0, errors.New("year index is stale").WithType(ErrTypeYearIndexNotBuilt)
	}

	i := sort.SearchInts(idx.sortedYears, year+1)
	if i == 0 {
		return 0, nil
	}
	return idx.cumulative[i-1], nil
}

// FeaturesUntil returns every turbine commissioned in or before year.
func (idx *YearIndex) FeaturesUntil(year int) ([]*Turbine, error) {
	if !idx.built {
		return nil, errors.New("year index is stale").WithType(ErrTypeYearIndexNotBuilt)
	}

	i := sort.SearchInts(idx.sortedYears, year+1)
	if i == 0 {
		return nil, nil
	}

	out := make([]*Turbine, 0, idx.cumulative[i-1])
	for _, y := range idx.sortedYears[:i] {
		out = append(out, idx.byYear[y]...)
	}
	return out, nil
}
