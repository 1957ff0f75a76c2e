package models

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func turbinesWithYears(years ...int) []*Turbine {
	out := make([]*Turbine, 0, len(years))
	for i, year := range years {
		t := NewTurbine(float32(i)*0.01, 0)
		t.ID = uint32(i + 1)
		t.Year = year
		out = append(out, t)
	}
	return out
}

func TestYearIndex(t *testing.T) {
	t.Run("unbuilt index reports a typed error", func(t *testing.T) {
		idx := NewYearIndex()

		_, err := idx.CountUntil(2000)
		require.Error(t, err)
		require.Equal(t, ErrTypeYearIndexNotBuilt, errors.Type(err))

		_, err = idx.FeaturesUntil(2000)
		require.Error(t, err)
		require.Equal(t, ErrTypeYearIndexNotBuilt, errors.Type(err))
	})

	t.Run("cumulative counts by year", func(t *testing.T) {
		idx := NewYearIndex()
		idx.Build(turbinesWithYears(1990, 1990, 1995, 2000))

		for _, tc := range []struct {
			year int
			want int
		}{
			{1989, 0},
			{1990, 2},
			{1994, 2},
			{1995, 3},
			{2000, 4},
			{2030, 4},
		} {
			got, err := idx.CountUntil(tc.year)
			require.NoError(t, err)
			require.Equal(t, tc.want, got, "year %d", tc.year)
		}
	})

	t.Run("features until a year", func(t *testing.T) {
		idx := NewYearIndex()
		idx.Build(turbinesWithYears(1990, 1990, 1995, 2000))

		features, err := idx.FeaturesUntil(1995)
		require.NoError(t, err)
		require.Len(t, features, 3)
		for _, f := range features {
			require.LessOrEqual(t, f.Year, 1995)
		}
	})

	t.Run("empty field yields empty results", func(t *testing.T) {
		idx := NewYearIndex()
		idx.Build(nil)

		count, err := idx.CountUntil(2000)
		require.NoError(t, err)
		require.Zero(t, count)

		features, err := idx.FeaturesUntil(2000)
		require.NoError(t, err)
		require.Empty(t, features)
		require.Empty(t, idx.Years())
	})

	t.Run("years are sorted ascending", func(t *testing.T) {
		idx := NewYearIndex()
		idx.Build(turbinesWithYears(2005, 1991, 1999, 1991))

		require.Equal(t, []int{1991, 1999, 2005}, idx.Years())
	})

	t.Run("invalidate marks the index stale", func(t *testing.T) {
		idx := NewYearIndex()
		idx.Build(turbinesWithYears(1990))
		require.True(t, idx.Built())

		idx.Invalidate()
		require.False(t, idx.Built())

		_, err := idx.CountUntil(1990)
		require.Error(t, err)
	})

	t.Run("rebuild replaces previous content", func(t *testing.T) {
		idx := NewYearIndex()
		idx.Build(turbinesWithYears(1990, 1991))
		idx.Build(turbinesWithYears(2010))

		count, err := idx.CountUntil(2000)
		require.NoError(t, err)
		require.Zero(t, count)
	})
}
