package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func obs(region, period, variable string, value *float64) Observation {
	return Observation{Region: region, Period: Period(period), Variable: variable, Value: value}
}

func TestStore_ValuesAt(t *testing.T) {
	s := NewStore([]Observation{
		obs("Texas", "2024-01", "NDVI", Float(0.31)),
		obs("Ohio", "2024-01", "NDVI", Float(0)),
		obs("Iowa", "2024-01", "NDVI", nil),
		obs("Texas", "2024-02", "NDVI", Float(0.35)),
		obs("Texas", "2024-01", "ET", Float(42)),
	})

	slice := s.ValuesAt("2024-01", "NDVI")

	v, ok := slice.Lookup("Texas")
	assert.True(t, ok)
	assert.InDelta(t, 0.31, v, 1e-9)

	v, ok = slice.Lookup("Ohio")
	assert.True(t, ok, "zero is a legitimate value")
	assert.Zero(t, v)

	_, ok = slice.Lookup("Iowa")
	assert.False(t, ok, "null value is absent")

	_, ok = slice.Lookup("Maine")
	assert.False(t, ok)

	assert.Empty(t, s.ValuesAt("1999-01", "NDVI"))
	assert.NotNil(t, s.ValuesAt("1999-01", "NDVI"))
}

func TestStore_SeriesForKeepsGaps(t *testing.T) {
	s := NewStore([]Observation{
		obs("A", "2024-01", "NDVI", Float(1)),
		obs("A", "2024-02", "NDVI", nil),
		obs("A", "2024-03", "NDVI", Float(3)),
		obs("B", "2024-04", "NDVI", Float(9)),
	})

	got := s.SeriesFor("A", "NDVI")
	want := []Point{
		{Period: "2024-01", Value: Float(1)},
		{Period: "2024-02"},
		{Period: "2024-03", Value: Float(3)},
		{Period: "2024-04"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("series mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, got[1].Defined(), "gap must not be interpolated")

	for _, p := range s.SeriesFor("Nowhere", "NDVI") {
		assert.False(t, p.Defined())
	}
}

func TestStore_Duplicates(t *testing.T) {
	s := NewStore([]Observation{
		obs("A", "2024-01", "NDVI", Float(0.1)),
		obs("A", "2024-01", "NDVI", Float(0.9)),
		obs("A", "2024-01", "NDVI", nil),
		obs("A", "2024-02", "NDVI", Float(0.5)),
	})

	assert.Equal(t, 2, s.Duplicates())
	assert.Equal(t, 2, s.Len())

	_, ok := s.ValuesAt("2024-01", "NDVI").Lookup("A")
	assert.False(t, ok, "last write (null) wins")
}

func TestStore_IndexesAndRange(t *testing.T) {
	s := NewStore([]Observation{
		obs("B", "2024-02", "LST_Day", Float(30)),
		obs("A", "2024-01", "LST_Day", Float(-4)),
		obs("A", "2024-02", "NDVI", Float(0.4)),
		obs("C", "2024-01", "LST_Day", nil),
	})

	assert.Equal(t, []Period{"2024-01", "2024-02"}, s.Periods())
	assert.Equal(t, []string{"LST_Day", "NDVI"}, s.Variables())
	assert.Equal(t, []string{"A", "B", "C"}, s.Regions())
	assert.Equal(t, 4, s.Len())
	assert.False(t, s.Empty())

	lo, hi, ok := s.Range("LST_Day")
	assert.True(t, ok)
	assert.InDelta(t, -4.0, lo, 1e-9)
	assert.InDelta(t, 30.0, hi, 1e-9)

	_, _, ok = s.Range("ET")
	assert.False(t, ok)
}

func TestStore_Empty(t *testing.T) {
	s := NewStore(nil)
	assert.True(t, s.Empty())
	assert.Empty(t, s.Periods())
	assert.Empty(t, s.SeriesFor("A", "NDVI"))
}

func TestStore_ResultsAreCopies(t *testing.T) {
	s := NewStore([]Observation{obs("A", "2024-01", "NDVI", Float(1))})

	series := s.SeriesFor("A", "NDVI")
	*series[0].Value = 99
	periods := s.Periods()
	periods[0] = "tampered"

	assert.InDelta(t, 1.0, *s.SeriesFor("A", "NDVI")[0].Value, 1e-9)
	assert.Equal(t, Period("2024-01"), s.Periods()[0])
}
