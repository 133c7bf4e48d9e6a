package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func hm(h, m int) time.Time {
	return time.Date(2026, 10, 14, h, m, 0, 0, time.UTC)
}

func iv(h1, m1, h2, m2 int) Interval {
	return Interval{Start: hm(h1, m1), End: hm(h2, m2)}
}

func TestOverlaps(t *testing.T) {
	assert.True(t, iv(9, 0, 10, 0).Overlaps(iv(9, 30, 10, 30)))
	assert.True(t, iv(9, 0, 12, 0).Overlaps(iv(10, 0, 11, 0)))
	assert.False(t, iv(9, 0, 10, 0).Overlaps(iv(10, 0, 11, 0)), "touching ranges do not overlap")
	assert.False(t, iv(9, 0, 10, 0).Overlaps(iv(11, 0, 12, 0)))
}

func TestNormalize(t *testing.T) {
	got := Normalize([]Interval{
		iv(13, 0, 14, 0),
		iv(9, 0, 10, 0),
		iv(9, 30, 11, 0),
		iv(11, 0, 11, 30),
		iv(15, 0, 15, 0),
	})

	assert.Equal(t, []Interval{iv(9, 0, 11, 30), iv(13, 0, 14, 0)}, got)
}

func TestSubtract(t *testing.T) {
	tests := []struct {
		name string
		base []Interval
		cut  []Interval
		want []Interval
	}{
		{
			name: "no cuts",
			base: []Interval{iv(9, 0, 18, 0)},
			want: []Interval{iv(9, 0, 18, 0)},
		},
		{
			name: "cut strictly inside splits in two",
			base: []Interval{iv(9, 0, 18, 0)},
			cut:  []Interval{iv(13, 0, 14, 0)},
			want: []Interval{iv(9, 0, 13, 0), iv(14, 0, 18, 0)},
		},
		{
			name: "cut at the start trims",
			base: []Interval{iv(9, 0, 18, 0)},
			cut:  []Interval{iv(8, 0, 10, 0)},
			want: []Interval{iv(10, 0, 18, 0)},
		},
		{
			name: "cut at the end trims",
			base: []Interval{iv(9, 0, 18, 0)},
			cut:  []Interval{iv(17, 0, 19, 0)},
			want: []Interval{iv(9, 0, 17, 0)},
		},
		{
			name: "cut covering everything",
			base: []Interval{iv(9, 0, 18, 0)},
			cut:  []Interval{iv(8, 0, 19, 0)},
			want: []Interval{},
		},
		{
			name: "several cuts across several bases",
			base: []Interval{iv(9, 0, 13, 0), iv(14, 0, 18, 0)},
			cut:  []Interval{iv(10, 0, 10, 30), iv(12, 30, 14, 30), iv(17, 0, 17, 15)},
			want: []Interval{
				iv(9, 0, 10, 0), iv(10, 30, 12, 30),
				iv(14, 30, 17, 0), iv(17, 15, 18, 0),
			},
		},
		{
			name: "touching cut leaves base intact",
			base: []Interval{iv(9, 0, 10, 0)},
			cut:  []Interval{iv(10, 0, 11, 0)},
			want: []Interval{iv(9, 0, 10, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Subtract(tt.base, tt.cut)
			assert.Equal(t, tt.want, got)

			for _, g := range got {
				for _, c := range tt.cut {
					assert.False(t, g.Overlaps(c), "%v overlaps cut %v", g, c)
				}
			}
		})
	}
}
