package schedule

import (
	"sort"
	"time"
)

// Interval is the half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) Empty() bool {
	return !i.End.After(i.Start)
}

// Overlaps reports whether the two ranges share any instant. Ranges that
// only touch (a.End == b.Start) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Contains reports whether o lies entirely inside i.
func (i Interval) Contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End)
}

// Normalize sorts the intervals and merges the ones that overlap or touch.
// Empty intervals are dropped. The input slice is not modified.
func Normalize(in []Interval) []Interval {
	out := make([]Interval, 0, len(in))
	for _, iv := range in {
		if !iv.Empty() {
			out = append(out, iv)
		}
	}
	if len(out) < 2 {
		return out
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].Start.Equal(out[b].Start) {
			return out[a].End.Before(out[b].End)
		}
		return out[a].Start.Before(out[b].Start)
	})

	merged := out[:1]
	for _, iv := range out[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Subtract removes every cut range from base. The result is ordered and
// non-overlapping; base pieces left with zero length are dropped.
func Subtract(base, cut []Interval) []Interval {
	base = Normalize(base)
	cut = Normalize(cut)

	out := make([]Interval, 0, len(base))
	j := 0
	for _, b := range base {
		cur := b
		// cuts that end before this base piece can never matter again
		for j < len(cut) && !cut[j].End.After(cur.Start) {
			j++
		}
		for k := j; k < len(cut) && cut[k].Start.Before(cur.End); k++ {
			c := cut[k]
			if c.Start.After(cur.Start) {
				out = append(out, Interval{Start: cur.Start, End: c.Start})
			}
			if c.End.After(cur.Start) {
				cur.Start = c.End
			}
			if !cur.End.After(cur.Start) {
				break
			}
		}
		if cur.End.After(cur.Start) {
			out = append(out, cur)
		}
	}
	return out
}
