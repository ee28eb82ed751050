// Package continuity checks a stored daily series for missing anchor days.
package continuity

import (
	"sort"

	"csgo-market-data/internal/anchor"
)

// Gap is a run of missing days between two stored anchors.
type Gap struct {
	After   int64 `json:"after"`   // last stored anchor before the gap
	Before  int64 `json:"before"`  // first stored anchor after the gap
	Missing int   `json:"missing"` // number of absent days
}

// Report summarizes a series.
type Report struct {
	First      int64   `json:"first"`
	Last       int64   `json:"last"`
	Present    int     `json:"present"`
	Expected   int     `json:"expected"`
	Gaps       []Gap   `json:"gaps"`
	Misaligned []int64 `json:"misaligned,omitempty"`
}

// Continuous reports whether every day between First and Last is stored.
func (r Report) Continuous() bool {
	return len(r.Gaps) == 0 && len(r.Misaligned) == 0
}

// Check analyses stored timestamps (unix seconds). Input order does not matter;
// duplicates count once.
func Check(timestamps []int64) Report {
	var r Report
	if len(timestamps) == 0 {
		return r
	}

	ts := make([]int64, len(timestamps))
	copy(ts, timestamps)
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })

	uniq := ts[:0]
	for i, v := range ts {
		if i > 0 && v == ts[i-1] {
			continue
		}
		uniq = append(uniq, v)
	}

	for _, v := range uniq {
		if !anchor.IsAnchor(v) {
			r.Misaligned = append(r.Misaligned, v)
		}
	}

	r.First = uniq[0]
	r.Last = uniq[len(uniq)-1]
	r.Present = len(uniq)
	r.Expected = int((r.Last-r.First)/anchor.DaySeconds) + 1
	r.Gaps = FindGaps(uniq)
	return r
}

// FindGaps returns the gaps of an ascending anchor series.
func FindGaps(anchors []int64) []Gap {
	var gaps []Gap
	for i := 1; i < len(anchors); i++ {
		diff := anchors[i] - anchors[i-1]
		if diff <= anchor.DaySeconds {
			continue
		}
		gaps = append(gaps, Gap{
			After:   anchors[i-1],
			Before:  anchors[i],
			Missing: int(diff/anchor.DaySeconds) - 1,
		})
	}
	return gaps
}
