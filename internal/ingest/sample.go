package ingest

import (
	"sort"

	"csgo-market-data/internal/anchor"
)

// Sample is one raw upstream point. Timestamp may be seconds or milliseconds.
// Err is set when the values could not be parsed; such a sample still takes
// part in ordering and the trailing filter but is never stored.
type Sample struct {
	Timestamp int64
	Values    []float64
	Err       error
}

// anchoredSample is a Sample whose timestamp has been normalized to an anchor in seconds.
type anchoredSample struct {
	Anchor int64
	Sample Sample
}

// normalize detects the unit of every sample, anchors it and sorts ascending.
func normalize(samples []Sample) []anchoredSample {
	out := make([]anchoredSample, 0, len(samples))
	for _, s := range samples {
		out = append(out, anchoredSample{Anchor: anchor.Normalize(s.Timestamp), Sample: s})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Anchor < out[j].Anchor })
	return out
}

// DropTrailing removes the last element of an ascending series, which upstream
// fills with the live, not yet closed period. A single element is kept since it
// cannot be told apart from a closed one.
func DropTrailing[T any](series []T) []T {
	if len(series) > 1 {
		return series[:len(series)-1]
	}
	return series
}
