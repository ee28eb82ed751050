// Package anchor maps instants onto the daily boundary the SteamDT series use:
// 00:00 in UTC+8 (北京时间零点).
package anchor

import "time"

// Unit is the resolution of an integer timestamp.
type Unit int

const (
	Seconds Unit = iota
	Milliseconds
)

const (
	// Offset is the fixed UTC offset of the daily boundary.
	Offset = 8 * time.Hour

	// DaySeconds is the distance between two consecutive anchors.
	DaySeconds int64 = 86400

	// MillisThreshold splits raw integers into seconds (below) and milliseconds
	// (at or above). 3e9 seconds is in 2065, so second-resolution values from
	// this market never reach it while every plausible millisecond value does.
	// It is a heuristic and misclassifies values far outside 2020-2030.
	MillisThreshold int64 = 3_000_000_000
)

// Zone is the fixed UTC+8 location the daily boundary is defined in.
var Zone = time.FixedZone("UTC+8", int(Offset/time.Second))

// Of returns the most recent anchor at or before t, in UTC.
func Of(t time.Time) time.Time {
	local := t.In(Zone)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Zone)
	return day.UTC()
}

// Unix anchors a unix timestamp given in unit and returns it in the same unit.
func Unix(ts int64, unit Unit) int64 {
	sec := ts
	if unit == Milliseconds {
		sec = floorDiv(ts, 1000)
	}
	a := Of(time.Unix(sec, 0)).Unix()
	if unit == Milliseconds {
		return a * 1000
	}
	return a
}

// Now returns the anchor of the current instant in unit.
func Now(unit Unit) int64 {
	return At(time.Now(), unit)
}

// At returns the anchor of t in unit.
func At(t time.Time, unit Unit) int64 {
	a := Of(t).Unix()
	if unit == Milliseconds {
		return a * 1000
	}
	return a
}

// Date formats unix seconds as the UTC+8 calendar day, e.g. "2024-12-30".
func Date(sec int64) string {
	return time.Unix(sec, 0).In(Zone).Format("2006-01-02")
}

// ToSeconds normalizes a raw upstream timestamp of unknown resolution to seconds.
func ToSeconds(raw int64) int64 {
	if raw < MillisThreshold {
		return raw
	}
	return raw / 1000
}

// Normalize detects the unit of raw and returns its anchor in seconds.
func Normalize(raw int64) int64 {
	return Unix(ToSeconds(raw), Seconds)
}

// IsAnchor reports whether sec (unix seconds) lies exactly on a boundary.
func IsAnchor(sec int64) bool {
	return Unix(sec, Seconds) == sec
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
