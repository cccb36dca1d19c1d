package mood

import (
	"sort"
	"strings"
	"time"
)

// Granularity is the fixed bucket width used to group messages for charting.
type Granularity int

const (
	Hour Granularity = iota
	Day
	Week
)

func (g Granularity) String() string {
	switch g {
	case Hour:
		return "hour"
	case Week:
		return "week"
	default:
		return "day"
	}
}

// ParseGranularity accepts "hour", "day", "week" and the dashboard's plural
// spellings ("Hours", "Days", "Weeks"), case-insensitively. Anything else
// falls back to Day.
func ParseGranularity(s string) Granularity {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "hour":
		return Hour
	case "week":
		return Week
	default:
		return Day
	}
}

// Sample is a single classified message reduced to what aggregation needs.
type Sample struct {
	Time  time.Time
	Label Label
}

// MoodPoint is one bucket of the mood series: the mean of the +1/-1/0 label
// encoding over all messages in the period.
type MoodPoint struct {
	Period   time.Time `json:"period"`
	MeanMood float64   `json:"mean_mood"`
}

// CountPoint is one (period, label) bucket of the count series. Only pairs
// that actually occurred are emitted; consumers fill the missing labels of a
// period with zero before charting.
type CountPoint struct {
	Period time.Time `json:"period"`
	Label  Label     `json:"label"`
	Count  int       `json:"count"`
}

// TruncatePeriod assigns a timestamp to its bucket by truncation in UTC.
// Buckets are half-open, so no message can fall into two periods. Weeks
// start Monday 00:00.
func TruncatePeriod(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	switch g {
	case Hour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
	case Week:
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
		return d.AddDate(0, 0, -offset)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// DayRange expands two calendar dates into the half-open timestamp interval
// [start 00:00:00, end+1d 00:00:00) in UTC. Both series reads use this one
// rule, so the whole end date is always included.
func DayRange(start, end time.Time) (time.Time, time.Time) {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return s, e
}

// BuildMoodSeries buckets samples by period and returns the per-period mean
// of the label encoding, ordered ascending by period. An empty input yields
// an empty series, not an error.
func BuildMoodSeries(samples []Sample, g Granularity) []MoodPoint {
	type acc struct {
		sum   float64
		count int
	}
	buckets := make(map[time.Time]*acc)
	for _, s := range samples {
		period := TruncatePeriod(s.Time, g)
		a, ok := buckets[period]
		if !ok {
			a = &acc{}
			buckets[period] = a
		}
		a.sum += LabelValue(s.Label)
		a.count++
	}

	series := make([]MoodPoint, 0, len(buckets))
	for period, a := range buckets {
		series = append(series, MoodPoint{Period: period, MeanMood: a.sum / float64(a.count)})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Period.Before(series[j].Period) })
	return series
}

// BuildCountSeries buckets samples by (period, label) and returns sparse
// counts ordered by period, then label. The counts of a period always sum
// to the number of samples in that period.
func BuildCountSeries(samples []Sample, g Granularity) []CountPoint {
	type key struct {
		period time.Time
		label  Label
	}
	buckets := make(map[key]int)
	for _, s := range samples {
		buckets[key{TruncatePeriod(s.Time, g), s.Label}]++
	}

	series := make([]CountPoint, 0, len(buckets))
	for k, n := range buckets {
		series = append(series, CountPoint{Period: k.period, Label: k.label, Count: n})
	}
	sort.Slice(series, func(i, j int) bool {
		if !series[i].Period.Equal(series[j].Period) {
			return series[i].Period.Before(series[j].Period)
		}
		return series[i].Label < series[j].Label
	})
	return series
}
