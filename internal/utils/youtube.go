package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var durationRegex = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ShortFormMaxSeconds is the longest duration still classified as a short.
const ShortFormMaxSeconds = 60

// durationParts splits an ISO 8601 duration such as "PT1H2M3S" into its
// hour, minute and second components. ok is false when nothing matched.
func durationParts(duration string) (hours, minutes, seconds int, ok bool) {
	match := durationRegex.FindStringSubmatch(duration)
	if match == nil {
		return 0, 0, 0, false
	}

	return atoiOrZero(match[1]), atoiOrZero(match[2]), atoiOrZero(match[3]), true
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// ParseDurationSeconds returns the total number of seconds in an ISO 8601
// duration ("PT1M30S" -> 90). Unparseable input yields 0.
func ParseDurationSeconds(duration string) int {
	hours, minutes, seconds, _ := durationParts(duration)
	return hours*3600 + minutes*60 + seconds
}

// IsShortForm reports whether a video of the given duration counts as a
// short. An empty duration is never a short.
func IsShortForm(duration string) bool {
	if duration == "" {
		return false
	}
	return ParseDurationSeconds(duration) <= ShortFormMaxSeconds
}

// FormatDuration renders an ISO 8601 duration as "M:SS" or "H:MM:SS".
func FormatDuration(duration string) string {
	hours, minutes, seconds, ok := durationParts(duration)
	if !ok {
		return ""
	}

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// CountUnit labels a formatted count. Units without a singular form always
// use Plural.
type CountUnit struct {
	Singular string
	Plural   string
}

var (
	UnitViews = CountUnit{Plural: "views"}
	UnitLikes = CountUnit{Singular: "like", Plural: "likes"}
)

func (u CountUnit) label(count uint64) string {
	if count == 1 && u.Singular != "" {
		return u.Singular
	}
	return u.Plural
}

// FormatCount renders count with a K or M magnitude suffix followed by the
// unit label, e.g. "1.5K likes" or "2.5M views".
func FormatCount(count uint64, unit CountUnit) string {
	label := unit.label(count)

	switch {
	case count < 1_000:
		return fmt.Sprintf("%d %s", count, label)
	case count < 1_000_000:
		return fmt.Sprintf("%.1fK %s", float64(count)/1_000, label)
	default:
		return fmt.Sprintf("%.1fM %s", float64(count)/1_000_000, label)
	}
}

func FormatViews(count uint64) string {
	return FormatCount(count, UnitViews)
}

func FormatLikes(count uint64) string {
	return FormatCount(count, UnitLikes)
}

// calendarDaysBetween counts midnights crossed going from t to now, both
// read in now's location.
func calendarDaysBetween(t, now time.Time) int {
	t = t.In(now.Location())
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// RelativeTime describes how long before now the date t was, in whole
// calendar days bucketed into days, weeks, months and years.
func RelativeTime(t, now time.Time) string {
	days := calendarDaysBetween(t, now)

	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return plural(days/7, "week")
	case days < 365:
		return plural(days/30, "month")
	default:
		return plural(days/365, "year")
	}
}

func TimeAgo(t time.Time) string {
	return RelativeTime(t, time.Now())
}

// TimeAgoString is TimeAgo for an RFC 3339 timestamp as returned by the
// YouTube API. Unparseable input yields "".
func TimeAgoString(published string) string {
	t, err := time.Parse(time.RFC3339, published)
	if err != nil {
		return ""
	}
	return TimeAgo(t)
}
