package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	isoDatePattern      = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	dayFirstLongPattern = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})`)
	dayFirstYYPattern   = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{2})`)
	dateSeparators      = strings.NewReplacer("/", "-")
)

// NormalizeDate turns free-form date text into YYYY-MM-DD. Accepted shapes,
// tried in order, are YYYY-MM-DD, DD-MM-YYYY and DD-MM-YY ("/" works as a
// separator too). When nothing matches it returns now's date and ok=false.
func NormalizeDate(raw string, now time.Time) (date string, ok bool) {
	normalized := dateSeparators.Replace(strings.TrimSpace(raw))

	if m := isoDatePattern.FindStringSubmatch(normalized); m != nil {
		if d, valid := buildDate(m[1], m[2], m[3]); valid {
			return d, true
		}
	}
	if m := dayFirstLongPattern.FindStringSubmatch(normalized); m != nil {
		if d, valid := buildDate(m[3], m[2], m[1]); valid {
			return d, true
		}
	}
	if m := dayFirstYYPattern.FindStringSubmatch(normalized); m != nil {
		if d, valid := buildDate(expandYear(m[3]), m[2], m[1]); valid {
			return d, true
		}
	}

	return now.Format(DateLayout), false
}

// expandYear pivots two-digit years: above 50 is 19YY, otherwise 20YY.
func expandYear(yy string) string {
	n, _ := strconv.Atoi(yy)
	if n > 50 {
		return "19" + yy
	}
	return "20" + yy
}

func buildDate(year, month, day string) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (month 13, Feb 30), which we treat as invalid.
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return "", false
	}
	return t.Format(DateLayout), true
}

// ParseCalendarDate reads a YYYY-MM-DD value produced by NormalizeDate.
func ParseCalendarDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// FormatDisplayDate renders YYYY-MM-DD as DD/MM/YYYY.
func FormatDisplayDate(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return date
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}
