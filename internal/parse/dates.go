package parse

import (
	"strconv"
	"strings"
	"time"
)

// DisplayDateLayout is the single layout every report date is rendered in (3/1/2024).
const DisplayDateLayout = "1/2/2006"

// US month-first layouts must come before anything day-first; the portal exports are US-formatted.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/06",
	"01/02/06",
	"1-2-2006",
	"01-02-2006",
	"01-02-06",
	"1-2-06",
	"2006/01/02",
	"2006/1/2",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
	"02-Jan-2006",
	"2-Jan-06",
	"02-Jan-06",
	"20060102",
}

// Date parses s with the known layouts, falling back to an Excel serial day number.
// ok is false for empty or unparseable input.
func Date(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	if t, ok := excelSerialDate(s); ok {
		return t, true
	}
	return time.Time{}, false
}

// FormatDate renders t in DisplayDateLayout; a missing date renders as "".
func FormatDate(t time.Time, ok bool) string {
	if !ok {
		return ""
	}
	return t.Format(DisplayDateLayout)
}

// NormalizeDate re-renders a raw date cell in DisplayDateLayout, "" when unparseable.
func NormalizeDate(s string) string {
	return FormatDate(Date(s))
}

// Quarter returns "Q1".."Q4" for t.
func Quarter(t time.Time) string {
	return "Q" + strconv.Itoa((int(t.Month())-1)/3+1)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// excelSerialDate converts an Excel serial date (days since 1899-12-30, counting the
// nonexistent 1900-02-29) into a calendar date.
func excelSerialDate(s string) (time.Time, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 1 || f >= 2958466 {
		return time.Time{}, false
	}
	days := int(f)
	if days > 59 {
		days--
	}
	base := time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, days), true
}
