package utils

import (
	"strings"
	"time"
)

// India Standard Time (+05:30); the gateway reports schedule dates in IST.
var istLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*3600+1800)
}()

func IST() *time.Location { return istLoc }

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date as midnight IST.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), istLoc)
}

// ParseGatewayTime accepts the timestamp shapes the gateway emits: RFC3339, a bare date,
// or "2006-01-02 15:04:05" in IST. It returns false for empty or unparseable input.
func ParseGatewayTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", DateLayout} {
		if t, err := time.ParseInLocation(layout, s, istLoc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func FormatDateIST(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(istLoc).Format(DateLayout)
}

func FormatRFC3339IST(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(istLoc).Format(time.RFC3339)
}
