package utils

import (
	"time"
)

// ET is the US Eastern time zone used by NYSE/NASDAQ.
var ET *time.Location

func init() {
	var err error
	ET, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback: fixed EST offset if tz database is not available
		ET = time.FixedZone("EST", -5*60*60)
	}
}

// NowET returns the current time in US Eastern time.
func NowET() time.Time {
	return time.Now().In(ET)
}

// DateSuffix returns the mmddyy stamp used in report and log file names.
func DateSuffix(t time.Time) string {
	return t.Format("010206")
}

// MarketOpenTime returns the regular-session open (9:30 AM ET) for a given date.
func MarketOpenTime(date time.Time) time.Time {
	d := date.In(ET)
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 30, 0, 0, ET)
}

// MarketCloseTime returns the regular-session close (4:00 PM ET) for a given date.
func MarketCloseTime(date time.Time) time.Time {
	d := date.In(ET)
	return time.Date(d.Year(), d.Month(), d.Day(), 16, 0, 0, 0, ET)
}

// IsMarketOpenAt checks if the US regular session would be open at t.
// Exchange holidays are not modelled.
func IsMarketOpenAt(t time.Time) bool {
	t = t.In(ET)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !t.Before(MarketOpenTime(t)) && t.Before(MarketCloseTime(t))
}

// FormatDateTime formats a time as "2006-01-02 15:04:05 MST" in Eastern time.
func FormatDateTime(t time.Time) string {
	return t.In(ET).Format("2006-01-02 15:04:05 MST")
}

// MarketStatus describes the regular session state at t. Quotes fetched
// while the market is open reflect the in-progress session, not a close.
func MarketStatus(t time.Time) string {
	t = t.In(ET)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return "CLOSED (Weekend)"
	}
	switch {
	case t.Before(MarketOpenTime(t)):
		return "PRE-MARKET"
	case t.Before(MarketCloseTime(t)):
		return "OPEN"
	default:
		return "CLOSED"
	}
}
