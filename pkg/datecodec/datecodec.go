package datecodec

import (
	"fmt"
	"time"
)

// Packed date layout used by the stats backend.
// 2102024 → month 2, day 10, year 2024
const (
	monthFactor = 1_000_000
	dayFactor   = 10_000
	yearModulus = 10_000

	MinYear = 1900
	MaxYear = 9999
)

// Date is a calendar date decoded from the backend's packed integer form
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// InvalidDateError is returned when a packed value does not name a real calendar date
type InvalidDateError struct {
	Packed int
	Year   int
	Month  int
	Day    int
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid packed date %d (year=%d month=%d day=%d): %s",
		e.Packed, e.Year, e.Month, e.Day, e.Reason)
}

// Decode unpacks month*1_000_000 + day*10_000 + year into a Date.
// Out-of-range components are rejected, never rolled over.
func Decode(packed int) (Date, error) {
	year := packed % yearModulus
	month := packed / monthFactor
	day := (packed % monthFactor) / dayFactor

	invalid := func(reason string) (Date, error) {
		return Date{}, &InvalidDateError{
			Packed: packed,
			Year:   year,
			Month:  month,
			Day:    day,
			Reason: reason,
		}
	}

	if packed < 0 {
		return invalid("negative value")
	}
	if year < MinYear || year > MaxYear {
		return invalid(fmt.Sprintf("year outside %d-%d", MinYear, MaxYear))
	}
	if month < 1 || month > 12 {
		return invalid("month outside 1-12")
	}
	if day < 1 || day > DaysIn(year, time.Month(month)) {
		return invalid(fmt.Sprintf("day outside 1-%d", DaysIn(year, time.Month(month))))
	}

	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// Encode packs a Date back into the backend's integer form
func Encode(d Date) int {
	return int(d.Month)*monthFactor + d.Day*dayFactor + d.Year
}

// DaysIn returns the number of days in the given month, honouring leap years
func DaysIn(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsZero reports whether d is the zero Date (used for records whose date failed to decode)
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns midnight UTC on d
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats d as "Month Day, Year", e.g. "February 10, 2024"
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format("January 2, 2006")
}

// Short formats d as "Feb 10" for chart axes
func (d Date) Short() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format("Jan 2")
}

// Before reports whether d falls strictly before other
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// MarshalText emits ISO 2006-01-02, or an empty string for the zero Date
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.Time().Format(time.DateOnly)), nil
}

// UnmarshalText accepts the ISO form produced by MarshalText
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}

	t, err := time.Parse(time.DateOnly, string(text))
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", string(text), err)
	}

	*d = Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
	return nil
}
