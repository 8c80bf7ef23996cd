package calendar

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Location is the civil timezone every fleet date is anchored to (Africa/Luanda,
// UTC+01:00 all year).
var Location = time.FixedZone("WAT", 60*60)

const (
	dateLayout  = "2006-01-02"
	hoursPerDay = 24
)

// dateTimeLayouts are tried in order; layouts without an offset are read as Luanda wall time.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ErrParse matches every *ParseError via errors.Is.
var ErrParse = errors.New("parse error")

// ParseError reports malformed date, date-time or numeric input.
type ParseError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid date %q: %s", e.Value, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Date is a calendar day in the fleet's civil timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate converts a yyyy-mm-dd string into a Date. A full date-time string is
// accepted as well and reduced to its civil day.
func ParseDate(value string) (Date, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return Date{}, &ParseError{Value: value, Reason: "empty value"}
	}
	if len(s) > len(dateLayout) {
		t, err := ParseDateTime(s)
		if err != nil {
			return Date{}, err
		}
		return ToCivilDate(t), nil
	}
	t, err := time.ParseInLocation(dateLayout, s, Location)
	if err != nil {
		return Date{}, &ParseError{Value: value, Reason: "expected yyyy-mm-dd"}
	}
	return ToCivilDate(t), nil
}

// ParseDateTime parses an ISO-8601 date-time. Values carrying an offset keep their
// instant; values without one are Luanda wall-clock time, never host-local time.
func ParseDateTime(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, &ParseError{Value: value, Reason: "empty value"}
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, Location); err == nil {
			return t.In(Location), nil
		}
	}
	return time.Time{}, &ParseError{Value: value, Reason: "expected ISO-8601 date-time"}
}

// ToCivilDate returns the civil day the instant t falls on in Luanda.
func ToCivilDate(t time.Time) Date {
	y, m, d := t.In(Location).Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsSameCivilDay reports whether a and b fall on the same Luanda calendar day.
func IsSameCivilDay(a, b time.Time) bool {
	return ToCivilDate(a) == ToCivilDate(b)
}

// Time returns midnight of d in Luanda.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, Location)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// AddDays shifts d by n calendar days.
func (d Date) AddDays(n int) Date {
	return ToCivilDate(d.Time().AddDate(0, 0, n))
}

// SpanDays is the exclusive calendar span from a to b (b - a). Negative when b precedes a.
func SpanDays(a, b Date) int {
	// Fixed offset zone: every civil day is exactly 24 hours long.
	return int(b.Time().Sub(a.Time()).Hours() / hoursPerDay)
}

// InclusiveDays counts both endpoints, the form used for rental-day pricing.
func InclusiveDays(a, b Date) int {
	return SpanDays(a, b) + 1
}

// ElapsedDays counts the 24-hour periods started between from and to. Returns 0
// when to is not after from.
func ElapsedDays(from, to time.Time) int {
	elapsed := to.Sub(from)
	if elapsed <= 0 {
		return 0
	}
	day := hoursPerDay * time.Hour
	days := int(elapsed / day)
	if elapsed%day != 0 {
		days++
	}
	return days
}

// AddCivilDays shifts t by n calendar days keeping its Luanda time of day.
func AddCivilDays(t time.Time, n int) time.Time {
	return t.In(Location).AddDate(0, 0, n)
}

func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as yyyy-mm-dd so the database column type decides the rest.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan accepts the time.Time lib/pq returns for DATE columns as well as text.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		// DATE columns arrive as UTC midnight; keep the calendar fields as stored.
		*d = Date{Year: v.Year(), Month: v.Month(), Day: v.Day()}
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	default:
		return fmt.Errorf("calendar: cannot scan %T into Date", src)
	}
}
