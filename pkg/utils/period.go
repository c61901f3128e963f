package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrPeriodConflict = errors.New("select either a month filter or a start and end date, not both")
	ErrPeriodOneSided = errors.New("start_date and end_date must be supplied together")
	ErrPeriodInverted = errors.New("start_date cannot be after end_date")
)

// Period is a parsed ledger time filter: either a single calendar month or an
// inclusive day range, never both. The zero Period means all time.
type Period struct {
	Month *time.Time // first instant of the requested month, UTC
	Start *time.Time // first instant of the start day, UTC
	End   *time.Time // first instant of the end day, UTC (day inclusive)
}

func (p Period) IsZero() bool {
	return p.Month == nil && p.Start == nil
}

// Bounds returns the half-open [from, to) window the period covers.
// ok is false for the zero Period.
func (p Period) Bounds() (from, to time.Time, ok bool) {
	switch {
	case p.Month != nil:
		return *p.Month, p.Month.AddDate(0, 1, 0), true
	case p.Start != nil:
		return *p.Start, p.End.AddDate(0, 0, 1), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// Previous returns the window immediately preceding this one: the prior
// calendar month for a month filter, or the equal-length run of days ending
// the day before Start for a day range. Trend percentages compare against it.
func (p Period) Previous() Period {
	switch {
	case p.Month != nil:
		prev := p.Month.AddDate(0, -1, 0)
		return Period{Month: &prev}
	case p.Start != nil:
		days := int(p.End.Sub(*p.Start).Hours()/24) + 1
		end := p.Start.AddDate(0, 0, -1)
		start := end.AddDate(0, 0, -(days - 1))
		return Period{Start: &start, End: &end}
	default:
		return Period{}
	}
}

// ParsePeriod reads the filter_date / start_date / end_date query parameters.
// filter_date selects a calendar month and is mutually exclusive with the
// start_date+end_date pair; malformed combinations are rejected before any
// query runs.
func ParsePeriod(c *fiber.Ctx) (Period, error) {
	filterRaw := c.Query("filter_date")
	startRaw := c.Query("start_date")
	endRaw := c.Query("end_date")

	if filterRaw != "" && (startRaw != "" || endRaw != "") {
		return Period{}, ErrPeriodConflict
	}

	if filterRaw != "" {
		month, err := parseMonth(filterRaw)
		if err != nil {
			return Period{}, err
		}
		return Period{Month: &month}, nil
	}

	if startRaw == "" && endRaw == "" {
		return Period{}, nil
	}
	if startRaw == "" || endRaw == "" {
		return Period{}, ErrPeriodOneSided
	}

	start, err := parseDay(startRaw)
	if err != nil {
		return Period{}, err
	}
	end, err := parseDay(endRaw)
	if err != nil {
		return Period{}, err
	}
	if start.After(end) {
		return Period{}, ErrPeriodInverted
	}
	return Period{Start: &start, End: &end}, nil
}

func parseMonth(value string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01", value, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, errors.New("filter_date must look like 2006-01 or 2006-01-02")
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

func parseDay(value string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, errors.New("dates must look like 2006-01-02")
	}
	return t, nil
}
