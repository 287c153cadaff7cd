package core

import "time"

// Period is one calendar month of one year.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1-12
}

// CurrentPeriod returns the period containing now.
func CurrentPeriod(now time.Time) Period {
	return Period{Year: now.Year(), Month: int(now.Month())}
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return Validationf("invalid month %d: must be between 1 and 12", p.Month)
	}
	if p.Year < 1 || p.Year > 9999 {
		return Validationf("invalid year %d: must be between 1 and 9999", p.Year)
	}
	return nil
}

// Bounds returns the half-open interval [first day of month, first day of
// next month). December rolls over into January of the following year.
func (p Period) Bounds() (start, end Date) {
	start = NewDate(p.Year, p.Month, 1)
	if p.Month == 12 {
		end = NewDate(p.Year+1, 1, 1)
	} else {
		end = NewDate(p.Year, p.Month+1, 1)
	}
	return start, end
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && int(d.Month()) == p.Month
}
