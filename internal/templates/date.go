// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package templates

import (
	"fmt"
	"time"

	"prerenderd/internal/models"
)

// Date is a possibly-partial calendar date. Month and Day are 0 when the
// source id did not carry them (a year or year-month archive).
type Date struct {
	Year  int
	Month int
	Day   int
}

// Compact renders the date back into its YYYY[MM[DD]] form.
func (d Date) Compact() string {
	s := fmt.Sprintf("%04d", d.Year)
	if d.Month != 0 {
		s += fmt.Sprintf("%02d", d.Month)
		if d.Day != 0 {
			s += fmt.Sprintf("%02d", d.Day)
		}
	}
	return s
}

// ParseYmd parses a compact date id. Accepted lengths are 4 (year),
// 6 (year+month), and 8 (full date); missing fields are wildcards.
// Anything else — wrong length, non-digits, impossible dates — is a
// validation error.
func ParseYmd(id string) (Date, error) {
	switch len(id) {
	case 4, 6, 8:
	default:
		return Date{}, fmt.Errorf("%w: bad date id %q", models.ErrValidation, id)
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return Date{}, fmt.Errorf("%w: bad date id %q", models.ErrValidation, id)
		}
	}

	var d Date
	d.Year = atoi(id[:4])
	if len(id) >= 6 {
		d.Month = atoi(id[4:6])
		if d.Month < 1 || d.Month > 12 {
			return Date{}, fmt.Errorf("%w: bad month in %q", models.ErrValidation, id)
		}
	}
	if len(id) == 8 {
		d.Day = atoi(id[6:8])
		// Round-trip through time.Date to catch impossible days
		// (Feb 30 normalizes to a different month).
		t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
		if t.Day() != d.Day || int(t.Month()) != d.Month {
			return Date{}, fmt.Errorf("%w: bad day in %q", models.ErrValidation, id)
		}
	}
	return d, nil
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
