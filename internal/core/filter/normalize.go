package filter

import (
	"time"

	"github.com/breachscan/tender-system/internal/core/domain"
)

// The Set* methods apply one field edit with the repair rules attached to
// that field: the edited bound always wins, and the paired bound snaps to
// match rather than ever producing an inverted range.

// SetPageStart raises pageEnd to match when the new start passes it.
// pageStart is never clamped back down to pageEnd.
func (c *Criteria) SetPageStart(v int) {
	c.PageStart = clampPage(v)
	if c.PageEnd < c.PageStart {
		c.PageEnd = c.PageStart
	}
}

// SetPageEnd refuses to drop below pageStart; such an edit snaps to pageStart.
func (c *Criteria) SetPageEnd(v int) {
	c.PageEnd = clampPage(v)
	if c.PageEnd < c.PageStart {
		c.PageEnd = c.PageStart
	}
}

// SetPriceFrom drags a non-zero priceTo up with it. priceTo == 0 means
// "no upper bound" and is left alone.
func (c *Criteria) SetPriceFrom(v float64) {
	if v < 0 {
		v = 0
	}
	c.PriceFrom = v
	if c.PriceTo != 0 && c.PriceTo < c.PriceFrom {
		c.PriceTo = c.PriceFrom
	}
}

// SetPriceTo snaps back to priceFrom when lowered beneath it.
func (c *Criteria) SetPriceTo(v float64) {
	if v < 0 {
		v = 0
	}
	c.PriceTo = v
	if c.PriceTo != 0 && c.PriceTo < c.PriceFrom {
		c.PriceTo = c.PriceFrom
	}
}

// DateField names one editable date bound.
type DateField int

const (
	ContractDateFrom DateField = iota
	ContractDateTo
	PublishDateFrom
	PublishDateTo
	UpdateDateFrom
	UpdateDateTo
	ExecutionDateStart
	ExecutionDateEnd
)

// DateFieldFromName maps the JSON field name to its DateField. Unknown
// names fall through to ExecutionDateEnd via datePair's default, so callers
// should validate names first when that matters.
func DateFieldFromName(name string) DateField {
	switch name {
	case "contractDateFrom":
		return ContractDateFrom
	case "contractDateTo":
		return ContractDateTo
	case "publishDateFrom":
		return PublishDateFrom
	case "publishDateTo":
		return PublishDateTo
	case "updateDateFrom":
		return UpdateDateFrom
	case "updateDateTo":
		return UpdateDateTo
	case "executionDateStart":
		return ExecutionDateStart
	default:
		return ExecutionDateEnd
	}
}

// SetDate applies an ISO date edit to the named bound. Dates after today are
// rejected with an explicit error, never silently truncated. When the edit
// would invert the pair, the other bound snaps to the edited value. An empty
// value clears the bound.
func (c *Criteria) SetDate(field DateField, iso string, today time.Time) error {
	if iso != "" {
		d, err := time.Parse("2006-01-02", iso)
		if err != nil {
			return ErrMalformedDate
		}
		if d.After(endOfDay(today)) {
			return ErrDateInFuture
		}
	}

	from, to := c.datePair(field)
	isStart := field == ContractDateFrom || field == PublishDateFrom ||
		field == UpdateDateFrom || field == ExecutionDateStart

	if isStart {
		*from = iso
		if iso != "" && *to != "" && *to < iso {
			*to = iso
		}
		return nil
	}
	*to = iso
	if iso != "" && *from != "" && iso < *from {
		// Edited end bound falls before the start: snap it up.
		*to = *from
	}
	return nil
}

func (c *Criteria) datePair(field DateField) (from, to *string) {
	switch field {
	case ContractDateFrom, ContractDateTo:
		return &c.ContractDateFrom, &c.ContractDateTo
	case PublishDateFrom, PublishDateTo:
		return &c.PublishDateFrom, &c.PublishDateTo
	case UpdateDateFrom, UpdateDateTo:
		return &c.UpdateDateFrom, &c.UpdateDateTo
	default:
		return &c.ExecutionDateStart, &c.ExecutionDateEnd
	}
}

// Normalize repairs the whole criteria into a form satisfying every range
// invariant and fills serialization defaults. It is a pure fixed point:
// normalizing already-normalized criteria changes nothing. Future dates are
// the one unrecoverable input and return an error.
func Normalize(c Criteria, today time.Time) (Criteria, error) {
	c.PageStart = clampPage(c.PageStart)
	c.PageEnd = clampPage(c.PageEnd)
	if c.PageEnd < c.PageStart {
		c.PageEnd = c.PageStart
	}

	if c.PriceFrom < 0 {
		c.PriceFrom = 0
	}
	if c.PriceTo < 0 {
		c.PriceTo = 0
	}
	if c.PriceTo != 0 && c.PriceTo < c.PriceFrom {
		c.PriceTo = c.PriceFrom
	}

	if !domain.ValidSortKey(c.SortBy) {
		c.SortBy = domain.SortByUpdateDate
	}

	grounds := make([]int, 0, len(c.TerminationGrounds))
	for _, g := range c.TerminationGrounds {
		if g >= GroundMin && g <= GroundMax && !containsInt(grounds, g) {
			grounds = append(grounds, g)
		}
	}
	c.TerminationGrounds = grounds

	limit := endOfDay(today)
	for _, r := range c.dateRanges() {
		fromDate, toDate := time.Time{}, time.Time{}
		for _, bound := range []*string{r.from, r.to} {
			if *bound == "" {
				continue
			}
			d, err := parseAnyDate(*bound)
			if err != nil {
				return c, ErrMalformedDate
			}
			if d.After(limit) {
				return c, ErrDateInFuture
			}
			if bound == r.from {
				fromDate = d
			} else {
				toDate = d
			}
		}
		if !fromDate.IsZero() && !toDate.IsZero() && toDate.Before(fromDate) {
			*r.to = *r.from
		}
	}

	return c, nil
}

func clampPage(v int) int {
	if v < PageMin {
		return PageMin
	}
	if v > PageMax {
		return PageMax
	}
	return v
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// parseAnyDate accepts both the ISO edit format and the registry wire
// format, so criteria can be re-normalized after wire conversion.
func parseAnyDate(s string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, nil
	}
	return time.Parse("02.01.2006", s)
}
