// Package filter holds the tender search criteria and the deterministic
// repair rules applied to them before they are sent anywhere. This is the
// only place date and number coercion happens; no other package re-derives
// these invariants.
package filter

import (
	"errors"
	"fmt"

	"github.com/breachscan/tender-system/internal/core/domain"
)

const (
	PageMin = 1
	PageMax = 10

	// Termination-ground codes accepted by the registry.
	GroundMin = 1
	GroundMax = 3
)

var ErrDateInFuture = errors.New("date cannot be in the future")
var ErrMalformedDate = errors.New("date must be formatted as YYYY-MM-DD")

// Criteria is the full set of tender search filters. Date fields hold ISO
// dates (YYYY-MM-DD) while the criteria are being edited; Wire converts them
// to the registry format on the way out. Latest requests previously stored
// results instead of a new collection pass.
type Criteria struct {
	PageStart          int            `json:"pageStart"`
	PageEnd            int            `json:"pageEnd"`
	PriceFrom          float64        `json:"priceFrom"`
	PriceTo            float64        `json:"priceTo"`
	TerminationGrounds []int          `json:"terminationGrounds"`
	SortBy             domain.SortKey `json:"sortBy"`
	SortAscending      bool           `json:"sortAscending"`
	SearchString       string         `json:"searchString"`
	ContractDateFrom   string         `json:"contractDateFrom"`
	ContractDateTo     string         `json:"contractDateTo"`
	PublishDateFrom    string         `json:"publishDateFrom"`
	PublishDateTo      string         `json:"publishDateTo"`
	UpdateDateFrom     string         `json:"updateDateFrom"`
	UpdateDateTo       string         `json:"updateDateTo"`
	ExecutionDateStart string         `json:"executionDateStart"`
	ExecutionDateEnd   string         `json:"executionDateEnd"`
	Latest             bool           `json:"latest,omitempty"`
}

// Default returns criteria with every field at its serialization default.
func Default() Criteria {
	return Criteria{
		PageStart:          PageMin,
		PageEnd:            PageMin,
		SortBy:             domain.SortByUpdateDate,
		TerminationGrounds: []int{},
	}
}

// dateRanges pairs every from-field with its to-field. Each range is
// normalized independently.
type dateRange struct {
	from, to *string
}

func (c *Criteria) dateRanges() []dateRange {
	return []dateRange{
		{&c.ContractDateFrom, &c.ContractDateTo},
		{&c.PublishDateFrom, &c.PublishDateTo},
		{&c.UpdateDateFrom, &c.UpdateDateTo},
		{&c.ExecutionDateStart, &c.ExecutionDateEnd},
	}
}

func (c Criteria) String() string {
	return fmt.Sprintf("pages %d-%d, price %.0f-%.0f, sort %d, search %q, latest %v",
		c.PageStart, c.PageEnd, c.PriceFrom, c.PriceTo, c.SortBy, c.SearchString, c.Latest)
}
