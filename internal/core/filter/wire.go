package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/breachscan/tender-system/internal/core/domain"
)

// Registry names for the sortBy parameter, indexed by SortKey-1.
var sortByNames = [...]string{"UPDATE_DATE", "PUBLISH_DATE", "PRICE", "RELEVANCE"}

// SortByName returns the registry's string name for a sort key.
func SortByName(k domain.SortKey) string {
	if !domain.ValidSortKey(k) {
		k = domain.SortByUpdateDate
	}
	return sortByNames[k-1]
}

// WireDate converts an ISO date (YYYY-MM-DD) to the registry format
// DD.MM.YYYY. Empty input serializes to the empty string, never to a
// bogus date literal.
func WireDate(iso string) string {
	if iso == "" {
		return ""
	}
	d, err := time.Parse("2006-01-02", iso)
	if err != nil {
		// Already wire format; pass it through unchanged.
		if _, werr := time.Parse("02.01.2006", iso); werr == nil {
			return iso
		}
		return ""
	}
	return d.Format("02.01.2006")
}

// Wire returns a copy of c with every date field converted to the registry
// format. Call Normalize first; Wire does no repair of its own.
func (c Criteria) Wire() Criteria {
	c.ContractDateFrom = WireDate(c.ContractDateFrom)
	c.ContractDateTo = WireDate(c.ContractDateTo)
	c.PublishDateFrom = WireDate(c.PublishDateFrom)
	c.PublishDateTo = WireDate(c.PublishDateTo)
	c.UpdateDateFrom = WireDate(c.UpdateDateFrom)
	c.UpdateDateTo = WireDate(c.UpdateDateTo)
	c.ExecutionDateStart = WireDate(c.ExecutionDateStart)
	c.ExecutionDateEnd = WireDate(c.ExecutionDateEnd)
	return c
}

// Values encodes wire-format criteria as URL query parameters, the shape the
// fetch endpoint accepts. Zero prices and empty dates are omitted.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	v.Set("pageStart", strconv.Itoa(c.PageStart))
	v.Set("pageEnd", strconv.Itoa(c.PageEnd))
	if c.PriceFrom != 0 {
		v.Set("priceFrom", trimFloat(c.PriceFrom))
	}
	if c.PriceTo != 0 {
		v.Set("priceTo", trimFloat(c.PriceTo))
	}
	if len(c.TerminationGrounds) > 0 {
		parts := make([]string, len(c.TerminationGrounds))
		for i, g := range c.TerminationGrounds {
			parts[i] = strconv.Itoa(g)
		}
		v.Set("terminationGrounds", strings.Join(parts, ","))
	}
	v.Set("sortBy", strconv.Itoa(int(c.SortBy)))
	v.Set("sortAscending", strconv.FormatBool(c.SortAscending))
	if c.SearchString != "" {
		v.Set("searchString", c.SearchString)
	}
	setIfNotEmpty(v, "contractDateFrom", c.ContractDateFrom)
	setIfNotEmpty(v, "contractDateTo", c.ContractDateTo)
	setIfNotEmpty(v, "publishDateFrom", c.PublishDateFrom)
	setIfNotEmpty(v, "publishDateTo", c.PublishDateTo)
	setIfNotEmpty(v, "updateDateFrom", c.UpdateDateFrom)
	setIfNotEmpty(v, "updateDateTo", c.UpdateDateTo)
	setIfNotEmpty(v, "executionDateStart", c.ExecutionDateStart)
	setIfNotEmpty(v, "executionDateEnd", c.ExecutionDateEnd)
	v.Set("latest", strconv.FormatBool(c.Latest))
	return v
}

// FromValues decodes query parameters back into criteria. Unparseable
// numbers fall back to the field default; range repair is Normalize's job.
func FromValues(v url.Values) Criteria {
	c := Default()
	c.PageStart = intOr(v.Get("pageStart"), PageMin)
	c.PageEnd = intOr(v.Get("pageEnd"), c.PageStart)
	c.PriceFrom = floatOr(v.Get("priceFrom"), 0)
	c.PriceTo = floatOr(v.Get("priceTo"), 0)
	if raw := v.Get("terminationGrounds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if g, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
				c.TerminationGrounds = append(c.TerminationGrounds, g)
			}
		}
	}
	c.SortBy = domain.SortKey(intOr(v.Get("sortBy"), int(domain.SortByUpdateDate)))
	c.SortAscending = v.Get("sortAscending") == "true"
	c.SearchString = v.Get("searchString")
	c.ContractDateFrom = v.Get("contractDateFrom")
	c.ContractDateTo = v.Get("contractDateTo")
	c.PublishDateFrom = v.Get("publishDateFrom")
	c.PublishDateTo = v.Get("publishDateTo")
	c.UpdateDateFrom = v.Get("updateDateFrom")
	c.UpdateDateTo = v.Get("updateDateTo")
	c.ExecutionDateStart = v.Get("executionDateStart")
	c.ExecutionDateEnd = v.Get("executionDateEnd")
	c.Latest = v.Get("latest") == "true"
	return c
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprintf("%.2f", f)
}

func setIfNotEmpty(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func intOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func floatOr(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
