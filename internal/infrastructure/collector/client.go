// Package collector talks to the external tender-scanning service over
// HTTP. The service walks the procurement registry and returns the records
// it finds; everything about how it scrapes is its business, not ours.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/filter"
)

const defaultTimeout = 90 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type collectResponse struct {
	Results []recordPayload `json:"results"`
}

type recordPayload struct {
	Title           string `json:"title"`
	Link            string `json:"link"`
	Customer        string `json:"customer"`
	Price           string `json:"price"`
	ContractNumber  string `json:"contractNumber"`
	PurchaseObjects string `json:"purchaseObjects"`
	ContractDate    string `json:"contractDate"`
	ExecutionDate   string `json:"executionDate"`
	PublishDate     string `json:"publishDate"`
	UpdateDate      string `json:"updateDate"`
}

// Collect performs one collection pass. The criteria must already be
// normalized; they are translated into the registry's query contract and
// posted to the collector, which fans out over the page range itself.
func (c *Client) Collect(ctx context.Context, criteria filter.Criteria) ([]domain.TenderRecord, error) {
	q := registryQuery(criteria.Wire())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/collect?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("collector request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("collector call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("collector returned status %d", resp.StatusCode)
	}

	var payload collectResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("collector response decode: %w", err)
	}

	records := make([]domain.TenderRecord, len(payload.Results))
	for i, p := range payload.Results {
		records[i] = domain.TenderRecord{
			Title:           p.Title,
			Link:            p.Link,
			Customer:        p.Customer,
			Price:           p.Price,
			ContractNumber:  p.ContractNumber,
			PurchaseObjects: p.PurchaseObjects,
			ContractDate:    p.ContractDate,
			ExecutionDate:   p.ExecutionDate,
			PublishDate:     p.PublishDate,
			UpdateDate:      p.UpdateDate,
		}
	}
	return records, nil
}

// registryQuery reproduces the registry's search query contract: page range,
// price bounds, termination-ground flags plus their CSV aggregate, sort name
// and direction, and the four DD.MM.YYYY date ranges.
func registryQuery(c filter.Criteria) url.Values {
	q := url.Values{}
	q.Set("pageStart", strconv.Itoa(c.PageStart))
	q.Set("pageEnd", strconv.Itoa(c.PageEnd))

	csv := make([]string, 0, len(c.TerminationGrounds))
	for _, g := range c.TerminationGrounds {
		q.Set(fmt.Sprintf("groundsTerminationContractsList_%d", g), "on")
		csv = append(csv, strconv.Itoa(g))
	}
	q.Set("groundsTerminationContractsList", strings.Join(csv, ","))

	if c.PriceFrom != 0 {
		q.Set("contractPriceFrom", strconv.FormatFloat(c.PriceFrom, 'f', -1, 64))
	}
	if c.PriceTo != 0 {
		q.Set("contractPriceTo", strconv.FormatFloat(c.PriceTo, 'f', -1, 64))
	}
	if c.SearchString != "" {
		q.Set("searchString", c.SearchString)
	}
	q.Set("sortBy", filter.SortByName(c.SortBy))
	q.Set("sortDirection", strconv.FormatBool(c.SortAscending))

	setIfNotEmpty(q, "contractDateFrom", c.ContractDateFrom)
	setIfNotEmpty(q, "contractDateTo", c.ContractDateTo)
	setIfNotEmpty(q, "publishDateFrom", c.PublishDateFrom)
	setIfNotEmpty(q, "publishDateTo", c.PublishDateTo)
	setIfNotEmpty(q, "updateDateFrom", c.UpdateDateFrom)
	setIfNotEmpty(q, "updateDateTo", c.UpdateDateTo)
	setIfNotEmpty(q, "executionDateStart", c.ExecutionDateStart)
	setIfNotEmpty(q, "executionDateEnd", c.ExecutionDateEnd)
	return q
}

func setIfNotEmpty(q url.Values, key, val string) {
	if val != "" {
		q.Set(key, val)
	}
}
