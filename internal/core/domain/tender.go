package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// TenderRecord is an immutable snapshot of one breached government contract
// as collected from the registry. Date fields carry the registry wire format
// (DD.MM.YYYY); Price is the raw money literal as displayed at the source.
type TenderRecord struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Link            string    `json:"link"`
	Customer        string    `json:"customer"`
	Price           string    `json:"price"`
	ContractNumber  string    `json:"contractNumber"`
	PurchaseObjects string    `json:"purchaseObjects"`
	ContractDate    string    `json:"contractDate"`
	ExecutionDate   string    `json:"executionDate"`
	PublishDate     string    `json:"publishDate"`
	UpdateDate      string    `json:"updateDate"`
	ParsedAt        time.Time `json:"parsedAt"`
	ParsedBy        string    `json:"parsedBy"`
}

// ParseSession is one stored collection pass: the result set produced by a
// single scan together with its provenance. Records are immutable once the
// session is stored; a new scan stores a new session.
type ParseSession struct {
	ID        string         `json:"id"`
	Records   []TenderRecord `json:"records"`
	CreatedBy string         `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
}

// SortKey selects the field tender result sets are ordered by. Values match
// the registry's sortBy parameter.
type SortKey int

const (
	SortByUpdateDate  SortKey = 1
	SortByPublishDate SortKey = 2
	SortByPrice       SortKey = 3
	SortByRelevance   SortKey = 4
)

// ValidSortKey reports whether k is one of the known sort keys.
func ValidSortKey(k SortKey) bool {
	return k >= SortByUpdateDate && k <= SortByRelevance
}

// RelevanceScore is the weighted hit count of the search string across a
// record's text fields: a title match counts double.
func (t TenderRecord) RelevanceScore(search string) int {
	if search == "" {
		return 0
	}
	needle := strings.ToLower(search)
	score := 0
	if strings.Contains(strings.ToLower(t.Title), needle) {
		score += 2
	}
	if strings.Contains(strings.ToLower(t.Customer), needle) {
		score++
	}
	if strings.Contains(strings.ToLower(t.PurchaseObjects), needle) {
		score++
	}
	return score
}

// SortRecords orders records in place by the given key. Relevance is scored
// against search and is descending by default, so ascending=false yields the
// best matches first, matching the date and price keys.
func SortRecords(records []TenderRecord, key SortKey, ascending bool, search string) {
	sort.SliceStable(records, func(i, j int) bool {
		// Swapping operands instead of negating keeps ties non-less,
		// so stable sort preserves input order in both directions.
		if !ascending {
			i, j = j, i
		}
		switch key {
		case SortByPublishDate:
			return parseWireDate(records[i].PublishDate).Before(parseWireDate(records[j].PublishDate))
		case SortByPrice:
			return ParsePrice(records[i].Price) < ParsePrice(records[j].Price)
		case SortByRelevance:
			return records[i].RelevanceScore(search) < records[j].RelevanceScore(search)
		default:
			return parseWireDate(records[i].UpdateDate).Before(parseWireDate(records[j].UpdateDate))
		}
	})
}

// PageRecords returns the pageNumber-th slice of records with pageSize
// entries. pageNumber is clamped into the valid range rather than rejected,
// so a stale page selection after a shrinking fetch still renders.
func PageRecords(records []TenderRecord, pageNumber, pageSize int) []TenderRecord {
	if len(records) == 0 || pageSize <= 0 {
		return nil
	}
	lastPage := (len(records) + pageSize - 1) / pageSize
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageNumber > lastPage {
		pageNumber = lastPage
	}
	start := (pageNumber - 1) * pageSize
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// ParsePrice extracts the numeric value from a registry money literal such
// as "1 234 567,89 ₽". Unparseable literals compare as zero.
func ParsePrice(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		case r == '.':
			b.WriteRune('.')
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseWireDate(s string) time.Time {
	t, err := time.Parse("02.01.2006", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
