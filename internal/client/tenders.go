package client

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/filter"
)

// TenderClient fetches and pages stored parse results.
//
// Fetch follows a last-request-wins contract: starting a new fetch cancels
// the one in flight, and a response that arrives for a superseded fetch is
// discarded with ErrSuperseded instead of being applied. Under rapid filter
// edits only the newest criteria ever land.
type TenderClient struct {
	api     *Client
	session *SessionStore

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc

	records []domain.TenderRecord
}

func NewTenderClient(api *Client, session *SessionStore) *TenderClient {
	return &TenderClient{api: api, session: session}
}

// TriggerScan asks the server to collect fresh tenders under the given
// criteria, normalized first so a hand-built Criteria never ships an
// inverted range. The capability precheck runs before any network traffic
// so an unprivileged caller fails locally.
func (t *TenderClient) TriggerScan(ctx context.Context, c filter.Criteria) error {
	if err := t.session.Can(domain.CapManageScanning); err != nil {
		return &PermissionError{Message: err.Error()}
	}
	normalized, err := filter.Normalize(c, time.Now())
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return t.api.do(ctx, http.MethodPost, "/parse", normalized, nil)
}

// Fetch retrieves the latest stored result set filtered and sorted by c,
// and caches it locally for paging. A fetch superseded by a newer one
// returns ErrSuperseded.
func (t *TenderClient) Fetch(ctx context.Context, c filter.Criteria) ([]domain.TenderRecord, error) {
	if err := t.session.Can(domain.CapViewTable); err != nil {
		return nil, &PermissionError{Message: err.Error()}
	}
	normalized, err := filter.Normalize(c, time.Now())
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.seq++
	mySeq := t.seq
	t.mu.Unlock()

	var records []domain.TenderRecord
	err = t.api.do(ctx, http.MethodGet, "/tenders?"+normalized.Values().Encode(), nil, &records)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seq != mySeq {
		return nil, ErrSuperseded
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrSuperseded
		}
		return nil, err
	}
	t.records = records
	return records, nil
}

// Page slices the last fetched result set. Page numbers outside the valid
// range are clamped, never rejected.
func (t *TenderClient) Page(pageNumber, pageSize int) []domain.TenderRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.PageRecords(t.records, pageNumber, pageSize)
}
