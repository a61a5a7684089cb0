package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/singleflight"

	"github.com/breachscan/tender-system/internal/core/domain"
)

// AnalysisClient requests breach analyses for individual tenders.
// Concurrent requests for the same tender share a single server call
// instead of racing; every waiter gets the same result.
type AnalysisClient struct {
	api      *Client
	session  *SessionStore
	inflight singleflight.Group
}

func NewAnalysisClient(api *Client, session *SessionStore) *AnalysisClient {
	return &AnalysisClient{api: api, session: session}
}

// Analyze returns the analysis for tenderID, joining an in-flight request
// for the same tender when one exists.
func (a *AnalysisClient) Analyze(ctx context.Context, tenderID string) (domain.AnalysisResult, error) {
	if err := a.session.Can(domain.CapDoAnalysis); err != nil {
		return domain.AnalysisResult{}, &PermissionError{Message: err.Error()}
	}

	v, err, _ := a.inflight.Do(tenderID, func() (interface{}, error) {
		var res domain.AnalysisResult
		path := fmt.Sprintf("/tenders/%s/analyze", url.PathEscape(tenderID))
		if err := a.api.do(ctx, http.MethodPost, path, nil, &res); err != nil {
			return nil, err
		}
		res.TenderID = tenderID
		return res, nil
	})
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	return v.(domain.AnalysisResult), nil
}
