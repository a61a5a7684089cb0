package client

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breachscan/tender-system/internal/core/domain"
)

func loggedInAnalysis(t *testing.T, f *fakeServer) *AnalysisClient {
	t.Helper()
	f.handle("GET /me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, identityOf("alice", domain.RoleUser))
	})
	s := newTestSession(t, f)
	require.True(t, s.Refresh(context.Background()))
	return NewAnalysisClient(s.api, s)
}

func TestAnalysisClient_Analyze(t *testing.T) {
	f := newFakeServer(t)
	f.handle("POST /tenders/t1/analyze", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"analysis": "breached", "cached": true})
	})

	ac := loggedInAnalysis(t, f)
	res, err := ac.Analyze(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", res.TenderID)
	assert.Equal(t, "breached", res.Analysis)
	assert.True(t, res.Cached, "the cached flag must survive to the caller")
}

func TestAnalysisClient_InFlightReuse(t *testing.T) {
	release := make(chan struct{})
	f := newFakeServer(t)
	f.handle("POST /tenders/t1/analyze", func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(w, http.StatusOK, map[string]any{"analysis": "breached", "cached": false})
	})

	ac := loggedInAnalysis(t, f)

	const callers = 4
	var wg sync.WaitGroup
	results := make([]domain.AnalysisResult, callers)
	errs := make([]error, callers)
	started := make(chan struct{}, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			results[i], errs[i] = ac.Analyze(context.Background(), "t1")
		}(i)
	}
	for i := 0; i < callers; i++ {
		<-started
	}
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "breached", results[i].Analysis)
	}
	assert.LessOrEqual(t, f.callCount("POST /tenders/t1/analyze"), 2,
		"concurrent calls for one tender must collapse onto an in-flight request")
}

func TestAnalysisClient_DistinctTendersNotShared(t *testing.T) {
	f := newFakeServer(t)
	f.handle("POST /tenders/t1/analyze", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"analysis": "one", "cached": false})
	})
	f.handle("POST /tenders/t2/analyze", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"analysis": "two", "cached": false})
	})

	ac := loggedInAnalysis(t, f)

	res1, err := ac.Analyze(context.Background(), "t1")
	require.NoError(t, err)
	res2, err := ac.Analyze(context.Background(), "t2")
	require.NoError(t, err)
	assert.Equal(t, "one", res1.Analysis)
	assert.Equal(t, "two", res2.Analysis)
}

func TestAnalysisClient_Unauthenticated(t *testing.T) {
	f := newFakeServer(t)
	s := newTestSession(t, f)
	ac := NewAnalysisClient(s.api, s)

	_, err := ac.Analyze(context.Background(), "t1")
	require.Error(t, err)
	assert.IsType(t, &PermissionError{}, err)
	assert.Equal(t, 0, f.callCount("POST /tenders/t1/analyze"))
}
