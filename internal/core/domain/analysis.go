package domain

import (
	"errors"
	"time"
)

var ErrTenderNotFound = errors.New("tender not found")
var ErrNoStoredResults = errors.New("no stored tender results")

// AnalysisResult is the outcome of an AI-assisted review of a single tender.
// Cached is authoritative: true means the text was served from a stored
// result rather than computed during this call, and callers must surface
// the distinction instead of merging it away.
type AnalysisResult struct {
	TenderID   string    `json:"-"`
	Analysis   string    `json:"analysis"`
	Cached     bool      `json:"cached"`
	AnalyzedAt time.Time `json:"analyzed_at,omitempty"`
}
