package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/breachscan/tender-system/internal/api/metrics"
	"github.com/breachscan/tender-system/internal/api/middleware"
	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/filter"
	"github.com/breachscan/tender-system/internal/core/ports"
)

// TenderHandler serves scan triggering, result fetching and analysis.
type TenderHandler struct {
	tenders  ports.TenderService
	analysis ports.AnalysisService
}

func NewTenderHandler(tenders ports.TenderService, analysis ports.AnalysisService) *TenderHandler {
	return &TenderHandler{tenders: tenders, analysis: analysis}
}

// scanRequest mirrors the criteria JSON the client sends to /parse. Dates
// arrive already in wire format; the ranges are re-validated server-side.
type scanRequest struct {
	PageStart          int     `json:"pageStart" validate:"gte=1,lte=10"`
	PageEnd            int     `json:"pageEnd" validate:"gte=1,lte=10"`
	PriceFrom          float64 `json:"priceFrom" validate:"gte=0"`
	PriceTo            float64 `json:"priceTo" validate:"gte=0"`
	TerminationGrounds []int   `json:"terminationGrounds" validate:"max=3,dive,gte=1,lte=3"`
	SortBy             int     `json:"sortBy" validate:"gte=1,lte=4"`
	SortAscending      bool    `json:"sortAscending"`
	SearchString       string  `json:"searchString" validate:"max=512"`
	ContractDateFrom   string  `json:"contractDateFrom"`
	ContractDateTo     string  `json:"contractDateTo"`
	PublishDateFrom    string  `json:"publishDateFrom"`
	PublishDateTo      string  `json:"publishDateTo"`
	UpdateDateFrom     string  `json:"updateDateFrom"`
	UpdateDateTo       string  `json:"updateDateTo"`
	ExecutionDateStart string  `json:"executionDateStart"`
	ExecutionDateEnd   string  `json:"executionDateEnd"`
}

type scanResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
	Records   int    `json:"records"`
}

// TriggerScan runs one collection pass against the external collector and
// stores the result set.
//
// @Summary      Trigger a scan
// @Tags         tenders
// @Router       /parse [post]
func (h *TenderHandler) TriggerScan(c echo.Context) error {
	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	session, err := h.tenders.TriggerScan(c.Request().Context(), middleware.Identity(c), req.criteria())
	if err != nil {
		metrics.ScansTriggeredTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.ScansTriggeredTotal.WithLabelValues("ok").Inc()
	metrics.ScanDuration.Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, scanResponse{
		Success:   true,
		SessionID: session.ID,
		Records:   len(session.Records),
	})
}

// Fetch serves the most recent stored result set sorted per the query
// criteria. It never triggers a collection pass.
//
// @Summary      Fetch tender records
// @Tags         tenders
// @Router       /tenders [get]
func (h *TenderHandler) Fetch(c echo.Context) error {
	criteria := filter.FromValues(c.QueryParams())

	records, err := h.tenders.Fetch(c.Request().Context(), middleware.Identity(c), criteria)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

// Analyze returns the AI analysis for one tender, flagged with whether it
// was replayed from a stored result.
//
// @Summary      Analyze a tender
// @Tags         tenders
// @Router       /tenders/{id}/analyze [post]
func (h *TenderHandler) Analyze(c echo.Context) error {
	tenderID := c.Param("id")
	if tenderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tender id is required")
	}

	result, err := h.analysis.Analyze(c.Request().Context(), middleware.Identity(c), tenderID)
	if err != nil {
		return err
	}

	if result.Cached {
		metrics.AnalysesTotal.WithLabelValues("cache").Inc()
	} else {
		metrics.AnalysesTotal.WithLabelValues("fresh").Inc()
	}
	return c.JSON(http.StatusOK, result)
}

func (r scanRequest) criteria() filter.Criteria {
	return filter.Criteria{
		PageStart:          r.PageStart,
		PageEnd:            r.PageEnd,
		PriceFrom:          r.PriceFrom,
		PriceTo:            r.PriceTo,
		TerminationGrounds: r.TerminationGrounds,
		SortBy:             domain.SortKey(r.SortBy),
		SortAscending:      r.SortAscending,
		SearchString:       r.SearchString,
		ContractDateFrom:   r.ContractDateFrom,
		ContractDateTo:     r.ContractDateTo,
		PublishDateFrom:    r.PublishDateFrom,
		PublishDateTo:      r.PublishDateTo,
		UpdateDateFrom:     r.UpdateDateFrom,
		UpdateDateTo:       r.UpdateDateTo,
		ExecutionDateStart: r.ExecutionDateStart,
		ExecutionDateEnd:   r.ExecutionDateEnd,
	}
}
