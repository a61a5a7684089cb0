package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/breachscan/tender-system/internal/api/metrics"
	"github.com/breachscan/tender-system/internal/api/middleware"
	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/ports"
)

// AdminHandler serves the role-elevation workflow endpoints.
type AdminHandler struct {
	elevation ports.ElevationService
}

func NewAdminHandler(elevation ports.ElevationService) *AdminHandler {
	return &AdminHandler{elevation: elevation}
}

// Submit files a role-elevation request for the calling user.
//
// @Summary      Submit admin request
// @Tags         admin
// @Router       /admin-request [post]
func (h *AdminHandler) Submit(c echo.Context) error {
	req, err := h.elevation.Submit(c.Request().Context(), middleware.Identity(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, req)
}

// List returns every request in the ledger, any status. Owner only.
//
// @Summary      List admin requests
// @Tags         admin
// @Router       /admin-requests [get]
func (h *AdminHandler) List(c echo.Context) error {
	requests, err := h.elevation.List(c.Request().Context(), middleware.Identity(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requests)
}

// Decide approves or rejects the named user's pending request. Owner only.
//
// @Summary      Decide admin request
// @Tags         admin
// @Router       /admin-requests/{action}/{username} [post]
func (h *AdminHandler) Decide(c echo.Context) error {
	action := c.Param("action")
	username := c.Param("username")
	if username == "" || (action != "approve" && action != "reject") {
		return echo.NewHTTPError(http.StatusBadRequest, "action must be approve or reject")
	}

	req, err := h.elevation.Decide(c.Request().Context(), middleware.Identity(c), username, action == "approve")
	if err != nil {
		return err
	}

	if req.Status == domain.RequestApproved {
		metrics.AdminDecisionsTotal.WithLabelValues("approved").Inc()
	} else {
		metrics.AdminDecisionsTotal.WithLabelValues("rejected").Inc()
	}
	return c.JSON(http.StatusOK, req)
}
