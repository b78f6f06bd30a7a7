package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/haulops-billing/internal/http/middleware"
	"github.com/nurpe/haulops-billing/internal/job"
	"github.com/nurpe/haulops-billing/internal/model"
	"github.com/nurpe/haulops-billing/internal/service"
)

type Handler struct {
	quotes  *service.QuoteService
	jobs    *service.JobService
	reports *service.ReportService
	log     zerolog.Logger
}

func NewHandler(quotes *service.QuoteService, jobs *service.JobService, reports *service.ReportService, log zerolog.Logger) *Handler {
	return &Handler{quotes: quotes, jobs: jobs, reports: reports, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/quotes", h.createQuote)
	protected.GET("/jobs/:id", h.getJob)
	protected.GET("/jobs/:id/quote", h.getJobQuote)
	protected.PATCH("/jobs/:id", h.patchJob)
	protected.POST("/jobs/:id/status", h.advanceStatus)
	protected.GET("/jobs/:id/status/next", h.nextStatus)
	protected.GET("/jobs/:id/status/events", h.statusEvents)
	protected.POST("/reports/customer", h.customerReport)
	protected.POST("/reports/subcontractor", h.subcontractorReport)
}

type quoteRequest struct {
	CustomerID      string      `json:"customer_id"`
	SubcontractorID string      `json:"subcontractor_id"`
	MaterialID      string      `json:"material_id" binding:"required"`
	FromSiteID      string      `json:"from_site_id"`
	ToSiteID        string      `json:"to_site_id"`
	Unit            string      `json:"unit" binding:"required"`
	Quantity        json.Number `json:"quantity" binding:"required"`
	WaitHours       json.Number `json:"wait_hours"`
	IsNight         bool        `json:"is_night"`
	AsOf            string      `json:"as_of"`
}

func (h *Handler) createQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	partyType := model.PartyCustomer
	rawParty := req.CustomerID
	if req.SubcontractorID != "" {
		if req.CustomerID != "" {
			badRequest(c, "provide customer_id or subcontractor_id, not both")
			return
		}
		partyType = model.PartySubcontractor
		rawParty = req.SubcontractorID
	}
	partyID, err := uuid.Parse(strings.TrimSpace(rawParty))
	if err != nil {
		badRequest(c, "invalid party id")
		return
	}

	materialID, err := uuid.Parse(strings.TrimSpace(req.MaterialID))
	if err != nil {
		badRequest(c, "invalid material_id")
		return
	}

	unit, ok := model.ParseBillingUnit(req.Unit)
	if !ok {
		badRequest(c, "invalid unit")
		return
	}

	quantity, err := parseAmount(req.Quantity)
	if err != nil {
		badRequest(c, "invalid quantity")
		return
	}
	waitHours := decimal.Zero
	if req.WaitHours != "" {
		if waitHours, err = parseAmount(req.WaitHours); err != nil {
			badRequest(c, "invalid wait_hours")
			return
		}
	}

	var asOf time.Time
	if req.AsOf != "" {
		if asOf, err = parseDate(req.AsOf); err != nil {
			badRequest(c, "invalid as_of")
			return
		}
	}

	fromSiteID, err := parseOptionalUUID(req.FromSiteID)
	if err != nil {
		badRequest(c, "invalid from_site_id")
		return
	}
	toSiteID, err := parseOptionalUUID(req.ToSiteID)
	if err != nil {
		badRequest(c, "invalid to_site_id")
		return
	}

	quote, err := h.quotes.Quote(c.Request.Context(), service.QuoteInput{
		PartyType:  partyType,
		PartyID:    partyID,
		MaterialID: materialID,
		FromSiteID: fromSiteID,
		ToSiteID:   toSiteID,
		Unit:       unit,
		Quantity:   quantity,
		WaitHours:  waitHours,
		IsNight:    req.IsNight,
		AsOf:       asOf,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteResponse(quote))
}

func (h *Handler) getJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid job id")
		return
	}
	j, err := h.jobs.GetJob(c.Request.Context(), jobID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobResponse(j))
}

func (h *Handler) getJobQuote(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid job id")
		return
	}

	party := model.PartyCustomer
	switch strings.ToLower(c.DefaultQuery("party", "customer")) {
	case "customer":
	case "subcontractor":
		party = model.PartySubcontractor
	default:
		badRequest(c, "invalid party")
		return
	}

	quote, err := h.quotes.QuoteJob(c.Request.Context(), jobID, party)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteResponse(quote))
}

// patchJobRequest is a partial update. JSON null and an absent field are
// indistinguishable to the decoder, so unassigning and clearing the
// override go through explicit booleans.
type patchJobRequest struct {
	Status                   *string      `json:"status"`
	TruckID                  *string      `json:"truck_id"`
	DriverID                 *string      `json:"driver_id"`
	SubcontractorID          *string      `json:"subcontractor_id"`
	SubcontractorBillingUnit *string      `json:"subcontractor_billing_unit"`
	Unassign                 bool         `json:"unassign"`
	ManualOverrideTotal      *json.Number `json:"manual_override_total"`
	ManualOverrideReason     *string      `json:"manual_override_reason"`
	ClearOverride            bool         `json:"clear_override"`
	Lat                      *float64     `json:"lat"`
	Lon                      *float64     `json:"lon"`
}

func (h *Handler) patchJob(c *gin.Context) {
	principal, ok := middlewarePrincipal(c)
	if !ok {
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid job id")
		return
	}

	var req patchJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	assignment, err := buildAssignment(&req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	input := service.PatchJobInput{
		Assignment: assignment,
		Lat:        req.Lat,
		Lon:        req.Lon,
		Principal:  principal,
	}

	if req.ClearOverride {
		input.SetOverride = true
	} else if req.ManualOverrideTotal != nil {
		total, err := parseAmount(*req.ManualOverrideTotal)
		if err != nil {
			badRequest(c, "invalid manual_override_total")
			return
		}
		input.SetOverride = true
		input.OverrideTotal = &total
		input.OverrideReason = req.ManualOverrideReason
	}

	if req.Status != nil {
		status, ok := model.ParseJobStatus(*req.Status)
		if !ok {
			badRequest(c, "invalid status")
			return
		}
		input.Status = &status
	}

	j, err := h.jobs.PatchJob(c.Request.Context(), jobID, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobResponse(j))
}

type advanceStatusRequest struct {
	Target string   `json:"target"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
}

func (h *Handler) advanceStatus(c *gin.Context) {
	principal, ok := middlewarePrincipal(c)
	if !ok {
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid job id")
		return
	}

	// Body is optional: an empty request advances to the next status.
	var req advanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return
	}

	var target model.JobStatus
	if req.Target == "" {
		next, hasNext, err := h.jobs.NextAction(c.Request.Context(), jobID)
		if err != nil {
			h.handleError(c, err)
			return
		}
		if !hasNext {
			h.handleError(c, service.ErrIllegalTransition)
			return
		}
		target = next
	} else {
		parsed, ok := model.ParseJobStatus(req.Target)
		if !ok {
			badRequest(c, "invalid target status")
			return
		}
		target = parsed
	}

	j, err := h.jobs.AdvanceStatus(c.Request.Context(), jobID, target, req.Lat, req.Lon, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobResponse(j))
}

func (h *Handler) nextStatus(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid job id")
		return
	}

	next, hasNext, err := h.jobs.NextAction(c.Request.Context(), jobID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if !hasNext {
		c.JSON(http.StatusOK, gin.H{"next": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"next": next})
}

func (h *Handler) statusEvents(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid job id")
		return
	}

	events, err := h.jobs.StatusEvents(c.Request.Context(), jobID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	items := make([]gin.H, 0, len(events))
	for _, event := range events {
		items = append(items, gin.H{
			"from_status": event.FromStatus,
			"to_status":   event.ToStatus,
			"lat":         event.Lat,
			"lon":         event.Lon,
			"actor_id":    event.ActorID,
			"occurred_at": event.OccurredAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": items})
}

type reportRequest struct {
	PartyID     string `json:"party_id" binding:"required"`
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
	Format      string `json:"format"`
}

func (h *Handler) customerReport(c *gin.Context) {
	h.generateReport(c, model.PartyCustomer)
}

func (h *Handler) subcontractorReport(c *gin.Context) {
	h.generateReport(c, model.PartySubcontractor)
}

func (h *Handler) generateReport(c *gin.Context, party model.PartyType) {
	principal, ok := middlewarePrincipal(c)
	if !ok {
		return
	}

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	partyID, err := uuid.Parse(strings.TrimSpace(req.PartyID))
	if err != nil {
		badRequest(c, "invalid party_id")
		return
	}
	start, err := parseDate(req.PeriodStart)
	if err != nil {
		badRequest(c, "invalid period_start")
		return
	}
	end, err := parseDate(req.PeriodEnd)
	if err != nil {
		badRequest(c, "invalid period_end")
		return
	}

	result, err := h.reports.Generate(c.Request.Context(), service.GenerateReportInput{
		Party:       party,
		PartyID:     partyID,
		PeriodStart: start,
		PeriodEnd:   end,
		Format:      service.ReportFormat(strings.ToLower(strings.TrimSpace(req.Format))),
		Principal:   principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"code": "PERMISSION_DENIED", "error": err.Error()})
	case errors.Is(err, service.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_QUANTITY", "error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_INPUT", "error": err.Error()})
	case errors.Is(err, service.ErrNoRate):
		c.JSON(http.StatusNotFound, gin.H{"code": "NO_RATE", "error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": err.Error()})
	case errors.Is(err, service.ErrAssignmentConflict):
		c.JSON(http.StatusConflict, gin.H{"code": "ASSIGNMENT_CONFLICT", "error": err.Error()})
	case errors.Is(err, service.ErrUnassigned):
		c.JSON(http.StatusConflict, gin.H{"code": "UNASSIGNED", "error": err.Error()})
	case errors.Is(err, service.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"code": "ILLEGAL_TRANSITION", "error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL", "error": "internal error"})
	}
}

// buildAssignment turns patch fields into an assignment value, or nil when
// the patch does not touch assignment.
func buildAssignment(req *patchJobRequest) (job.Assignment, error) {
	hasFleet := req.TruckID != nil || req.DriverID != nil
	hasSub := req.SubcontractorID != nil

	switch {
	case req.Unassign:
		if hasFleet || hasSub {
			return nil, service.ErrAssignmentConflict
		}
		return job.Unassigned{}, nil
	case hasFleet && hasSub:
		return nil, service.ErrAssignmentConflict
	case hasSub:
		subID, err := uuid.Parse(strings.TrimSpace(*req.SubcontractorID))
		if err != nil {
			return nil, service.ErrInvalidInput
		}
		var unit *model.BillingUnit
		if req.SubcontractorBillingUnit != nil {
			parsed, ok := model.ParseBillingUnit(*req.SubcontractorBillingUnit)
			if !ok {
				return nil, service.ErrInvalidInput
			}
			unit = &parsed
		}
		return job.SubcontractorAssignment{SubcontractorID: subID, BillingUnit: unit}, nil
	case hasFleet:
		if req.TruckID == nil || req.DriverID == nil {
			return nil, service.ErrAssignmentConflict
		}
		truckID, err := uuid.Parse(strings.TrimSpace(*req.TruckID))
		if err != nil {
			return nil, service.ErrInvalidInput
		}
		driverID, err := uuid.Parse(strings.TrimSpace(*req.DriverID))
		if err != nil {
			return nil, service.ErrInvalidInput
		}
		return job.FleetAssignment{TruckID: truckID, DriverID: driverID}, nil
	default:
		return nil, nil
	}
}

func quoteResponse(quote *model.PriceQuote) gin.H {
	return gin.H{
		"total":                 quote.Total,
		"base_amount":           quote.BaseAmount,
		"min_charge_adjustment": quote.MinChargeAdjustment,
		"wait_fee":              quote.WaitFee,
		"night_surcharge":       quote.NightSurcharge,
		"overridden":            quote.Overridden,
		"details": gin.H{
			"unit":                 quote.Unit,
			"unit_price":           quote.UnitPrice,
			"quantity":             quote.Quantity,
			"price_list_id":        quote.PriceListID,
			"is_customer_specific": quote.PartyType == model.PartyCustomer,
			"is_material_specific": quote.IsMaterialSpecific,
			"is_route_specific":    quote.IsRouteSpecific,
		},
	}
}

func jobResponse(j *model.Job) gin.H {
	return gin.H{
		"id":                         j.ID,
		"customer_id":                j.CustomerID,
		"material_id":                j.MaterialID,
		"from_site_id":               j.FromSiteID,
		"to_site_id":                 j.ToSiteID,
		"scheduled_date":             j.ScheduledDate.Format("2006-01-02"),
		"planned_qty":                j.PlannedQty,
		"actual_qty":                 j.ActualQty,
		"unit":                       j.Unit,
		"truck_id":                   j.TruckID,
		"driver_id":                  j.DriverID,
		"subcontractor_id":           j.SubcontractorID,
		"is_subcontractor":           j.IsSubcontractor,
		"subcontractor_billing_unit": j.SubcontractorBillingUnit,
		"status":                     j.Status,
		"manual_override_total":      j.ManualOverrideTotal,
		"manual_override_reason":     j.ManualOverrideReason,
		"wait_hours":                 j.WaitHours,
		"is_night":                   j.IsNight,
	}
}

func middlewarePrincipal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return model.Principal{}, false
	}
	return principal, true
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_INPUT", "error": message})
}

func parseOptionalUUID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseAmount(raw json.Number) (decimal.Decimal, error) {
	return decimal.NewFromString(raw.String())
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
