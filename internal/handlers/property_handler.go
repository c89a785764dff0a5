package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/errors"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/middleware"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/services"
)

// PropertyHandler handles property registry HTTP requests.
type PropertyHandler struct {
	service services.LedgerService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.LedgerService) *PropertyHandler {
	return &PropertyHandler{
		service: service,
	}
}

// CreatePropertyRequest is the body of POST /api/v1/properties.
// Amounts are strings of minor units so they survive JSON number parsing.
type CreatePropertyRequest struct {
	Deadline          *time.Time `json:"deadline"`
	Name              string     `json:"name"`
	Location          string     `json:"location"`
	Description       string     `json:"description"`
	PropertyType      string     `json:"property_type"`
	Owner             string     `json:"owner"`
	TotalValue        string     `json:"total_value" binding:"required,numeric"`
	MinInvestment     string     `json:"min_investment" binding:"required,numeric"`
	TotalTokens       int64      `json:"total_tokens" binding:"required,gt=0"`
	ExpectedReturnBps int64      `json:"expected_return_bps" binding:"gte=0,lte=10000"`
}

// UpdateStatusRequest is the body of PATCH /api/v1/properties/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open funded expired cancelled"`
}

// PropertyResponse wraps a single property.
type PropertyResponse struct {
	Property models.Property `json:"property"`
}

// PropertiesResponse is the response for the property listing.
type PropertiesResponse struct {
	Properties []models.Property `json:"properties"`
	Count      int               `json:"count"`
}

// Create handles POST /api/v1/properties.
func (h *PropertyHandler) Create(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Bind(c, err)
		return
	}

	in, err := req.toInput()
	if err != nil {
		apierrors.BadRequest(c, err.Error(), nil)
		return
	}

	property, err := h.service.CreateProperty(c.Request.Context(), caller, in)
	if err != nil {
		apierrors.Ledger(c, err)
		return
	}

	c.JSON(http.StatusCreated, PropertyResponse{Property: property})
}

// Get handles GET /api/v1/properties/:id.
func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := propertyID(c)
	if !ok {
		return
	}

	property, err := h.service.GetProperty(id)
	if err != nil {
		apierrors.Ledger(c, err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: property})
}

// List handles GET /api/v1/properties. An optional ?status= query filters
// the listing.
func (h *PropertyHandler) List(c *gin.Context) {
	var status models.Status
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseStatus(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid query parameters", map[string]interface{}{
				"status": err.Error(),
			})
			return
		}
		status = parsed
	}

	properties := h.service.ListProperties(status)
	c.JSON(http.StatusOK, PropertiesResponse{
		Properties: properties,
		Count:      len(properties),
	})
}

// UpdateStatus handles PATCH /api/v1/properties/:id/status.
func (h *PropertyHandler) UpdateStatus(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := propertyID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Bind(c, err)
		return
	}

	property, err := h.service.UpdateStatus(c.Request.Context(), caller, id, models.Status(req.Status))
	if err != nil {
		apierrors.Ledger(c, err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: property})
}

// Cancel handles POST /api/v1/properties/:id/cancel.
func (h *PropertyHandler) Cancel(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := propertyID(c)
	if !ok {
		return
	}

	property, err := h.service.CancelProperty(c.Request.Context(), caller, id)
	if err != nil {
		apierrors.Ledger(c, err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: property})
}

func (r CreatePropertyRequest) toInput() (models.PropertyInput, error) {
	totalValue, err := models.ParseAmount(r.TotalValue)
	if err != nil {
		return models.PropertyInput{}, err
	}
	minInvestment, err := models.ParseAmount(r.MinInvestment)
	if err != nil {
		return models.PropertyInput{}, err
	}

	return models.PropertyInput{
		Deadline:          r.Deadline,
		TotalValue:        totalValue,
		MinInvestment:     minInvestment,
		Name:              r.Name,
		Location:          r.Location,
		Description:       r.Description,
		PropertyType:      r.PropertyType,
		Owner:             models.ParseAccount(r.Owner),
		TotalTokens:       r.TotalTokens,
		ExpectedReturnBps: r.ExpectedReturnBps,
	}, nil
}

// requireCaller returns the calling account, or writes a 401 and returns
// false when the request carries none.
func requireCaller(c *gin.Context) (models.Account, bool) {
	caller := middleware.GetAccount(c)
	if caller.IsZero() {
		apierrors.Unauthenticated(c)
		return "", false
	}
	return caller, true
}

// propertyID parses the :id path parameter.
func propertyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		apierrors.BadRequest(c, "Property id must be a positive integer", map[string]interface{}{
			"id": c.Param("id"),
		})
		return 0, false
	}
	return id, true
}
