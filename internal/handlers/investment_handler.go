package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/errors"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/services"
)

// InvestmentHandler handles investment, withdrawal and holdings requests.
type InvestmentHandler struct {
	service services.LedgerService
}

// NewInvestmentHandler creates a new InvestmentHandler instance.
func NewInvestmentHandler(service services.LedgerService) *InvestmentHandler {
	return &InvestmentHandler{
		service: service,
	}
}

// InvestRequest is the body of POST /api/v1/properties/:id/investments.
type InvestRequest struct {
	Amount string `json:"amount" binding:"required,numeric"`
}

// InvestmentResponse wraps a single investment or refund record.
type InvestmentResponse struct {
	Investment models.Investment `json:"investment"`
}

// InvestmentsResponse is the investment history of a property.
type InvestmentsResponse struct {
	Investments []models.Investment `json:"investments"`
	Count       int                 `json:"count"`
}

// WithdrawResponse reports an escrow payout.
type WithdrawResponse struct {
	Amount     models.Amount `json:"amount"`
	PropertyID int64         `json:"property_id"`
}

// HoldingsResponse reports an investor's tokens in one property.
type HoldingsResponse struct {
	Investor   models.Account `json:"investor"`
	PropertyID int64          `json:"property_id"`
	Tokens     int64          `json:"tokens"`
}

// PortfolioResponse lists an investor's non-zero holdings.
type PortfolioResponse struct {
	Investor models.Account   `json:"investor"`
	Holdings []models.Holding `json:"holdings"`
	Count    int              `json:"count"`
}

// Invest handles POST /api/v1/properties/:id/investments.
// The calling account is the investor.
func (h *InvestmentHandler) Invest(c *gin.Context) {
	investor, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := propertyID(c)
	if !ok {
		return
	}

	var req InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Bind(c, err)
		return
	}
	amount, err := models.ParseAmount(req.Amount)
	if err != nil {
		apierrors.BadRequest(c, err.Error(), nil)
		return
	}

	investment, err := h.service.Invest(c.Request.Context(), id, investor, amount)
	if err != nil {
		apierrors.Ledger(c, err)
		return
	}

	c.JSON(http.StatusCreated, InvestmentResponse{Investment: investment})
}

// List handles GET /api/v1/properties/:id/investments.
func (h *InvestmentHandler) List(c *gin.Context) {
	id, ok := propertyID(c)
	if !ok {
		return
	}

	investments, err := h.service.ListInvestments(id)
	if err != nil {
		apierrors.Ledger(c, err)
		return
	}

	c.JSON(http.StatusOK, InvestmentsResponse{
		Investments: investments,
		Count:       len(investments),
	})
}

// Withdraw handles POST /api/v1/properties/:id/withdraw.
func (h *InvestmentHandler) Withdraw(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := propertyID(c)
	if !ok {
		return
	}

	amount, err := h.service.WithdrawPropertyFunds(c.Request.Context(), id, caller)
	if err != nil {
		apierrors.Ledger(c, err)
		return
	}

	c.JSON(http.StatusOK, WithdrawResponse{Amount: amount, PropertyID: id})
}

// Refund handles POST /api/v1/properties/:id/refund.
func (h *InvestmentHandler) Refund(c *gin.Context) {
	investor, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := propertyID(c)
	if !ok {
		return
	}

	refund, err := h.service.ClaimRefund(c.Request.Context(), id, investor)
	if err != nil {
		apierrors.Ledger(c, err)
		return
	}

	c.JSON(http.StatusOK, InvestmentResponse{Investment: refund})
}

// Holdings handles GET /api/v1/investors/:account/holdings/:id.
// Unknown properties and accounts report zero tokens.
func (h *InvestmentHandler) Holdings(c *gin.Context) {
	id, ok := propertyID(c)
	if !ok {
		return
	}
	investor := models.ParseAccount(c.Param("account"))

	c.JSON(http.StatusOK, HoldingsResponse{
		Investor:   investor,
		PropertyID: id,
		Tokens:     h.service.Holdings(investor, id),
	})
}

// Portfolio handles GET /api/v1/investors/:account/portfolio.
func (h *InvestmentHandler) Portfolio(c *gin.Context) {
	investor := models.ParseAccount(c.Param("account"))
	holdings := h.service.Portfolio(investor)

	c.JSON(http.StatusOK, PortfolioResponse{
		Investor: investor,
		Holdings: holdings,
		Count:    len(holdings),
	})
}
