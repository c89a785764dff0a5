package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/errors"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/services"
)

// PlatformHandler serves platform-wide totals and the fee treasury.
type PlatformHandler struct {
	service services.LedgerService
}

// NewPlatformHandler creates a new PlatformHandler instance.
func NewPlatformHandler(service services.LedgerService) *PlatformHandler {
	return &PlatformHandler{
		service: service,
	}
}

// TreasuryWithdrawResponse reports a fee payout.
type TreasuryWithdrawResponse struct {
	Treasury models.Account `json:"treasury"`
	Amount   models.Amount  `json:"amount"`
}

// Summary handles GET /api/v1/platform.
func (h *PlatformHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Summary())
}

// WithdrawTreasury handles POST /api/v1/platform/treasury/withdraw.
func (h *PlatformHandler) WithdrawTreasury(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	amount, err := h.service.WithdrawTreasury(c.Request.Context(), caller)
	if err != nil {
		apierrors.Ledger(c, err)
		return
	}

	c.JSON(http.StatusOK, TreasuryWithdrawResponse{
		Treasury: h.service.Summary().Treasury,
		Amount:   amount,
	})
}
