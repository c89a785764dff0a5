package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	apierrors "github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/errors"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/ledger"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/logger"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/middleware"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOwner    = "0xowner"
	testTreasury = "0xtreasury"
	testInvestor = "0xinvestor"

	oneEther   = "1000000000000000000"
	tenthEther = "100000000000000000"
)

// setupLedgerTestRouter builds the full middleware stack over a fresh
// in-memory ledger.
func setupLedgerTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	l, err := ledger.New(context.Background(), ledger.Options{
		Owner:    testOwner,
		Treasury: testTreasury,
	})
	require.NoError(t, err)

	log := logger.Nop()
	service := services.NewLedgerService(l, log)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Account())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	RegisterLedgerRoutes(router.Group("/api/v1"), service)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, account string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		req.Header.Set(middleware.AccountHeader, account)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[apierrors.ErrorResponse](t, w).Error.Code
}

// listingBody is a 100 ether property split into 1000 tokens with a
// 0.1 ether minimum.
func listingBody() map[string]interface{} {
	return map[string]interface{}{
		"name":           "Canal House",
		"location":       "Amsterdam",
		"description":    "Four storey canal house",
		"property_type":  "residential",
		"total_value":    "100000000000000000000",
		"total_tokens":   1000,
		"min_investment": tenthEther,
	}
}

func createListing(t *testing.T, router *gin.Engine, body map[string]interface{}) models.Property {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/api/v1/properties", testOwner, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[PropertyResponse](t, w).Property
}

// smallListing sells out with a single 1 ether investment.
func smallListing() map[string]interface{} {
	body := listingBody()
	body["total_value"] = oneEther
	body["total_tokens"] = 10
	return body
}

func TestPropertyHandler_Create(t *testing.T) {
	router := setupLedgerTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/properties", "0xOWNER", listingBody())

	assert.Equal(t, http.StatusCreated, w.Code)
	property := decode[PropertyResponse](t, w).Property
	assert.Equal(t, int64(1), property.ID)
	assert.Equal(t, "Canal House", property.Name)
	assert.Equal(t, models.StatusOpen, property.Status)
	assert.Equal(t, models.Account(testOwner), property.Owner)
	assert.Equal(t, tenthEther, property.TokenPrice.String())
	assert.Equal(t, int64(0), property.TokensSold)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestPropertyHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name           string
		account        string
		mutate         func(body map[string]interface{})
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "missing account header",
			account:        "",
			mutate:         func(map[string]interface{}) {},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   apierrors.ErrUnauthenticated,
		},
		{
			name:           "caller is not the platform owner",
			account:        testInvestor,
			mutate:         func(map[string]interface{}) {},
			expectedStatus: http.StatusForbidden,
			expectedCode:   apierrors.ErrUnauthorized,
		},
		{
			name:           "missing total value",
			account:        testOwner,
			mutate:         func(b map[string]interface{}) { delete(b, "total_value") },
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrValidation,
		},
		{
			name:           "fractional minor units",
			account:        testOwner,
			mutate:         func(b map[string]interface{}) { b["total_value"] = "1.5" },
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrBadRequest,
		},
		{
			name:           "empty name",
			account:        testOwner,
			mutate:         func(b map[string]interface{}) { b["name"] = "  " },
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrValidation,
		},
		{
			name:    "token price rounds to zero",
			account: testOwner,
			mutate: func(b map[string]interface{}) {
				b["total_value"] = "5"
				b["total_tokens"] = 10
				b["min_investment"] = "1"
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   apierrors.ErrPricing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupLedgerTestRouter(t)
			body := listingBody()
			tt.mutate(body)

			w := doRequest(t, router, http.MethodPost, "/api/v1/properties", tt.account, body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedCode, errorCode(t, w))
		})
	}
}

func TestPropertyHandler_GetAndList(t *testing.T) {
	router := setupLedgerTestRouter(t)
	first := createListing(t, router, listingBody())
	second := createListing(t, router, listingBody())

	w := doRequest(t, router, http.MethodPost, "/api/v1/properties/2/cancel", testOwner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("get existing", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/properties/1", "", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, first.ID, decode[PropertyResponse](t, w).Property.ID)
	})

	t.Run("get unknown", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/properties/99", "", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apierrors.ErrNotFound, errorCode(t, w))
	})

	t.Run("malformed id", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/properties/abc", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apierrors.ErrBadRequest, errorCode(t, w))
	})

	t.Run("list all", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/properties", "", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode[PropertiesResponse](t, w)
		assert.Equal(t, 2, response.Count)
	})

	t.Run("list by status", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/properties?status=cancelled", "", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode[PropertiesResponse](t, w)
		require.Equal(t, 1, response.Count)
		assert.Equal(t, second.ID, response.Properties[0].ID)
	})

	t.Run("list by unknown status", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/v1/properties?status=pending", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPropertyHandler_UpdateStatus(t *testing.T) {
	router := setupLedgerTestRouter(t)
	createListing(t, router, listingBody())

	w := doRequest(t, router, http.MethodPatch, "/api/v1/properties/1/status", testOwner,
		map[string]string{"status": "funded"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierrors.ErrInvalidTransition, errorCode(t, w))

	w = doRequest(t, router, http.MethodPatch, "/api/v1/properties/1/status", testOwner,
		map[string]string{"status": "sold"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrValidation, errorCode(t, w))

	w = doRequest(t, router, http.MethodPatch, "/api/v1/properties/1/status", testInvestor,
		map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, router, http.MethodPatch, "/api/v1/properties/1/status", testOwner,
		map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusCancelled, decode[PropertyResponse](t, w).Property.Status)
}

func TestInvestmentHandler_Invest(t *testing.T) {
	router := setupLedgerTestRouter(t)
	createListing(t, router, listingBody())

	w := doRequest(t, router, http.MethodPost, "/api/v1/properties/1/investments", testInvestor,
		map[string]string{"amount": oneEther})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	investment := decode[InvestmentResponse](t, w).Investment
	assert.Equal(t, int64(10), investment.Tokens)
	assert.Equal(t, "25000000000000000", investment.Fee.String())
	assert.Equal(t, "975000000000000000", investment.NetAmount.String())
	assert.Equal(t, models.Account(testInvestor), investment.Investor)

	w = doRequest(t, router, http.MethodGet, "/api/v1/investors/0xINVESTOR/holdings/1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, HoldingsResponse{Investor: testInvestor, PropertyID: 1, Tokens: 10}, decode[HoldingsResponse](t, w))

	w = doRequest(t, router, http.MethodGet, "/api/v1/investors/"+testInvestor+"/portfolio", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	portfolio := decode[PortfolioResponse](t, w)
	assert.Equal(t, 1, portfolio.Count)
	assert.Equal(t, []models.Holding{{PropertyID: 1, Tokens: 10}}, portfolio.Holdings)

	w = doRequest(t, router, http.MethodGet, "/api/v1/properties/1/investments", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[InvestmentsResponse](t, w).Count)
}

func TestInvestmentHandler_InvestErrors(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		account        string
		body           interface{}
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "below minimum",
			path:           "/api/v1/properties/1/investments",
			account:        testInvestor,
			body:           map[string]string{"amount": "50000000000000000"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   apierrors.ErrBelowMinimum,
		},
		{
			name:           "more tokens than available",
			path:           "/api/v1/properties/1/investments",
			account:        testInvestor,
			body:           map[string]string{"amount": "101000000000000000000"},
			expectedStatus: http.StatusConflict,
			expectedCode:   apierrors.ErrInsufficientSupply,
		},
		{
			name:           "unknown property",
			path:           "/api/v1/properties/7/investments",
			account:        testInvestor,
			body:           map[string]string{"amount": oneEther},
			expectedStatus: http.StatusNotFound,
			expectedCode:   apierrors.ErrNotFound,
		},
		{
			name:           "missing amount",
			path:           "/api/v1/properties/1/investments",
			account:        testInvestor,
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.ErrValidation,
		},
		{
			name:           "anonymous caller",
			path:           "/api/v1/properties/1/investments",
			account:        "",
			body:           map[string]string{"amount": oneEther},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   apierrors.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupLedgerTestRouter(t)
			createListing(t, router, listingBody())

			w := doRequest(t, router, http.MethodPost, tt.path, tt.account, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedCode, errorCode(t, w))
		})
	}
}

func TestInvestmentHandler_WithdrawAndTreasury(t *testing.T) {
	router := setupLedgerTestRouter(t)
	createListing(t, router, smallListing())

	w := doRequest(t, router, http.MethodPost, "/api/v1/properties/1/withdraw", testOwner, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierrors.ErrNotFunded, errorCode(t, w))

	w = doRequest(t, router, http.MethodPost, "/api/v1/properties/1/investments", testInvestor,
		map[string]string{"amount": oneEther})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/v1/properties/1", "", nil)
	assert.Equal(t, models.StatusFunded, decode[PropertyResponse](t, w).Property.Status)

	w = doRequest(t, router, http.MethodPost, "/api/v1/properties/1/withdraw", testInvestor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/v1/properties/1/withdraw", testOwner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	withdrawn := decode[WithdrawResponse](t, w)
	assert.Equal(t, "975000000000000000", withdrawn.Amount.String())
	assert.Equal(t, int64(1), withdrawn.PropertyID)

	w = doRequest(t, router, http.MethodPost, "/api/v1/properties/1/withdraw", testOwner, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierrors.ErrNothingToWithdraw, errorCode(t, w))

	w = doRequest(t, router, http.MethodGet, "/api/v1/platform", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[services.PlatformSummary](t, w)
	assert.Equal(t, "25000000000000000", summary.TreasuryBalance.String())
	assert.Equal(t, oneEther, summary.TotalInvestmentVolume.String())
	assert.Equal(t, int64(1), summary.PropertyCount)
	assert.Equal(t, ledger.DefaultFeeBps, summary.FeeBps)

	w = doRequest(t, router, http.MethodPost, "/api/v1/platform/treasury/withdraw", testInvestor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/v1/platform/treasury/withdraw", testTreasury, nil)
	require.Equal(t, http.StatusOK, w.Code)
	fees := decode[TreasuryWithdrawResponse](t, w)
	assert.Equal(t, models.Account(testTreasury), fees.Treasury)
	assert.Equal(t, "25000000000000000", fees.Amount.String())

	w = doRequest(t, router, http.MethodPost, "/api/v1/platform/treasury/withdraw", testTreasury, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierrors.ErrNothingToWithdraw, errorCode(t, w))
}

func TestInvestmentHandler_Refund(t *testing.T) {
	router := setupLedgerTestRouter(t)
	createListing(t, router, listingBody())

	w := doRequest(t, router, http.MethodPost, "/api/v1/properties/1/investments", testInvestor,
		map[string]string{"amount": oneEther})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/v1/properties/1/refund", testInvestor, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierrors.ErrNotRefundable, errorCode(t, w))

	w = doRequest(t, router, http.MethodPost, "/api/v1/properties/1/cancel", testOwner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/v1/properties/1/investments", testInvestor,
		map[string]string{"amount": oneEther})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierrors.ErrClosedForInvestment, errorCode(t, w))

	w = doRequest(t, router, http.MethodPost, "/api/v1/properties/1/refund", testInvestor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	refund := decode[InvestmentResponse](t, w).Investment
	assert.Equal(t, models.KindRefund, refund.Kind)
	assert.Equal(t, int64(10), refund.Tokens)
	assert.Equal(t, "975000000000000000", refund.NetAmount.String())

	w = doRequest(t, router, http.MethodPost, "/api/v1/properties/1/refund", testInvestor, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierrors.ErrNothingToWithdraw, errorCode(t, w))

	w = doRequest(t, router, http.MethodGet, "/api/v1/investors/"+testInvestor+"/holdings/1", "", nil)
	assert.Equal(t, int64(0), decode[HoldingsResponse](t, w).Tokens)
}
