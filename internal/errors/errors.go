package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/ledger"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/middleware"
)

// Error code constants for standardized error responses
const (
	ErrNotFound            = "NOT_FOUND"
	ErrBadRequest          = "BAD_REQUEST"
	ErrInternalServer      = "INTERNAL_SERVER_ERROR"
	ErrValidation          = "VALIDATION_ERROR"
	ErrUnauthenticated     = "UNAUTHENTICATED"
	ErrUnauthorized        = "UNAUTHORIZED"
	ErrPricing             = "PRICING_ERROR"
	ErrClosedForInvestment = "CLOSED_FOR_INVESTMENT"
	ErrNotFunded           = "NOT_FUNDED"
	ErrBelowMinimum        = "BELOW_MINIMUM"
	ErrInsufficientSupply  = "INSUFFICIENT_SUPPLY"
	ErrInvalidTransition   = "INVALID_TRANSITION"
	ErrArithmetic          = "ARITHMETIC_ERROR"
	ErrNothingToWithdraw   = "NOTHING_TO_WITHDRAW"
	ErrNotRefundable       = "NOT_REFUNDABLE"
	ErrLedgerUnavailable   = "LEDGER_UNAVAILABLE"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ledgerStatus maps ledger sentinel errors to HTTP responses.
// Order matters only for readability; sentinels are disjoint.
var ledgerStatus = []struct {
	target error
	status int
	code   string
}{
	{ledger.ErrValidation, http.StatusBadRequest, ErrValidation},
	{ledger.ErrNotFound, http.StatusNotFound, ErrNotFound},
	{ledger.ErrUnauthorized, http.StatusForbidden, ErrUnauthorized},
	{ledger.ErrPricing, http.StatusUnprocessableEntity, ErrPricing},
	{ledger.ErrBelowMinimum, http.StatusUnprocessableEntity, ErrBelowMinimum},
	{ledger.ErrArithmetic, http.StatusUnprocessableEntity, ErrArithmetic},
	{ledger.ErrClosedForInvestment, http.StatusConflict, ErrClosedForInvestment},
	{ledger.ErrNotFunded, http.StatusConflict, ErrNotFunded},
	{ledger.ErrInsufficientSupply, http.StatusConflict, ErrInsufficientSupply},
	{ledger.ErrInvalidTransition, http.StatusConflict, ErrInvalidTransition},
	{ledger.ErrNothingToWithdraw, http.StatusConflict, ErrNothingToWithdraw},
	{ledger.ErrNotRefundable, http.StatusConflict, ErrNotRefundable},
	{ledger.ErrUnavailable, http.StatusServiceUnavailable, ErrLedgerUnavailable},
}

func respond(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: middleware.GetRequestID(c),
		},
	})
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	if log := middleware.GetLogger(c); log != nil {
		fields := map[string]interface{}{
			"message": message,
			"path":    c.Request.URL.Path,
		}
		if details != nil {
			fields["details"] = details
		}
		log.Warn("Bad request", fields)
	}

	respond(c, http.StatusBadRequest, ErrBadRequest, message, details)
}

// Unauthenticated returns a 401 response for requests without a caller
// account on routes that need one.
func Unauthenticated(c *gin.Context) {
	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Missing caller account", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
	}

	respond(c, http.StatusUnauthorized, ErrUnauthenticated,
		"The "+middleware.AccountHeader+" header is required", nil)
}

// InternalServerError returns a 500 Internal Server Error response.
// The error is logged but never exposed to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("Internal server error", err, map[string]interface{}{
			"message": message,
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	}

	respond(c, http.StatusInternalServerError, ErrInternalServer, message, nil)
}

// ValidationError returns a 400 Bad Request error response with field-specific validation errors.
// It parses the validation errors from the validator library and formats them for the client.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{})
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Validation error", map[string]interface{}{
			"path":   c.Request.URL.Path,
			"fields": details,
		})
	}

	respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details)
}

// Bind reports a request binding failure. Validator errors get field
// details; anything else (malformed JSON, bad amounts) is a plain 400.
func Bind(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if stderrors.As(err, &validationErrors) {
		ValidationError(c, validationErrors)
		return
	}
	BadRequest(c, "Invalid request body", map[string]interface{}{"reason": err.Error()})
}

// Ledger translates an error returned by the ledger into a response.
// Domain errors become 4xx responses carrying the error text; anything
// unrecognized, such as a journal failure, becomes a 500.
func Ledger(c *gin.Context, err error) {
	for _, m := range ledgerStatus {
		if !stderrors.Is(err, m.target) {
			continue
		}

		if log := middleware.GetLogger(c); log != nil {
			log.Warn("Ledger rejected request", map[string]interface{}{
				"code":  m.code,
				"error": err.Error(),
				"path":  c.Request.URL.Path,
			})
		}
		respond(c, m.status, m.code, err.Error(), nil)
		return
	}

	InternalServerError(c, "Failed to process ledger operation", err)
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "len":
		return "Must have length of " + err.Param()
	case "gt":
		return "Must be greater than " + err.Param()
	case "gte":
		return "Must be greater than or equal to " + err.Param()
	case "lt":
		return "Must be less than " + err.Param()
	case "lte":
		return "Must be less than or equal to " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	case "numeric":
		return "Must be a whole number of minor units"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
