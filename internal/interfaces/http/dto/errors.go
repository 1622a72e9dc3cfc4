package dto

import "net/http"

// API error codes. Clients switch on these, so they never change once released.
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeNotFound   = "ERR_NOT_FOUND"

	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeInvalidTenant   = "ERR_INVALID_TENANT"
	ErrCodeInvalidOrder    = "ERR_INVALID_ORDER"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

	ErrCodeOrderAlreadyPaid     = "ERR_ORDER_ALREADY_PAID"
	ErrCodeDuplicateSubmission  = "ERR_DUPLICATE_SUBMISSION"
	ErrCodeNoPayments           = "ERR_NO_PAYMENTS"
	ErrCodeSettlementInProgress = "ERR_SETTLEMENT_IN_PROGRESS"
)

// ErrorCodeHTTPStatus is the status each API error code is served with
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:             http.StatusInternalServerError,
	ErrCodeValidation:           http.StatusBadRequest,
	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeBadRequest:           http.StatusBadRequest,
	ErrCodeInvalidInput:         http.StatusBadRequest,
	ErrCodeInvalidJSON:          http.StatusBadRequest,
	ErrCodeInvalidTenant:        http.StatusBadRequest,
	ErrCodeInvalidOrder:         http.StatusBadRequest,
	ErrCodeRequestTooLarge:      http.StatusRequestEntityTooLarge,
	ErrCodeOrderAlreadyPaid:     http.StatusConflict,
	ErrCodeDuplicateSubmission:  http.StatusConflict,
	ErrCodeNoPayments:           http.StatusBadRequest,
	ErrCodeSettlementInProgress: http.StatusConflict,
}

// GetHTTPStatus falls back to 500 for codes it does not know
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping translates shared.DomainError codes to API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"INVALID_INPUT":          ErrCodeInvalidInput,
	"INVALID_ORDER":          ErrCodeInvalidOrder,
	"ORDER_ALREADY_PAID":     ErrCodeOrderAlreadyPaid,
	"DUPLICATE_SUBMISSION":   ErrCodeDuplicateSubmission,
	"NO_PAYMENTS":            ErrCodeNoPayments,
	"SETTLEMENT_IN_PROGRESS": ErrCodeSettlementInProgress,
	"VALIDATION_ERROR":       ErrCodeValidation,
}

// NormalizeErrorCode maps a domain code to its API code. Anything else is
// returned unchanged.
func NormalizeErrorCode(code string) string {
	if api, ok := DomainErrorCodeMapping[code]; ok {
		return api
	}
	return code
}
