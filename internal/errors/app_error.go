package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeAuthFailed         = "AUTH_FAILED"
	ErrCodeGatewayUnreachable = "GATEWAY_UNREACHABLE"
	ErrCodeGatewayRejected    = "GATEWAY_REJECTED"
	ErrCodeParse              = "PARSE_ERROR"
	ErrCodeNoApprovalLink     = "NO_APPROVAL_LINK"
	ErrCodeCouponNotFound     = "COUPON_NOT_FOUND"
	ErrCodeCouponNotYetValid  = "COUPON_NOT_YET_VALID"
	ErrCodeCouponExpired      = "COUPON_EXPIRED"
	ErrCodeMinimumOrderNotMet = "MINIMUM_ORDER_NOT_MET"
)

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message, http.StatusForbidden)
}

func ConflictError(message string) *AppError {
	return NewAppError(ErrCodeConflict, message, http.StatusConflict)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(ErrCodeTooManyRequests, message, http.StatusTooManyRequests)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func DatabaseError(message string) *AppError {
	return NewAppError(ErrCodeDatabaseError, message, http.StatusInternalServerError)
}

// Gateway errors. None of them are retried by the caller; a new checkout
// attempt starts with fresh request/order ids.

func AuthFailedError(message string) *AppError {
	return NewAppError(ErrCodeAuthFailed, message, http.StatusBadGateway)
}

func GatewayUnreachableError(message string) *AppError {
	return NewAppError(ErrCodeGatewayUnreachable, message, http.StatusGatewayTimeout)
}

// GatewayRejectedError carries the gateway status (HTTP status or result code)
// and the raw message/body for diagnostics.
func GatewayRejectedError(status string, message string) *AppError {
	return NewAppError(ErrCodeGatewayRejected, message, http.StatusBadGateway).
		WithDetail(fmt.Sprintf("gateway status: %s", status))
}

func ParseError(message string) *AppError {
	return NewAppError(ErrCodeParse, message, http.StatusBadGateway)
}

func NoApprovalLinkError(message string) *AppError {
	return NewAppError(ErrCodeNoApprovalLink, message, http.StatusBadGateway)
}

func CouponNotFoundError(code string) *AppError {
	return NewAppError(ErrCodeCouponNotFound, "Coupon not found", http.StatusNotFound).WithDetail(code)
}

func CouponNotYetValidError(message string) *AppError {
	return NewAppError(ErrCodeCouponNotYetValid, message, http.StatusUnprocessableEntity)
}

func CouponExpiredError(message string) *AppError {
	return NewAppError(ErrCodeCouponExpired, message, http.StatusUnprocessableEntity)
}

func MinimumOrderNotMetError(message string) *AppError {
	return NewAppError(ErrCodeMinimumOrderNotMet, message, http.StatusUnprocessableEntity)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := IsAppError(err)

	return ok && appErr.Code == code
}

// field validation error.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason))
}
