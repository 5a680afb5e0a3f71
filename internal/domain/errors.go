package domain

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrNotPermitted       = errors.New("role not permitted")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidDraft       = errors.New("invalid draft")
	ErrUnknownTable       = errors.New("unknown table")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrProductNotFound, "product_not_found"},
	{ErrProductUnavailable, "product_unavailable"},
	{ErrOrderNotFound, "order_not_found"},
	{ErrInvalidTransition, "invalid_transition"},
	{ErrNotPermitted, "forbidden"},
	{ErrInvalidStatus, "invalid_status"},
	{ErrInvalidRole, "invalid_role"},
	{ErrInvalidDraft, "invalid_draft"},
	{ErrUnknownTable, "unknown_table"},
	{ErrInvalidCredentials, "invalid_credentials"},
	{ErrUnauthorized, "unauthorized"},
}

// ErrorCode returns the wire code of the domain error wrapped by err, or "".
func ErrorCode(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// ErrorForCode is the inverse of ErrorCode.
func ErrorForCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}
