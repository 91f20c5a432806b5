package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	Invalid              Kind = "invalid"
	NotFound             Kind = "not_found"
	Conflict             Kind = "conflict"
	ConfigurationMissing Kind = "configuration_missing"
	GatewayUnreachable   Kind = "gateway_unreachable"
	GatewayRejected      Kind = "gateway_rejected"
	Internal             Kind = "internal"
)

const genericMessage = "Unexpected error, please contact support."

// AppError pairs an internal cause with a message that is safe to show.
type AppError struct {
	Kind      Kind
	PublicMsg string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.PublicMsg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.PublicMsg)
	}
	return string(e.Kind)
}

func (e *AppError) Unwrap() error { return e.Err }

func InvalidErr(publicMsg string, err error) *AppError {
	return &AppError{Kind: Invalid, PublicMsg: publicMsg, Err: err}
}

func NotFoundErr(publicMsg string) *AppError {
	return &AppError{Kind: NotFound, PublicMsg: publicMsg}
}

func ConflictErr(publicMsg string, err error) *AppError {
	return &AppError{Kind: Conflict, PublicMsg: publicMsg, Err: err}
}

func ConfigurationMissingErr(publicMsg string, err error) *AppError {
	return &AppError{Kind: ConfigurationMissing, PublicMsg: publicMsg, Err: err}
}

// GatewayUnreachableErr always carries the generic retry message; the cause
// stays internal.
func GatewayUnreachableErr(err error) *AppError {
	return &AppError{
		Kind:      GatewayUnreachable,
		PublicMsg: "Payment gateway is temporarily unavailable, please try again.",
		Err:       err,
	}
}

func GatewayRejectedErr(publicMsg string, err error) *AppError {
	if publicMsg == "" {
		publicMsg = "Payment gateway rejected the request."
	}
	return &AppError{Kind: GatewayRejected, PublicMsg: publicMsg, Err: err}
}

// Wrap marks an unexpected error as internal. Nil stays nil.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if ae, ok := As(err); ok {
		return ae
	}
	return &AppError{Kind: Internal, PublicMsg: genericMessage, Err: err}
}

func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return Internal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRetryable reports whether the same request may be sent again. Only
// transport-level gateway failures qualify.
func IsRetryable(err error) bool {
	return IsKind(err, GatewayUnreachable)
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Invalid:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case GatewayUnreachable:
		return http.StatusServiceUnavailable
	case GatewayRejected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return genericMessage
}
