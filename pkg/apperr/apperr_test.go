package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", InvalidErr("bad", nil), http.StatusBadRequest},
		{"not found", NotFoundErr("missing"), http.StatusNotFound},
		{"conflict", ConflictErr("busy", nil), http.StatusConflict},
		{"config missing", ConfigurationMissingErr("no vpos", nil), http.StatusInternalServerError},
		{"unreachable", GatewayUnreachableErr(errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"rejected", GatewayRejectedErr("card not found", nil), http.StatusBadGateway},
		{"wrapped", fmt.Errorf("list cards: %w", NotFoundErr("missing")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Payment gateway is temporarily unavailable, please try again.",
		PublicMessage(GatewayUnreachableErr(errors.New("timeout"))))
	assert.Equal(t, "Payment gateway rejected the request.", PublicMessage(GatewayRejectedErr("", nil)))
	assert.Equal(t, "No stored card", PublicMessage(NotFoundErr("No stored card")))
	assert.Equal(t, genericMessage, PublicMessage(errors.New("db down")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("submit: %w", GatewayUnreachableErr(errors.New("eof")))))
	assert.False(t, IsRetryable(GatewayRejectedErr("declined", nil)))
	assert.False(t, IsRetryable(NotFoundErr("x")))
	assert.False(t, IsRetryable(nil))
}

func TestWrapKeepsAppError(t *testing.T) {
	orig := NotFoundErr("missing")
	assert.Same(t, orig, Wrap(fmt.Errorf("ctx: %w", orig)))
	assert.Nil(t, Wrap(nil))
	assert.Equal(t, Internal, Wrap(errors.New("x")).Kind)
}
