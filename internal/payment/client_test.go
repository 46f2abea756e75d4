package payment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mincheol-dev/sneakershop/internal/payment"
)

func newGateway(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var captured http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestVerify(t *testing.T) {
	srv, captured := newGateway(t, http.StatusOK, `{"status":"PAID","amount":{"total":153000}}`)
	client := payment.NewClient(srv.URL, "secret-key ", nil)

	err := client.Verify(context.Background(), "pay_abc", 153000)
	require.NoError(t, err)

	assert.Equal(t, "/payments/pay_abc", captured.URL.Path)
	assert.Equal(t, "PortOne secret-key", captured.Header.Get("Authorization"))
}

func TestVerifyMismatch(t *testing.T) {
	srv, _ := newGateway(t, http.StatusOK, `{"status":"PAID","amount":{"total":9000}}`)
	client := payment.NewClient(srv.URL, "secret", nil)

	err := client.Verify(context.Background(), "pay_abc", 10000)
	assert.ErrorIs(t, err, payment.ErrMismatch)
}

func TestVerifyLookupNotFound(t *testing.T) {
	srv, _ := newGateway(t, http.StatusNotFound, `{"message":"no such payment"}`)
	client := payment.NewClient(srv.URL, "secret", nil)

	err := client.Verify(context.Background(), "pay_missing", 10000)
	assert.ErrorIs(t, err, payment.ErrLookup)
}

func TestVerifyMalformedBody(t *testing.T) {
	srv, _ := newGateway(t, http.StatusOK, `not json`)
	client := payment.NewClient(srv.URL, "secret", nil)

	err := client.Verify(context.Background(), "pay_abc", 10000)
	assert.ErrorIs(t, err, payment.ErrLookup)
}

func TestVerifyTransportFailure(t *testing.T) {
	srv, _ := newGateway(t, http.StatusOK, `{}`)
	srv.Close()
	client := payment.NewClient(srv.URL, "secret", nil)

	err := client.Verify(context.Background(), "pay_abc", 10000)
	assert.ErrorIs(t, err, payment.ErrLookup)
}
