package lib

import (
	"backoffice/config"
	"backoffice/dto/model"
	"backoffice/helper"
	"backoffice/pkg/apperr"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver struct {
	cfg *model.MerchantConfig
	err error
}

func (r staticResolver) Resolve(ctx context.Context, companyID string) (*model.MerchantConfig, error) {
	return r.cfg, r.err
}

func testMerchant() *model.MerchantConfig {
	return &model.MerchantConfig{
		CompanyID:         "VERI",
		MerchantID:        "123456",
		StoreKey:          "salt",
		ProvisionPassword: "key",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*PaytrClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.PaytrConfig{
		BaseURL:         srv.URL,
		CardListPath:    "/odeme/capi/list",
		CardDeletePath:  "/odeme/capi/delete",
		PaymentPath:     "/odeme",
		LinkCreatePath:  "/odeme/api/link/create",
		MerchantOkURL:   "https://example.com/ok",
		MerchantFailURL: "https://example.com/fail",
		Timeout:         2 * time.Second,
		MaxRetries:      2,
		RetryBackoff:    time.Millisecond,
	}
	return NewPaytrClient(cfg, staticResolver{cfg: testMerchant()}, srv.Client()), srv
}

func TestListCardsSignsAndDecodes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/odeme/capi/list", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())

		assert.Equal(t, "123456", r.PostForm.Get("merchant_id"))
		assert.Equal(t, "utok", r.PostForm.Get("utoken"))
		want, _ := helper.CardListToken("utok", "salt", "key")
		assert.Equal(t, want, r.PostForm.Get("paytr_token"))

		w.Write([]byte(`[
			{"ctoken":"tok1","last_4":"1111","month":"01","year":"27","c_bank":"Akbank","c_brand":"axess","require_cvv":"0"},
			{"ctoken":"tok2","last_4":"2222","month":"02","year":"28","c_bank":"Garanti","c_brand":"bonus","require_cvv":1}
		]`))
	})

	cards, err := client.ListCards(context.Background(), "utok", "VERI")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "tok1", cards[0].CardToken)
	assert.False(t, bool(cards[0].RequireCVV))
	assert.Equal(t, "tok2", cards[1].CardToken)
	assert.Equal(t, "2222", cards[1].Last4)
	assert.True(t, bool(cards[1].RequireCVV))
}

func TestListCardsNonArrayIsEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","err_msg":"utoken bulunamadi"}`))
	})

	cards, err := client.ListCards(context.Background(), "utok", "VERI")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestListCardsPropagatesConfigError(t *testing.T) {
	client := NewPaytrClient(config.PaytrConfig{BaseURL: "http://127.0.0.1:1"},
		staticResolver{err: apperr.ConfigurationMissingErr("no vpos", nil)}, nil)

	_, err := client.ListCards(context.Background(), "utok", "X")
	assert.True(t, apperr.IsKind(err, apperr.ConfigurationMissing))
}

func TestListCardsClientErrorNotRetried(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.ListCards(context.Background(), "utok", "VERI")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.GatewayUnreachable))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestServerErrorRetriedThenSucceeds(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	})

	cards, err := client.ListCards(context.Background(), "utok", "VERI")
	require.NoError(t, err)
	assert.Empty(t, cards)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestServerErrorExhaustsRetries(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := client.DeleteCard(context.Background(), "ctok", "utok", "VERI")
	require.Error(t, err)
	assert.True(t, apperr.IsRetryable(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNetworkErrorIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewPaytrClient(config.PaytrConfig{
		BaseURL:      url,
		CardListPath: "/odeme/capi/list",
		Timeout:      time.Second,
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	}, staticResolver{cfg: testMerchant()}, nil)

	_, err := client.ListCards(context.Background(), "utok", "VERI")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.GatewayUnreachable))
	assert.Equal(t, "Payment gateway is temporarily unavailable, please try again.", apperr.PublicMessage(err))
}

func TestSlowGatewayTimesOutAndRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(200 * time.Millisecond):
		}
	}))
	t.Cleanup(srv.Close)

	client := NewPaytrClient(config.PaytrConfig{
		BaseURL:      srv.URL,
		PaymentPath:  "/odeme",
		Timeout:      10 * time.Millisecond,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, staticResolver{cfg: testMerchant()}, srv.Client())

	res, err := client.SubmitPayment(context.Background(), PaymentRequest{OrderID: "slow1"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.GatewayUnreachable))
	assert.True(t, apperr.IsRetryable(err))
	assert.Equal(t, SubmissionTransportError, res.Status)
	assert.Equal(t, 3, res.Attempts)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 3 }, time.Second, 5*time.Millisecond)
}

func TestDeleteCard(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "ctok", r.PostForm.Get("ctoken"))
		assert.Equal(t, "utok", r.PostForm.Get("utoken"))
		want, _ := helper.CardDeleteToken("ctok", "utok", "salt", "key")
		assert.Equal(t, want, r.PostForm.Get("paytr_token"))
		w.Write([]byte(`{"status":"success"}`))
	})

	require.NoError(t, client.DeleteCard(context.Background(), "ctok", "utok", "VERI"))
}

func TestDeleteCardRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"gateway message", `{"status":"failed","err_msg":"Kart bulunamadi"}`, "Kart bulunamadi"},
		{"no message", `{"status":"failed"}`, "Card could not be deleted."},
		{"not json", `<html>error</html>`, "Card could not be deleted."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			err := client.DeleteCard(context.Background(), "ctok", "utok", "VERI")
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.GatewayRejected))
			assert.False(t, apperr.IsRetryable(err))
			assert.Equal(t, tt.msg, apperr.PublicMessage(err))
		})
	}
}

func TestSubmitPaymentPostsFullForm(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/odeme", r.URL.Path)
		assert.NoError(t, r.ParseForm())

		expected := map[string]string{
			"merchant_id":       "123456",
			"user_ip":           "1.2.3.4",
			"merchant_oid":      "abc123",
			"email":             "a@b.com",
			"payment_type":      "card",
			"payment_amount":    "20.00",
			"installment_count": "0",
			"non_3d":            "1",
			"currency":          "TL",
			"merchant_ok_url":   "https://example.com/ok",
			"merchant_fail_url": "https://example.com/fail",
			"user_name":         "Ali Veli",
			"user_address":      "Adres",
			"user_phone":        "0555",
			"user_basket":       `[["Aidat","20.00",1]]`,
			"utoken":            "utok",
			"ctoken":            "tok2",
			"recurring":         "1",
			"paytr_token":       "signed",
		}
		for k, v := range expected {
			assert.Equal(t, v, r.PostForm.Get(k), k)
		}
		w.Write([]byte("<html>ok</html>"))
	})

	res, err := client.SubmitPayment(context.Background(), PaymentRequest{
		MerchantID:       "123456",
		UserIP:           "1.2.3.4",
		OrderID:          "abc123",
		Email:            "a@b.com",
		PaymentType:      "card",
		Amount:           "20.00",
		InstallmentCount: "0",
		Non3D:            "1",
		Currency:         "TL",
		UserName:         "Ali Veli",
		UserAddress:      "Adres",
		UserPhone:        "0555",
		UserBasket:       `[["Aidat","20.00",1]]`,
		UserToken:        "utok",
		CardToken:        "tok2",
		PaytrToken:       "signed",
	})
	require.NoError(t, err)
	assert.Equal(t, SubmissionAccepted, res.Status)
	assert.Equal(t, "<html>ok</html>", res.Body)
	assert.Equal(t, 1, res.Attempts)
}

func TestSubmitPaymentTransportError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	res, err := client.SubmitPayment(context.Background(), PaymentRequest{OrderID: "abc"})
	require.Error(t, err)
	assert.Equal(t, SubmissionTransportError, res.Status)
	assert.Equal(t, 3, res.Attempts)
	assert.True(t, apperr.IsRetryable(err))
}

func TestCreateLink(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/odeme/api/link/create", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "15050", r.PostForm.Get("price"))
		assert.Equal(t, "TL", r.PostForm.Get("currency"))
		assert.Equal(t, "tr", r.PostForm.Get("lang"))

		want, _ := helper.LinkToken(helper.LinkTokenInput{
			Name: "Aidat", Price: "15050", Currency: "TL", MaxInstallment: "1",
			LinkType: "collection", Lang: "tr", Email: "a@b.com", StoreKey: "salt",
		}, "key")
		assert.Equal(t, want, r.PostForm.Get("paytr_token"))

		w.Write([]byte(`{"status":"success","id":"L1","link":"https://paytr.com/link/L1"}`))
	})

	res, err := client.CreateLink(context.Background(), "VERI", LinkRequest{
		Name: "Aidat", Price: 150.5, MaxInstallment: 1, LinkType: "collection", Email: "a@b.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "L1", res.ID)
	assert.Equal(t, "https://paytr.com/link/L1", res.Link)
}

func TestCreateLinkRejectsCurrency(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway must not be called")
	})

	_, err := client.CreateLink(context.Background(), "VERI", LinkRequest{Name: "x", Price: 1, Currency: "IDR", LinkType: "product"})
	assert.True(t, apperr.IsKind(err, apperr.Invalid))
}
