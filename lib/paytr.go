package lib

import (
	"backoffice/config"
	"backoffice/dto/model"
	"backoffice/helper"
	"backoffice/pkg/apperr"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.elastic.co/apm"
	"golang.org/x/time/rate"
)

// MerchantResolver returns the virtual POS credentials for a company.
type MerchantResolver interface {
	Resolve(ctx context.Context, companyID string) (*model.MerchantConfig, error)
}

// StoredCard is one entry of the PayTR card vault listing.
type StoredCard struct {
	CardToken   string   `json:"ctoken"`
	Last4       string   `json:"last_4"`
	ExpiryMonth string   `json:"month"`
	ExpiryYear  string   `json:"year"`
	Bank        string   `json:"c_bank"`
	Brand       string   `json:"c_brand"`
	RequireCVV  flexBool `json:"require_cvv"`
}

// flexBool accepts "1"/"0", 1/0 and true/false.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		*b = true
	default:
		*b = false
	}
	return nil
}

// PaymentRequest is the fully signed stored-card payment form.
type PaymentRequest struct {
	MerchantID       string
	UserIP           string
	OrderID          string
	Email            string
	PaymentType      string
	Amount           string
	InstallmentCount string
	Non3D            string
	Currency         string
	UserName         string
	UserAddress      string
	UserPhone        string
	UserBasket       string
	UserToken        string
	CardToken        string
	PaytrToken       string
}

type SubmissionStatus string

const (
	// SubmissionAccepted means the gateway answered 2xx; the charge result
	// arrives later through the callback URL.
	SubmissionAccepted SubmissionStatus = "accepted"
	// SubmissionTransportError means the request may or may not have
	// reached the gateway.
	SubmissionTransportError SubmissionStatus = "transport_error"
)

// SubmissionResult is the outcome of a payment submission. Body is the
// gateway's opaque result page and is never parsed.
type SubmissionResult struct {
	Status     SubmissionStatus
	HTTPStatus int
	Body       string
	Attempts   int
}

type LinkRequest struct {
	Name           string
	Price          float64
	Currency       string
	MaxInstallment int
	LinkType       string
	Lang           string
	Email          string
	MinCount       int
	ExpiryDate     string
}

type LinkResult struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

type gatewayStatus struct {
	Status string `json:"status"`
	ErrMsg string `json:"err_msg"`
	Reason string `json:"reason"`
	ID     string `json:"id"`
	Link   string `json:"link"`
}

// PaytrClient talks to the PayTR card storage and payment endpoints.
type PaytrClient struct {
	cfg        config.PaytrConfig
	resolver   MerchantResolver
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *helper.ChannelHelpers
}

func NewPaytrClient(cfg config.PaytrConfig, resolver MerchantResolver, httpClient *http.Client) *PaytrClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return &PaytrClient{
		cfg:        cfg,
		resolver:   resolver,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     helper.PaytrLogger,
	}
}

// ListCards returns the customer's stored cards in gateway order. A JSON
// body that is not an array (PayTR answers with an error object when the
// vault is empty or the utoken is unknown) yields zero cards.
func (c *PaytrClient) ListCards(ctx context.Context, userToken, companyID string) ([]StoredCard, error) {
	span, ctx := apm.StartSpan(ctx, "paytr.ListCards", "external.http")
	defer span.End()

	merchant, err := c.resolver.Resolve(ctx, companyID)
	if err != nil {
		return nil, err
	}

	token, err := helper.CardListToken(userToken, merchant.StoreKey, merchant.ProvisionPassword)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("merchant_id", merchant.MerchantID)
	form.Set("utoken", userToken)
	form.Set("paytr_token", token)

	body, _, err := c.post(ctx, "list_cards", c.cfg.CardListPath, form, userToken)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.logger.LogWithData("WARN", "Card list returned a non-array body", map[string]interface{}{
			"company_id": companyID,
			"body":       truncate(string(trimmed), 512),
		})
		return []StoredCard{}, nil
	}

	var cards []StoredCard
	if err := json.Unmarshal(trimmed, &cards); err != nil {
		return nil, apperr.GatewayRejectedErr("", fmt.Errorf("error decoding card list: %w", err))
	}
	return cards, nil
}

// DeleteCard removes one stored card. Anything but status=success is a
// GatewayRejected error carrying the gateway's err_msg.
func (c *PaytrClient) DeleteCard(ctx context.Context, cardToken, userToken, companyID string) error {
	span, ctx := apm.StartSpan(ctx, "paytr.DeleteCard", "external.http")
	defer span.End()

	merchant, err := c.resolver.Resolve(ctx, companyID)
	if err != nil {
		return err
	}

	token, err := helper.CardDeleteToken(cardToken, userToken, merchant.StoreKey, merchant.ProvisionPassword)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("merchant_id", merchant.MerchantID)
	form.Set("ctoken", cardToken)
	form.Set("utoken", userToken)
	form.Set("paytr_token", token)

	body, _, err := c.post(ctx, "delete_card", c.cfg.CardDeletePath, form, cardToken)
	if err != nil {
		return err
	}

	return checkStatus(body, "Card could not be deleted.")
}

// SubmitPayment posts a signed payment form. Transport failures are
// returned both as a tagged result and as a GatewayUnreachable error.
func (c *PaytrClient) SubmitPayment(ctx context.Context, req PaymentRequest) (SubmissionResult, error) {
	span, ctx := apm.StartSpan(ctx, "paytr.SubmitPayment", "external.http")
	defer span.End()

	form := url.Values{}
	form.Set("merchant_id", req.MerchantID)
	form.Set("user_ip", req.UserIP)
	form.Set("merchant_oid", req.OrderID)
	form.Set("email", req.Email)
	form.Set("payment_type", req.PaymentType)
	form.Set("payment_amount", req.Amount)
	form.Set("installment_count", req.InstallmentCount)
	form.Set("non_3d", req.Non3D)
	form.Set("currency", req.Currency)
	form.Set("merchant_ok_url", c.cfg.MerchantOkURL)
	form.Set("merchant_fail_url", c.cfg.MerchantFailURL)
	form.Set("user_name", req.UserName)
	form.Set("user_address", req.UserAddress)
	form.Set("user_phone", req.UserPhone)
	form.Set("user_basket", req.UserBasket)
	form.Set("utoken", req.UserToken)
	form.Set("ctoken", req.CardToken)
	form.Set("recurring", "1")
	form.Set("paytr_token", req.PaytrToken)

	body, attempts, err := c.post(ctx, "submit_payment", c.cfg.PaymentPath, form, req.OrderID)
	if err != nil {
		return SubmissionResult{Status: SubmissionTransportError, Attempts: attempts}, err
	}

	return SubmissionResult{
		Status:     SubmissionAccepted,
		HTTPStatus: http.StatusOK,
		Body:       string(body),
		Attempts:   attempts,
	}, nil
}

// CreateLink creates a PayTR payment link. Price goes out in kuruş.
func (c *PaytrClient) CreateLink(ctx context.Context, companyID string, req LinkRequest) (*LinkResult, error) {
	span, ctx := apm.StartSpan(ctx, "paytr.CreateLink", "external.http")
	defer span.End()

	merchant, err := c.resolver.Resolve(ctx, companyID)
	if err != nil {
		return nil, err
	}

	currency, err := helper.ValidateCurrency(req.Currency)
	if err != nil {
		return nil, apperr.InvalidErr(err.Error(), err)
	}
	lang := req.Lang
	if lang == "" {
		lang = "tr"
	}
	price := strconv.FormatInt(helper.AmountToMinor(req.Price), 10)
	maxInstallment := strconv.Itoa(req.MaxInstallment)

	token, err := helper.LinkToken(helper.LinkTokenInput{
		Name:           req.Name,
		Price:          price,
		Currency:       currency,
		MaxInstallment: maxInstallment,
		LinkType:       req.LinkType,
		Lang:           lang,
		Email:          req.Email,
		StoreKey:       merchant.StoreKey,
	}, merchant.ProvisionPassword)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("merchant_id", merchant.MerchantID)
	form.Set("name", req.Name)
	form.Set("price", price)
	form.Set("currency", currency)
	form.Set("max_installment", maxInstallment)
	form.Set("link_type", req.LinkType)
	form.Set("lang", lang)
	form.Set("email", req.Email)
	if req.MinCount > 0 {
		form.Set("min_count", strconv.Itoa(req.MinCount))
	}
	if req.ExpiryDate != "" {
		form.Set("expiry_date", req.ExpiryDate)
	}
	if c.cfg.CallbackURL != "" {
		form.Set("callback_link", c.cfg.CallbackURL)
	}
	form.Set("paytr_token", token)

	body, _, err := c.post(ctx, "create_link", c.cfg.LinkCreatePath, form, req.Name)
	if err != nil {
		return nil, err
	}

	if err := checkStatus(body, "Payment link could not be created."); err != nil {
		return nil, err
	}

	var res gatewayStatus
	_ = json.Unmarshal(body, &res)
	return &LinkResult{ID: res.ID, Link: res.Link}, nil
}

func checkStatus(body []byte, fallback string) error {
	var res gatewayStatus
	if err := json.Unmarshal(body, &res); err != nil {
		return apperr.GatewayRejectedErr(fallback, fmt.Errorf("unexpected gateway response: %s", truncate(string(body), 256)))
	}
	if res.Status != "success" {
		msg := res.ErrMsg
		if msg == "" {
			msg = res.Reason
		}
		if msg == "" {
			msg = fallback
		}
		return apperr.GatewayRejectedErr(msg, fmt.Errorf("gateway status %q: %s", res.Status, msg))
	}
	return nil
}

// retryableError marks a failure the next attempt may fix.
type retryableError struct{ err error }

func (e retryableError) Error() string { return e.err.Error() }
func (e retryableError) Unwrap() error { return e.err }

// post sends form with a per-attempt timeout and retries network errors and
// 5xx answers. It returns the body of the first 2xx answer and the number of
// attempts made.
func (c *PaytrClient) post(ctx context.Context, operation, path string, form url.Values, reference string) ([]byte, int, error) {
	endpoint := c.cfg.BaseURL + path
	encoded := form.Encode()
	maxAttempts := c.cfg.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			c.logger.LogRetry(reference, attempt-1, maxAttempts-1, lastErr.Error(), map[string]interface{}{
				"operation": operation,
			})
			select {
			case <-ctx.Done():
				return nil, attempt - 1, apperr.GatewayUnreachableErr(ctx.Err())
			case <-time.After(c.cfg.RetryBackoff * time.Duration(attempt-1)):
			}
		}

		body, err := c.doOnce(ctx, operation, endpoint, encoded, reference)
		if err == nil {
			return body, attempt, nil
		}
		lastErr = err

		var re retryableError
		if !errors.As(err, &re) {
			return nil, attempt, apperr.GatewayUnreachableErr(err)
		}
	}

	return nil, maxAttempts, apperr.GatewayUnreachableErr(lastErr)
}

func (c *PaytrClient) doOnce(ctx context.Context, operation, endpoint, encoded, reference string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, strings.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		helper.ObserveGatewayCall(operation, 0, duration)
		c.logger.LogAPICall(endpoint, http.MethodPost, duration, 0,
			map[string]interface{}{"reference": reference},
			map[string]interface{}{"error": err.Error()},
		)
		if ctx.Err() != nil {
			// caller gave up; retrying cannot help
			return nil, fmt.Errorf("error sending request: %w", err)
		}
		return nil, retryableError{fmt.Errorf("error sending request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	helper.ObserveGatewayCall(operation, resp.StatusCode, duration)
	c.logger.LogAPICall(endpoint, http.MethodPost, duration, resp.StatusCode,
		map[string]interface{}{"reference": reference},
		map[string]interface{}{"body": truncate(string(body), 1024)},
	)
	if err != nil {
		return nil, retryableError{fmt.Errorf("error reading response body: %w", err)}
	}

	if resp.StatusCode >= 500 {
		return nil, retryableError{fmt.Errorf("gateway returned HTTP %d", resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned HTTP %d", resp.StatusCode)
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
