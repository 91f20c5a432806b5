package service

import (
	"backoffice/config"
	"backoffice/dto/model"
	"backoffice/helper"
	"backoffice/lib"
	"backoffice/pkg/apperr"
	"backoffice/repository"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.elastic.co/apm"
)

const defaultBasketItem = "Recurring payment"

// CardGateway is the subset of the PayTR client the orchestrator needs.
type CardGateway interface {
	ListCards(ctx context.Context, userToken, companyID string) ([]lib.StoredCard, error)
	DeleteCard(ctx context.Context, cardToken, userToken, companyID string) error
	SubmitPayment(ctx context.Context, req lib.PaymentRequest) (lib.SubmissionResult, error)
}

type CollectInput struct {
	CustomerID    string
	Amount        float64
	Description   string
	PaymentPlanID string
}

type CollectResult struct {
	OrderID       string
	Amount        float64
	RoundedAmount string
	Message       string
}

type OrchestratorDeps struct {
	Tokens    repository.GatewayUserTokenRepository
	Merchants lib.MerchantResolver
	Gateway   CardGateway
	Sources   repository.SourcePaymentRepository
	Payments  repository.PendingPaymentRepository
	Plans     repository.PaymentPlanRepository
	Locker    repository.Locker
	Selector  CardSelector
	Config    config.CollectConfig

	// NewOrderID and Now default to uuid and time.Now.
	NewOrderID func() string
	Now        func() time.Time
}

// PaymentOrchestrator charges a customer's stored card and records the
// attempt before anything reaches the gateway.
type PaymentOrchestrator struct {
	tokens     repository.GatewayUserTokenRepository
	merchants  lib.MerchantResolver
	gateway    CardGateway
	sources    repository.SourcePaymentRepository
	payments   repository.PendingPaymentRepository
	plans      repository.PaymentPlanRepository
	locker     repository.Locker
	selector   CardSelector
	cfg        config.CollectConfig
	newOrderID func() string
	now        func() time.Time
	logger     *helper.ChannelHelpers
}

func NewPaymentOrchestrator(d OrchestratorDeps) *PaymentOrchestrator {
	o := &PaymentOrchestrator{
		tokens:     d.Tokens,
		merchants:  d.Merchants,
		gateway:    d.Gateway,
		sources:    d.Sources,
		payments:   d.Payments,
		plans:      d.Plans,
		locker:     d.Locker,
		selector:   d.Selector,
		cfg:        d.Config,
		newOrderID: d.NewOrderID,
		now:        d.Now,
		logger:     helper.CollectLogger,
	}
	if o.selector == nil {
		o.selector = LastCardSelector{}
	}
	if o.locker == nil {
		o.locker = repository.NewMemoryLocker()
	}
	if o.newOrderID == nil {
		o.newOrderID = NewOrderID
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.cfg.LockTTL <= 0 {
		o.cfg.LockTTL = 2 * time.Minute
	}
	if o.cfg.SubmitTimeout <= 0 {
		o.cfg.SubmitTimeout = 30 * time.Second
	}
	return o
}

// NewOrderID returns a random UUID without hyphens; PayTR only accepts
// alphanumeric merchant_oid values.
func NewOrderID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Collect charges the customer's most recent stored card. A pending payment
// with status waiting is stored before submission; once stored, the
// submission runs to completion even if ctx is cancelled.
func (o *PaymentOrchestrator) Collect(ctx context.Context, in CollectInput) (*CollectResult, error) {
	span, ctx := apm.StartSpan(ctx, "Collect", "service")
	defer span.End()

	res, err := o.collect(ctx, in)
	if err != nil {
		helper.ObserveCollection(string(apperr.KindOf(err)))
		return nil, err
	}
	helper.ObserveCollection("accepted")
	return res, nil
}

func (o *PaymentOrchestrator) collect(ctx context.Context, in CollectInput) (*CollectResult, error) {
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	if in.CustomerID == "" {
		return nil, apperr.InvalidErr("customer_id is required.", nil)
	}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, apperr.InvalidErr("amount must be a finite number.", nil)
	}
	if in.Amount <= 0 {
		return nil, apperr.InvalidErr("amount must be greater than zero.", nil)
	}
	rounded := helper.RoundAmount(in.Amount)
	if !rounded.IsPositive() {
		return nil, apperr.InvalidErr("amount must be at least 0.01.", nil)
	}
	amountText := helper.FormatAmount(in.Amount)
	amountValue, _ := rounded.Float64()

	release, err := o.locker.Acquire(ctx, in.CustomerID, o.cfg.LockTTL, o.cfg.LockWait)
	if err != nil {
		return nil, err
	}
	released := false
	unlock := func() {
		if released {
			return
		}
		released = true
		if err := release(context.WithoutCancel(ctx)); err != nil {
			helper.Warn("Error releasing collection lock for customer %s: %v", in.CustomerID, err)
		}
	}
	defer unlock()

	token, err := o.tokens.FindLatestByCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("error loading gateway user token: %w", err)
	}
	if token == nil {
		return nil, apperr.NotFoundErr("No stored card token found for this customer.")
	}

	companyID := token.CompanyID
	if companyID == "" {
		companyID = o.cfg.DefaultCompanyID
	}

	merchant, err := o.merchants.Resolve(ctx, companyID)
	if err != nil {
		return nil, err
	}

	cards, err := o.gateway.ListCards(ctx, token.UserToken, companyID)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, apperr.NotFoundErr("No stored card found for this customer.")
	}
	card := o.selector.Select(cards)

	source, err := o.sources.FindByID(ctx, token.SourceID)
	if err != nil {
		return nil, fmt.Errorf("error loading source payment: %w", err)
	}
	if source == nil {
		return nil, apperr.NotFoundErr("The original payment for this card could not be found.")
	}

	orderID := o.newOrderID()
	userIP := source.UserIP
	if userIP == "" {
		userIP = o.cfg.DefaultUserIP
	}

	paytrToken, err := helper.PaymentToken(helper.PaymentTokenInput{
		MerchantID:       merchant.MerchantID,
		UserIP:           userIP,
		OrderID:          orderID,
		Email:            source.Email,
		Amount:           amountText,
		PaymentType:      o.cfg.PaymentType,
		InstallmentCount: o.cfg.InstallmentCount,
		Currency:         o.cfg.Currency,
		Non3D:            o.cfg.Non3D,
		StoreKey:         merchant.StoreKey,
	}, merchant.ProvisionPassword)
	if err != nil {
		return nil, err
	}

	basketItem := in.Description
	if basketItem == "" {
		basketItem = defaultBasketItem
	}
	basket, err := json.Marshal([][]interface{}{{basketItem, amountText, 1}})
	if err != nil {
		return nil, fmt.Errorf("error encoding basket: %w", err)
	}

	pending := &model.PendingPayment{
		OrderID:       orderID,
		Amount:        amountValue,
		AmountText:    amountText,
		Currency:      o.cfg.Currency,
		Description:   in.Description,
		CustomerID:    in.CustomerID,
		CompanyID:     companyID,
		MerchantID:    merchant.MerchantID,
		SourceID:      token.SourceID,
		UserToken:     token.UserToken,
		CardToken:     card.CardToken,
		PaymentPlanID: in.PaymentPlanID,
		Email:         source.Email,
		UserIP:        userIP,
		Status:        model.PaymentStatusWaiting,
		PaytrToken:    paytrToken,
		CreatedAt:     o.now(),
	}
	if err := o.payments.Insert(ctx, pending); err != nil {
		o.logger.LogTransactionError(orderID, in.CustomerID, amountText, err.Error(), map[string]interface{}{
			"stage": "persist",
		})
		return nil, fmt.Errorf("error saving pending payment: %w", err)
	}

	// the attempt is in motion from here on
	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.SubmitTimeout)
	result, submitErr := o.gateway.SubmitPayment(submitCtx, lib.PaymentRequest{
		MerchantID:       merchant.MerchantID,
		UserIP:           userIP,
		OrderID:          orderID,
		Email:            source.Email,
		PaymentType:      o.cfg.PaymentType,
		Amount:           amountText,
		InstallmentCount: o.cfg.InstallmentCount,
		Non3D:            o.cfg.Non3D,
		Currency:         o.cfg.Currency,
		UserName:         source.UserName,
		UserAddress:      o.cfg.UserAddress,
		UserPhone:        o.cfg.UserPhone,
		UserBasket:       string(basket),
		UserToken:        token.UserToken,
		CardToken:        card.CardToken,
		PaytrToken:       paytrToken,
	})
	cancel()
	unlock()

	if in.PaymentPlanID != "" {
		o.stampPlan(context.WithoutCancel(ctx), in.PaymentPlanID, orderID)
	}

	if submitErr != nil {
		o.logger.LogTransactionError(orderID, in.CustomerID, amountText, submitErr.Error(), map[string]interface{}{
			"stage":    "submit",
			"status":   string(result.Status),
			"attempts": result.Attempts,
		})
		return nil, submitErr
	}

	o.logger.LogTransactionSuccess(orderID, in.CustomerID, amountText, map[string]interface{}{
		"company_id":      companyID,
		"card_last4":      card.Last4,
		"payment_plan_id": in.PaymentPlanID,
		"attempts":        result.Attempts,
	})

	return &CollectResult{
		OrderID:       orderID,
		Amount:        in.Amount,
		RoundedAmount: amountText,
		Message:       "Payment submitted, the result will be delivered by the gateway callback.",
	}, nil
}

func (o *PaymentOrchestrator) stampPlan(ctx context.Context, planID, orderID string) {
	if o.plans == nil {
		return
	}
	if err := o.plans.MarkCollectionAttempt(ctx, planID, orderID, o.now()); err != nil {
		helper.Error("Error stamping payment plan %s with order %s: %v", planID, orderID, err)
	}
}

// ListCustomerCards returns the cards stored under the customer's latest
// gateway user token.
func (o *PaymentOrchestrator) ListCustomerCards(ctx context.Context, customerID string) ([]lib.StoredCard, error) {
	span, ctx := apm.StartSpan(ctx, "ListCustomerCards", "service")
	defer span.End()

	token, err := o.latestToken(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return o.gateway.ListCards(ctx, token.UserToken, o.companyOf(token))
}

func (o *PaymentOrchestrator) DeleteCustomerCard(ctx context.Context, customerID, cardToken string) error {
	span, ctx := apm.StartSpan(ctx, "DeleteCustomerCard", "service")
	defer span.End()

	if strings.TrimSpace(cardToken) == "" {
		return apperr.InvalidErr("ctoken is required.", nil)
	}
	token, err := o.latestToken(ctx, customerID)
	if err != nil {
		return err
	}
	if err := o.gateway.DeleteCard(ctx, cardToken, token.UserToken, o.companyOf(token)); err != nil {
		return err
	}

	helper.Info("Stored card deleted for customer %s", customerID)
	return nil
}

func (o *PaymentOrchestrator) latestToken(ctx context.Context, customerID string) (*model.GatewayUserToken, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, apperr.InvalidErr("customer_id is required.", nil)
	}
	token, err := o.tokens.FindLatestByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("error loading gateway user token: %w", err)
	}
	if token == nil {
		return nil, apperr.NotFoundErr("No stored card token found for this customer.")
	}
	return token, nil
}

func (o *PaymentOrchestrator) companyOf(token *model.GatewayUserToken) string {
	if token.CompanyID == "" {
		return o.cfg.DefaultCompanyID
	}
	return token.CompanyID
}
