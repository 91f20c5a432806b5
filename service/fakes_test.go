package service

import (
	"backoffice/dto/model"
	"backoffice/lib"
	"context"
	"errors"
	"sync"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeTokens struct {
	byCustomer map[string]*model.GatewayUserToken
	err        error
}

func (f *fakeTokens) FindLatestByCustomer(ctx context.Context, customerID string) (*model.GatewayUserToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byCustomer[customerID], nil
}

type fakeMerchantRepo struct {
	byCompany map[string]*model.MerchantConfig
	def       *model.MerchantConfig
	calls     int
}

func (f *fakeMerchantRepo) FindByCompany(ctx context.Context, companyID string) (*model.MerchantConfig, error) {
	f.calls++
	return f.byCompany[companyID], nil
}

func (f *fakeMerchantRepo) FindDefault(ctx context.Context) (*model.MerchantConfig, error) {
	return f.def, nil
}

type fakeGateway struct {
	rec        *recorder
	cards      []lib.StoredCard
	listErr    error
	deleteErr  error
	submitErr  error
	submitted  []lib.PaymentRequest
	deleted    []string
	submitCtxs []submitCall
	mu         sync.Mutex
}

func (f *fakeGateway) ListCards(ctx context.Context, userToken, companyID string) ([]lib.StoredCard, error) {
	f.rec.add("list:" + userToken + ":" + companyID)
	return f.cards, f.listErr
}

func (f *fakeGateway) DeleteCard(ctx context.Context, cardToken, userToken, companyID string) error {
	f.rec.add("delete:" + cardToken)
	f.mu.Lock()
	f.deleted = append(f.deleted, cardToken)
	f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeGateway) SubmitPayment(ctx context.Context, req lib.PaymentRequest) (lib.SubmissionResult, error) {
	f.rec.add("submit:" + req.OrderID)
	f.mu.Lock()
	f.submitted = append(f.submitted, req)
	_, hasDeadline := ctx.Deadline()
	f.submitCtxs = append(f.submitCtxs, submitCall{err: ctx.Err(), hasDeadline: hasDeadline})
	f.mu.Unlock()
	if f.submitErr != nil {
		return lib.SubmissionResult{Status: lib.SubmissionTransportError, Attempts: 3}, f.submitErr
	}
	return lib.SubmissionResult{Status: lib.SubmissionAccepted, HTTPStatus: 200, Body: "<html>ok</html>", Attempts: 1}, nil
}

type submitCall struct {
	err         error
	hasDeadline bool
}

type fakeSources struct {
	byID map[string]*model.SourcePayment
}

func (f *fakeSources) FindByID(ctx context.Context, id string) (*model.SourcePayment, error) {
	return f.byID[id], nil
}

type fakePayments struct {
	rec           *recorder
	rows          []model.PendingPayment
	err           error
	errAfterWrite error
	onInsert      func()
	mu            sync.Mutex
}

func (f *fakePayments) Insert(ctx context.Context, p *model.PendingPayment) error {
	f.rec.add("insert:" + p.OrderID)
	if f.err != nil {
		return f.err
	}
	if f.onInsert != nil {
		f.onInsert()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.OrderID == p.OrderID {
			return errors.New("duplicate orderId")
		}
	}
	f.rows = append(f.rows, *p)
	return f.errAfterWrite
}

func (f *fakePayments) FindByOrderID(ctx context.Context, orderID string) (*model.PendingPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].OrderID == orderID {
			return &f.rows[i], nil
		}
	}
	return nil, nil
}

type planStamp struct {
	planID  string
	orderID string
	at      time.Time
}

type fakePlans struct {
	rec    *recorder
	stamps []planStamp
	err    error
	due    []model.PaymentPlan
}

func (f *fakePlans) MarkCollectionAttempt(ctx context.Context, planID, orderID string, at time.Time) error {
	f.rec.add("stamp:" + planID)
	if f.err != nil {
		return f.err
	}
	f.stamps = append(f.stamps, planStamp{planID, orderID, at})
	return nil
}

func (f *fakePlans) FindDue(ctx context.Context, now time.Time, cooldown time.Duration, limit int) ([]model.PaymentPlan, error) {
	return f.due, nil
}
