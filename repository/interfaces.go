package repository

import (
	"backoffice/dto/model"
	"context"
	"time"
)

// Finders return (nil, nil) when nothing matches; errors are reserved for
// storage failures.

type GatewayUserTokenRepository interface {
	FindLatestByCustomer(ctx context.Context, customerID string) (*model.GatewayUserToken, error)
}

type MerchantConfigRepository interface {
	FindByCompany(ctx context.Context, companyID string) (*model.MerchantConfig, error)
	FindDefault(ctx context.Context) (*model.MerchantConfig, error)
}

type SourcePaymentRepository interface {
	FindByID(ctx context.Context, id string) (*model.SourcePayment, error)
}

type PendingPaymentRepository interface {
	Insert(ctx context.Context, payment *model.PendingPayment) error
	FindByOrderID(ctx context.Context, orderID string) (*model.PendingPayment, error)
}

type PaymentPlanRepository interface {
	MarkCollectionAttempt(ctx context.Context, planID, orderID string, at time.Time) error
	FindDue(ctx context.Context, now time.Time, cooldown time.Duration, limit int) ([]model.PaymentPlan, error)
}

// Locker grants at most one holder per key. Release must be called with a
// context that is still alive.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl, wait time.Duration) (release func(context.Context) error, err error)
}
