package repository

import (
	"backoffice/dto/model"
	"context"
	"errors"
	"fmt"
	"time"

	"go.elastic.co/apm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionGatewayUserTokens = "gateway_user_tokens"
	CollectionSourcePayments    = "source_payments"
	CollectionPendingPayments   = "pending_payments"
	CollectionPaymentPlans      = "payment_plans"
)

// idFilter matches documents keyed by ObjectID or by a plain string id,
// depending on what the upstream flow stored.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": id}
}

type GatewayUserTokenMongo struct {
	collection *mongo.Collection
}

func NewGatewayUserTokenMongo(db *mongo.Database) *GatewayUserTokenMongo {
	return &GatewayUserTokenMongo{collection: db.Collection(CollectionGatewayUserTokens)}
}

func (r *GatewayUserTokenMongo) FindLatestByCustomer(ctx context.Context, customerID string) (*model.GatewayUserToken, error) {
	span, ctx := apm.StartSpan(ctx, "FindLatestGatewayUserToken", "repository")
	defer span.End()

	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var result model.GatewayUserToken
	err := r.collection.FindOne(ctx, bson.M{"customerId": customerID}, opts).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching gateway user token: %w", err)
	}

	return &result, nil
}

type SourcePaymentMongo struct {
	collection *mongo.Collection
}

func NewSourcePaymentMongo(db *mongo.Database) *SourcePaymentMongo {
	return &SourcePaymentMongo{collection: db.Collection(CollectionSourcePayments)}
}

func (r *SourcePaymentMongo) FindByID(ctx context.Context, id string) (*model.SourcePayment, error) {
	span, ctx := apm.StartSpan(ctx, "FindSourcePayment", "repository")
	defer span.End()

	if id == "" {
		return nil, nil
	}

	var result model.SourcePayment
	err := r.collection.FindOne(ctx, idFilter(id)).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching source payment: %w", err)
	}

	return &result, nil
}

type PendingPaymentMongo struct {
	collection *mongo.Collection
}

func NewPendingPaymentMongo(db *mongo.Database) *PendingPaymentMongo {
	return &PendingPaymentMongo{collection: db.Collection(CollectionPendingPayments)}
}

// EnsureIndexes creates the unique order id index.
func (r *PendingPaymentMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create pending payment index: %w", err)
	}
	return nil
}

func (r *PendingPaymentMongo) Insert(ctx context.Context, payment *model.PendingPayment) error {
	span, ctx := apm.StartSpan(ctx, "InsertPendingPayment", "repository")
	defer span.End()

	result, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		return fmt.Errorf("failed to insert pending payment %s: %w", payment.OrderID, err)
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		payment.ID = id
	}
	return nil
}

func (r *PendingPaymentMongo) FindByOrderID(ctx context.Context, orderID string) (*model.PendingPayment, error) {
	var result model.PendingPayment
	err := r.collection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching pending payment: %w", err)
	}
	return &result, nil
}

type PaymentPlanMongo struct {
	collection *mongo.Collection
}

func NewPaymentPlanMongo(db *mongo.Database) *PaymentPlanMongo {
	return &PaymentPlanMongo{collection: db.Collection(CollectionPaymentPlans)}
}

func (r *PaymentPlanMongo) MarkCollectionAttempt(ctx context.Context, planID, orderID string, at time.Time) error {
	span, ctx := apm.StartSpan(ctx, "MarkPaymentPlanAttempt", "repository")
	defer span.End()

	set := bson.M{"lastCollectionAttemptAt": at}
	// attempts that never reached the gateway keep the previous order id
	if orderID != "" {
		set["lastOrderId"] = orderID
	}
	update := bson.M{"$set": set}

	result, err := r.collection.UpdateOne(ctx, idFilter(planID), update)
	if err != nil {
		return fmt.Errorf("failed to update payment plan %s: %w", planID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("no payment plan found with ID: %s", planID)
	}
	return nil
}

// FindDue lists active plans whose due date has passed and which have not
// been attempted within cooldown, oldest due first.
func (r *PaymentPlanMongo) FindDue(ctx context.Context, now time.Time, cooldown time.Duration, limit int) ([]model.PaymentPlan, error) {
	span, ctx := apm.StartSpan(ctx, "FindDuePaymentPlans", "repository")
	defer span.End()

	filter := bson.M{
		"status":  model.PlanStatusActive,
		"dueDate": bson.M{"$lte": now},
		"$or": bson.A{
			bson.M{"lastCollectionAttemptAt": nil}, // also matches a missing field
			bson.M{"lastCollectionAttemptAt": bson.M{"$lt": now.Add(-cooldown)}},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching due payment plans: %w", err)
	}
	defer cursor.Close(ctx)

	var plans []model.PaymentPlan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("error decoding due payment plans: %w", err)
	}
	return plans, nil
}
