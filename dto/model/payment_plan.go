package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PlanStatusActive    = "active"
	PlanStatusPaid      = "paid"
	PlanStatusCancelled = "cancelled"
)

// PaymentPlan is one scheduled instalment of a customer's contract.
type PaymentPlan struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID              string             `bson:"customerId" json:"customer_id"`
	Amount                  float64            `bson:"amount" json:"amount"`
	Description             string             `bson:"description,omitempty" json:"description,omitempty"`
	DueDate                 time.Time          `bson:"dueDate" json:"due_date"`
	Status                  string             `bson:"status" json:"status"`
	LastOrderID             string             `bson:"lastOrderId,omitempty" json:"last_order_id,omitempty"`
	LastCollectionAttemptAt *time.Time         `bson:"lastCollectionAttemptAt,omitempty" json:"last_collection_attempt_at,omitempty"`
}
