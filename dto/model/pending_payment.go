package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentStatusWaiting = "waiting"
	PaymentStatusSuccess = "success"
	PaymentStatusError   = "error"
)

// PendingPayment is written once per collection attempt, before the gateway
// is called. Status transitions belong to the callback handler.
type PendingPayment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID       string             `bson:"orderId" json:"order_id"`
	Amount        float64            `bson:"amount" json:"amount"`
	AmountText    string             `bson:"amountText" json:"amount_text"`
	Currency      string             `bson:"currency" json:"currency"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	CustomerID    string             `bson:"customerId" json:"customer_id"`
	CompanyID     string             `bson:"companyId" json:"company_id"`
	MerchantID    string             `bson:"merchantId" json:"merchant_id"`
	SourceID      string             `bson:"sourceId,omitempty" json:"source_id,omitempty"`
	UserToken     string             `bson:"userToken" json:"-"`
	CardToken     string             `bson:"ctoken" json:"-"`
	PaymentPlanID string             `bson:"paymentPlanId,omitempty" json:"payment_plan_id,omitempty"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	UserIP        string             `bson:"userIp,omitempty" json:"user_ip,omitempty"`
	Status        string             `bson:"status" json:"status"`
	PaytrToken    string             `bson:"paytrToken" json:"-"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
}
