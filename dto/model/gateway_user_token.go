package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GatewayUserToken maps a customer to the PayTR utoken of their card vault.
// Written by the tokenization flow; read-only here.
type GatewayUserToken struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID string             `bson:"customerId" json:"customer_id"`
	UserToken  string             `bson:"userToken" json:"user_token"`
	CompanyID  string             `bson:"companyId" json:"company_id"`
	SourceID   string             `bson:"sourceId" json:"source_id"`
	CreatedAt  time.Time          `bson:"createdAt" json:"created_at"`
}
