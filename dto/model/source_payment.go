package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SourcePayment is the payment or link that first tokenized the customer's
// card. Only its contact fields are used here.
type SourcePayment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	UserIP    string             `bson:"userIp" json:"user_ip"`
	UserName  string             `bson:"userName" json:"user_name"`
	UserPhone string             `bson:"userPhone,omitempty" json:"user_phone,omitempty"`
	Brand     string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Staff     string             `bson:"staff,omitempty" json:"staff,omitempty"`
	CompanyID string             `bson:"companyId,omitempty" json:"company_id,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}
