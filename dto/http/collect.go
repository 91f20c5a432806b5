package http

type CollectPaymentRequest struct {
	CustomerID    string  `json:"customer_id" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Description   string  `json:"description,omitempty" validate:"max=255"`
	PaymentPlanID string  `json:"payment_plan_id,omitempty"`
}

type CollectPaymentResponse struct {
	OrderID       string  `json:"order_id"`
	Amount        float64 `json:"amount"`
	RoundedAmount string  `json:"rounded_amount"`
	Message       string  `json:"message"`
}

type StoredCardResponse struct {
	CardToken   string `json:"ctoken"`
	Last4       string `json:"last_4"`
	ExpiryMonth string `json:"month"`
	ExpiryYear  string `json:"year"`
	Bank        string `json:"bank"`
	Brand       string `json:"brand"`
	RequireCVV  bool   `json:"require_cvv"`
}

type CreateLinkRequest struct {
	CompanyID      string  `json:"company_id"`
	Name           string  `json:"name" validate:"required,max=200"`
	Price          float64 `json:"price" validate:"required,gt=0"`
	Currency       string  `json:"currency,omitempty"`
	MaxInstallment int     `json:"max_installment" validate:"min=0,max=12"`
	LinkType       string  `json:"link_type" validate:"required,oneof=product collection"`
	Lang           string  `json:"lang,omitempty" validate:"omitempty,oneof=tr en"`
	Email          string  `json:"email,omitempty" validate:"omitempty,email"`
	MinCount       int     `json:"min_count,omitempty"`
	ExpiryDate     string  `json:"expiry_date,omitempty"`
}

type CreateLinkResponse struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}
