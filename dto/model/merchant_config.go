package model

import "time"

// MerchantConfig is a company's virtual POS credentials. StoreKey is the
// PayTR merchant salt and ProvisionPassword the merchant key used as the
// HMAC secret.
type MerchantConfig struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID         string    `gorm:"type:VARCHAR(64);index" json:"company_id"`
	MerchantID        string    `gorm:"type:VARCHAR(64);not null" json:"merchant_id"`
	StoreKey          string    `gorm:"type:VARCHAR(255);not null" json:"-"`
	ProvisionPassword string    `gorm:"type:VARCHAR(255);not null" json:"-"`
	TerminalID        string    `gorm:"type:VARCHAR(64)" json:"terminal_id"`
	BankID            string    `gorm:"type:VARCHAR(64)" json:"bank_id"`
	IsDefault         bool      `gorm:"not null;default:false;index" json:"is_default"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MerchantConfig) TableName() string {
	return "virtual_pos_configs"
}
