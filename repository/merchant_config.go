package repository

import (
	"backoffice/dto/model"
	"context"
	"errors"
	"fmt"

	"go.elastic.co/apm"
	"gorm.io/gorm"
)

type MerchantConfigGorm struct {
	DB *gorm.DB
}

func NewMerchantConfigRepository(db *gorm.DB) *MerchantConfigGorm {
	return &MerchantConfigGorm{DB: db}
}

func (r *MerchantConfigGorm) FindByCompany(ctx context.Context, companyID string) (*model.MerchantConfig, error) {
	span, ctx := apm.StartSpan(ctx, "FindMerchantConfig", "repository")
	defer span.End()

	var cfg model.MerchantConfig
	if err := r.DB.WithContext(ctx).Where("company_id = ?", companyID).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching merchant config: %w", err)
	}
	return &cfg, nil
}

// FindDefault returns the oldest default-flagged row.
func (r *MerchantConfigGorm) FindDefault(ctx context.Context) (*model.MerchantConfig, error) {
	span, ctx := apm.StartSpan(ctx, "FindDefaultMerchantConfig", "repository")
	defer span.End()

	var cfg model.MerchantConfig
	if err := r.DB.WithContext(ctx).Where("is_default = ?", true).Order("id ASC").First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching default merchant config: %w", err)
	}
	return &cfg, nil
}
