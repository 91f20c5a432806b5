package service

import (
	"backoffice/dto/model"
	"backoffice/helper"
	"backoffice/pkg/apperr"
	"backoffice/repository"
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.elastic.co/apm"
)

// MerchantConfigResolver finds the virtual POS credentials for a company,
// falling back to the default row. Misses are never cached, and a ttl of
// zero or less disables the cache entirely.
type MerchantConfigResolver struct {
	repo             repository.MerchantConfigRepository
	cache            *cache.Cache
	defaultCompanyID string
}

func NewMerchantConfigResolver(repo repository.MerchantConfigRepository, ttl time.Duration, defaultCompanyID string) *MerchantConfigResolver {
	r := &MerchantConfigResolver{
		repo:             repo,
		defaultCompanyID: defaultCompanyID,
	}
	// go-cache reads a zero ttl as "never expire"
	if ttl > 0 {
		r.cache = cache.New(ttl, 2*ttl)
	}
	return r
}

func (r *MerchantConfigResolver) Resolve(ctx context.Context, companyID string) (*model.MerchantConfig, error) {
	span, ctx := apm.StartSpan(ctx, "Resolve", "service")
	defer span.End()

	if companyID == "" {
		companyID = r.defaultCompanyID
	}

	if r.cache != nil {
		if cached, found := r.cache.Get(companyID); found {
			return cached.(*model.MerchantConfig), nil
		}
	}

	cfg, err := r.repo.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("error loading merchant config for %s: %w", companyID, err)
	}

	if cfg == nil {
		cfg, err = r.repo.FindDefault(ctx)
		if err != nil {
			return nil, fmt.Errorf("error loading default merchant config: %w", err)
		}
	}

	if cfg == nil {
		helper.Error("No virtual POS configuration for company %s and no default", companyID)
		return nil, apperr.ConfigurationMissingErr(
			"Payment configuration is missing for this company.",
			fmt.Errorf("no merchant config for company %q", companyID),
		)
	}

	if r.cache != nil {
		r.cache.Set(companyID, cfg, cache.DefaultExpiration)
	}
	return cfg, nil
}

// Invalidate drops a cached entry, e.g. after credentials rotate.
func (r *MerchantConfigResolver) Invalidate(companyID string) {
	if r.cache == nil {
		return
	}
	r.cache.Delete(companyID)
}
