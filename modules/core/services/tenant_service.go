package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/core/domain/entities/tenant"
	"github.com/vantagecrm/vantage/pkg/composables"
)

// TenantService manages tenant records. Tenants are infrastructure, not
// policy objects; the coarse guard is the only check here.
type TenantService struct {
	repo tenant.Repository
}

func NewTenantService(repo tenant.Repository) *TenantService {
	return &TenantService{repo: repo}
}

func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	var entity *tenant.Tenant
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		entity, err = s.repo.GetByID(txCtx, id)
		return err
	})
	return entity, err
}

func (s *TenantService) GetBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	var entity *tenant.Tenant
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		entity, err = s.repo.GetBySubdomain(txCtx, subdomain)
		return err
	})
	return entity, err
}

func (s *TenantService) GetAll(ctx context.Context) ([]*tenant.Tenant, error) {
	var entities []*tenant.Tenant
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		entities, err = s.repo.GetAll(txCtx)
		return err
	})
	return entities, err
}

func (s *TenantService) Create(ctx context.Context, entity *tenant.Tenant) (*tenant.Tenant, error) {
	if err := authorizeCore(ctx, TenantsAuthzObject, "create"); err != nil {
		return nil, err
	}
	var created *tenant.Tenant
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.Create(txCtx, entity)
		return err
	})
	return created, err
}

func (s *TenantService) Update(ctx context.Context, entity *tenant.Tenant) (*tenant.Tenant, error) {
	if err := authorizeCore(ctx, TenantsAuthzObject, "update"); err != nil {
		return nil, err
	}
	var updated *tenant.Tenant
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.repo.Update(txCtx, entity)
		return err
	})
	return updated, err
}
