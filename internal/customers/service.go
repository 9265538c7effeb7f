package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db/models"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
)

// Service manages the customer reference data orders bill against.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Customer, error)
	Get(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]models.Customer, error)
}

// CreateInput registers a customer.
type CreateInput struct {
	TenantID uuid.UUID
	Name     string
	Email    *string
	Phone    *string
	Notes    *string
}

type service struct {
	repo Repository
}

// NewService builds a customers service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Customer, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}

	customer := &models.Customer{
		TenantID: input.TenantID,
		Name:     name,
		Email:    input.Email,
		Phone:    input.Phone,
		Notes:    input.Notes,
	}
	customer.ID = uuid.New()
	if _, err := s.repo.Create(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return customer, nil
}

func (s *service) Get(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error) {
	if tenantID == uuid.Nil || customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and customer id required")
	}
	customer, err := s.repo.FindByID(ctx, tenantID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID) ([]models.Customer, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	customers, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return customers, nil
}
