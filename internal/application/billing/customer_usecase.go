package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/facturalo/facturalo-api/internal/application/dto"
	"github.com/facturalo/facturalo-api/internal/domain"
	"github.com/facturalo/facturalo-api/internal/domain/entity"
	"github.com/facturalo/facturalo-api/internal/domain/repository"
)

// CustomerUseCase ABM de clientes de la cuenta emisora.
type CustomerUseCase struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso de clientes.
func NewCustomerUseCase(customerRepo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{customerRepo: customerRepo}
}

// Create da de alta un cliente. La condición IVA vacía queda como
// Consumidor Final, que es lo que asume el clasificador.
func (uc *CustomerUseCase) Create(ctx context.Context, emitterCUIT string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	cond := in.IVACondition
	if cond == "" {
		cond = "Consumidor Final"
	}
	now := time.Now()
	c := &entity.Customer{
		ID:           uuid.New().String(),
		EmitterCUIT:  emitterCUIT,
		Name:         strings.TrimSpace(in.Name),
		TaxID:        strings.TrimSpace(in.TaxID),
		IVACondition: cond,
		Address:      in.Address,
		Email:        in.Email,
		Phone:        in.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.customerRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// List devuelve los clientes de la cuenta emisora.
func (uc *CustomerUseCase) List(ctx context.Context, emitterCUIT string) ([]dto.CustomerResponse, error) {
	customers, err := uc.customerRepo.ListByEmitter(ctx, emitterCUIT)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, *toCustomerResponse(c))
	}
	return out, nil
}

// Get devuelve un cliente por id, acotado a la cuenta emisora.
func (uc *CustomerUseCase) Get(ctx context.Context, emitterCUIT, id string) (*dto.CustomerResponse, error) {
	c, err := uc.customerRepo.GetByID(ctx, emitterCUIT, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toCustomerResponse(c), nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:           c.ID,
		Name:         c.Name,
		TaxID:        c.TaxID,
		IVACondition: c.IVACondition,
		Address:      c.Address,
		Email:        c.Email,
		Phone:        c.Phone,
	}
}
