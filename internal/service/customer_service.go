package service

import (
	"context"
	"strings"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CustomerRequest) (*dto.CustomerResponse, error)
	Update(ctx context.Context, userID, id uuid.UUID, req dto.CustomerRequest) (*dto.CustomerResponse, error)
	SetBlocked(ctx context.Context, userID, id uuid.UUID, blocked bool) (*dto.CustomerResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	List(ctx context.Context, filter repository.CustomerFilter) (*dto.Page[dto.CustomerResponse], error)
}

type customerService struct {
	repo   repository.CustomerRepository
	audit  AuditService
	policy TxPolicy
}

func NewCustomerService(repo repository.CustomerRepository, audit AuditService, policy TxPolicy) CustomerService {
	return &customerService{repo: repo, audit: audit, policy: policy}
}

func (s *customerService) Create(ctx context.Context, userID uuid.UUID, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c := model.Customer{}
	if err := applyCustomerRequest(&c, req); err != nil {
		return nil, err
	}
	err := runTx(ctx, s.repo.DB(), s.policy, func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, &c); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, &userID, ActionCreateCustomer, "customers", c.ID.String())
	})
	if err != nil {
		return nil, err
	}
	return customerResponse(&c), nil
}

func (s *customerService) Update(ctx context.Context, userID, id uuid.UUID, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
	return s.mutate(ctx, userID, id, func(c *model.Customer) error {
		return applyCustomerRequest(c, req)
	})
}

// SetBlocked only affects new credit sales; the existing balance can still be paid.
func (s *customerService) SetBlocked(ctx context.Context, userID, id uuid.UUID, blocked bool) (*dto.CustomerResponse, error) {
	return s.mutate(ctx, userID, id, func(c *model.Customer) error {
		c.IsBlocked = blocked
		return nil
	})
}

// mutate edits the customer under its row lock so it cannot interleave with a
// credit sale's limit check.
func (s *customerService) mutate(ctx context.Context, userID, id uuid.UUID, edit func(*model.Customer) error) (*dto.CustomerResponse, error) {
	var c *model.Customer
	err := runTx(ctx, s.repo.DB(), s.policy, func(tx *gorm.DB) error {
		var err error
		if c, err = s.repo.FindForUpdate(ctx, tx, id); err != nil {
			return err
		}
		if err := edit(c); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, c); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, &userID, ActionUpdateCustomer, "customers", id.String())
	})
	if err != nil {
		return nil, err
	}
	return customerResponse(c), nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return customerResponse(c), nil
}

func (s *customerService) List(ctx context.Context, filter repository.CustomerFilter) (*dto.Page[dto.CustomerResponse], error) {
	filter.Search = strings.TrimSpace(filter.Search)
	customers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, *customerResponse(&customers[i]))
	}
	return &dto.Page[dto.CustomerResponse]{Data: out, Total: total, Page: pageOf(filter.Page), Limit: limitOf(filter.Page)}, nil
}

func applyCustomerRequest(c *model.Customer, req dto.CustomerRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apierror.Validation("name is required")
	}
	if req.CreditLimit.IsNegative() {
		return apierror.Validation("credit_limit must not be negative")
	}
	c.Name = name
	c.Phone = blankToNil(req.Phone)
	c.CPF = blankToNil(req.CPF)
	c.CreditLimit = req.CreditLimit
	return nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func customerResponse(c *model.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Phone:       c.Phone,
		CPF:         c.CPF,
		CreditLimit: c.CreditLimit,
		IsBlocked:   c.IsBlocked,
	}
}
