package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/regeshengen/water-quality-api/internal/common"
	"github.com/regeshengen/water-quality-api/internal/domain/model"
	"github.com/regeshengen/water-quality-api/internal/domain/repository"
)

// Actor is the authenticated identity behind a request.
type Actor struct {
	ID   string
	Role model.Role
}

type ProductService struct {
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

func NewProductService(productRepo repository.ProductRepository, userRepo repository.UserRepository) *ProductService {
	return &ProductService{productRepo: productRepo, userRepo: userRepo}
}

type CreateProductRequest struct {
	Code       string  `json:"id_product"`
	CustomerID *string `json:"customer_id,omitempty"`
}

type UpdateProductRequest struct {
	Code *string `json:"id_product,omitempty"`
}

func (s *ProductService) Create(ctx context.Context, req CreateProductRequest, actor Actor) (*model.Product, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, common.Errorf("id_product is required: %w", common.ErrBadRequest)
	}
	if err := s.ensureCodeFree(ctx, code, ""); err != nil {
		return nil, err
	}

	requestedOwner := ""
	if req.CustomerID != nil {
		requestedOwner = strings.TrimSpace(*req.CustomerID)
	}

	var ownerID string
	switch actor.Role {
	case model.RoleAdministrator:
		if requestedOwner == "" {
			return nil, common.Errorf("customer_id is required when an administrator creates a product: %w", common.ErrBadRequest)
		}
		owner, err := s.userRepo.FindByID(ctx, requestedOwner)
		if err != nil {
			return nil, common.StoreError("failed to load customer", err)
		}
		ownerID = owner.ID
	case model.RoleCustomer:
		if requestedOwner != "" && requestedOwner != actor.ID {
			return nil, common.Errorf("customers can only create products for themselves: %w", common.ErrForbidden)
		}
		ownerID = actor.ID
	default:
		return nil, common.Errorf("role %q cannot create products: %w", actor.Role, common.ErrForbidden)
	}

	product := &model.Product{
		ID:         uuid.NewString(),
		Code:       code,
		CustomerID: ownerID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, common.StoreError("failed to create product", err)
	}

	created, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		return nil, common.StoreError("failed to load product", err)
	}
	return created, nil
}

// FindAll lists what the actor may see. An unrecognised role gets an empty
// list rather than an error.
func (s *ProductService) FindAll(ctx context.Context, actor Actor) ([]model.Product, error) {
	var (
		products []model.Product
		err      error
	)
	switch actor.Role {
	case model.RoleAdministrator:
		products, err = s.productRepo.List(ctx)
	case model.RoleCustomer:
		products, err = s.productRepo.ListByCustomer(ctx, actor.ID)
	default:
		return []model.Product{}, nil
	}
	if err != nil {
		return nil, common.StoreError("failed to list products", err)
	}
	return products, nil
}

func (s *ProductService) FindOne(ctx context.Context, id string, actor Actor) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, common.StoreError("failed to load product", err)
	}

	switch actor.Role {
	case model.RoleAdministrator:
		return product, nil
	case model.RoleCustomer:
		if !product.OwnedBy(actor.ID) {
			return nil, common.Errorf("product %s belongs to another customer: %w", id, common.ErrForbidden)
		}
		return product, nil
	default:
		return nil, common.Errorf("role %q cannot access products: %w", actor.Role, common.ErrForbidden)
	}
}

func (s *ProductService) Update(ctx context.Context, id string, req UpdateProductRequest, actor Actor) (*model.Product, error) {
	product, err := s.FindOne(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if code == "" {
			return nil, common.Errorf("id_product cannot be empty: %w", common.ErrBadRequest)
		}
		if code != product.Code {
			if err := s.ensureCodeFree(ctx, code, product.ID); err != nil {
				return nil, err
			}
			product.Code = code
		}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, common.StoreError("failed to update product", err)
	}
	return product, nil
}

func (s *ProductService) Remove(ctx context.Context, id string, actor Actor) error {
	if _, err := s.FindOne(ctx, id, actor); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return common.StoreError("failed to delete product", err)
	}
	return nil
}

// ensureCodeFree fails with ErrConflict when a product other than exceptID
// already uses code.
func (s *ProductService) ensureCodeFree(ctx context.Context, code, exceptID string) error {
	existing, err := s.productRepo.FindByCode(ctx, code)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return nil
	case err != nil:
		return common.StoreError("failed to check id_product", err)
	case existing.ID != exceptID:
		return common.Errorf("product with id_product %q already exists: %w", code, common.ErrConflict)
	}
	return nil
}
