package service

import (
	"context"
	"errors"
	"testing"

	"github.com/regeshengen/water-quality-api/internal/common"
	"github.com/regeshengen/water-quality-api/internal/domain/mocks"
	"github.com/regeshengen/water-quality-api/internal/domain/model"
)

const (
	adminID = "a0000000-0000-4000-8000-000000000001"
	anaID   = "c0000000-0000-4000-8000-000000000001"
	bobID   = "c0000000-0000-4000-8000-000000000002"
)

var (
	admin    = Actor{ID: adminID, Role: model.RoleAdministrator}
	ana      = Actor{ID: anaID, Role: model.RoleCustomer}
	bob      = Actor{ID: bobID, Role: model.RoleCustomer}
	stranger = Actor{ID: "x", Role: model.Role("AUDITOR")}
)

func newProductFixture(t *testing.T) (*ProductService, *mocks.MockProductRepository) {
	t.Helper()
	users := mocks.NewMockUserRepository()
	users.Seed(
		model.User{ID: adminID, Email: "admin@example.com", Username: "admin", Role: model.RoleAdministrator},
		model.User{ID: anaID, Email: "ana@example.com", Username: "ana", Role: model.RoleCustomer},
		model.User{ID: bobID, Email: "bob@example.com", Username: "bob", Role: model.RoleCustomer},
	)
	products := mocks.NewMockProductRepository()
	products.Users = users
	users.Products = products
	return NewProductService(products, users), products
}

func TestProductService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       CreateProductRequest
		actor     Actor
		wantErr   error
		wantOwner string
	}{
		{
			name:      "customer without owner becomes owner",
			req:       CreateProductRequest{Code: "EXT_1"},
			actor:     ana,
			wantOwner: anaID,
		},
		{
			name:      "customer naming themselves",
			req:       CreateProductRequest{Code: "EXT_1", CustomerID: strPtr(anaID)},
			actor:     ana,
			wantOwner: anaID,
		},
		{
			name:    "customer naming someone else",
			req:     CreateProductRequest{Code: "EXT_1", CustomerID: strPtr(bobID)},
			actor:   ana,
			wantErr: common.ErrForbidden,
		},
		{
			name:      "administrator for a customer",
			req:       CreateProductRequest{Code: "EXT_1", CustomerID: strPtr(bobID)},
			actor:     admin,
			wantOwner: bobID,
		},
		{
			name:    "administrator without owner",
			req:     CreateProductRequest{Code: "EXT_1"},
			actor:   admin,
			wantErr: common.ErrBadRequest,
		},
		{
			name:    "administrator with unknown owner",
			req:     CreateProductRequest{Code: "EXT_1", CustomerID: strPtr("d0000000-0000-4000-8000-00000000dead")},
			actor:   admin,
			wantErr: common.ErrNotFound,
		},
		{
			name:    "unknown role",
			req:     CreateProductRequest{Code: "EXT_1"},
			actor:   stranger,
			wantErr: common.ErrForbidden,
		},
		{
			name:    "missing code",
			req:     CreateProductRequest{Code: "  "},
			actor:   ana,
			wantErr: common.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newProductFixture(t)
			product, err := svc.Create(context.Background(), tt.req, tt.actor)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if product.CustomerID != tt.wantOwner {
				t.Errorf("expected owner %s, got %s", tt.wantOwner, product.CustomerID)
			}
			if product.Customer == nil || product.Customer.ID != tt.wantOwner {
				t.Errorf("expected embedded customer %s, got %+v", tt.wantOwner, product.Customer)
			}
		})
	}
}

func TestProductService_CreateDuplicateCode(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProductFixture(t)

	if _, err := svc.Create(ctx, CreateProductRequest{Code: "EXT_1"}, ana); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, CreateProductRequest{Code: "EXT_1"}, bob); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateProductRequest{Code: "EXT_1", CustomerID: strPtr(bobID)}, admin); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict for administrator too, got %v", err)
	}
}

func TestProductService_CreateStoreFailureCarriesDetail(t *testing.T) {
	svc, products := newProductFixture(t)
	products.CreateErr = errors.New("value too long for type character varying(255)")

	_, err := svc.Create(context.Background(), CreateProductRequest{Code: "EXT_1"}, ana)
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
	var detailed *common.DetailedError
	if !errors.As(err, &detailed) || detailed.Detail == "" {
		t.Fatalf("expected a store detail, got %#v", err)
	}
}

func TestProductService_FindAll(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProductFixture(t)
	if _, err := svc.Create(ctx, CreateProductRequest{Code: "EXT_A"}, ana); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, CreateProductRequest{Code: "EXT_B"}, bob); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		actor Actor
		want  int
	}{
		{"administrator sees all", admin, 2},
		{"customer sees own", ana, 1},
		// Unrecognised roles get an empty list, not an error.
		{"unknown role sees nothing", stranger, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := svc.FindAll(ctx, tt.actor)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if products == nil {
				t.Fatal("expected a non-nil slice")
			}
			if len(products) != tt.want {
				t.Fatalf("expected %d products, got %d", tt.want, len(products))
			}
			for _, p := range products {
				if tt.actor.Role == model.RoleCustomer && p.CustomerID != tt.actor.ID {
					t.Errorf("customer saw product owned by %s", p.CustomerID)
				}
			}
		})
	}
}

func TestProductService_OwnershipChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("find", func(t *testing.T) {
		svc, _ := newProductFixture(t)
		p, err := svc.Create(ctx, CreateProductRequest{Code: "EXT_1"}, ana)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := svc.FindOne(ctx, p.ID, bob); !errors.Is(err, common.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if _, err := svc.FindOne(ctx, p.ID, ana); err != nil {
			t.Fatalf("owner should see product: %v", err)
		}
		if _, err := svc.FindOne(ctx, p.ID, admin); err != nil {
			t.Fatalf("administrator should see product: %v", err)
		}
		if _, err := svc.FindOne(ctx, "e0000000-0000-4000-8000-000000000000", admin); !errors.Is(err, common.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		svc, _ := newProductFixture(t)
		p, err := svc.Create(ctx, CreateProductRequest{Code: "EXT_1"}, ana)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := svc.Update(ctx, p.ID, UpdateProductRequest{Code: strPtr("EXT_2")}, bob); !errors.Is(err, common.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		updated, err := svc.Update(ctx, p.ID, UpdateProductRequest{Code: strPtr("EXT_2")}, admin)
		if err != nil {
			t.Fatalf("administrator update: %v", err)
		}
		if updated.Code != "EXT_2" || updated.CustomerID != anaID {
			t.Errorf("unexpected product after update: %+v", updated)
		}
	})

	t.Run("remove", func(t *testing.T) {
		svc, products := newProductFixture(t)
		p, err := svc.Create(ctx, CreateProductRequest{Code: "EXT_1"}, ana)
		if err != nil {
			t.Fatal(err)
		}
		if err := svc.Remove(ctx, p.ID, bob); !errors.Is(err, common.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if err := svc.Remove(ctx, p.ID, admin); err != nil {
			t.Fatalf("administrator remove: %v", err)
		}
		if products.Len() != 0 {
			t.Error("product still stored")
		}
		if err := svc.Remove(ctx, p.ID, admin); !errors.Is(err, common.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestProductService_UpdateCodeUniqueness(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProductFixture(t)
	first, err := svc.Create(ctx, CreateProductRequest{Code: "EXT_1"}, ana)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, CreateProductRequest{Code: "EXT_2"}, ana); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Update(ctx, first.ID, UpdateProductRequest{Code: strPtr("EXT_2")}, ana); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	// Re-submitting its own code is not a collision.
	if _, err := svc.Update(ctx, first.ID, UpdateProductRequest{Code: strPtr("EXT_1")}, ana); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Update(ctx, first.ID, UpdateProductRequest{Code: strPtr("")}, ana); !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestProductService_RemoveRaceReportsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, products := newProductFixture(t)
	p, err := svc.Create(ctx, CreateProductRequest{Code: "EXT_1"}, ana)
	if err != nil {
		t.Fatal(err)
	}
	// Another request deleted the row between the ownership check and the delete.
	products.DeleteErr = common.Errorf("product %s not found for deletion: %w", p.ID, common.ErrNotFound)

	if err := svc.Remove(ctx, p.ID, ana); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
