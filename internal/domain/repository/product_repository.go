package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/regeshengen/water-quality-api/internal/common"
	"github.com/regeshengen/water-quality-api/internal/domain/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	ListByCustomer(ctx context.Context, customerID string) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
}

type pgProductRepository struct {
	db *sql.DB
}

func NewPgProductRepository(db *sql.DB) ProductRepository {
	return &pgProductRepository{db: db}
}

// productWithCustomer selects a product together with its owner so reads can
// embed the customer in the response.
const productWithCustomer = `
	SELECT p.id, p.id_product, p.customer_id, p.created_at, p.updated_at,
	       u.id, u.email, u.username, u.role, u.created_at, u.updated_at
	FROM products p
	JOIN users u ON u.id = p.customer_id`

func (r *pgProductRepository) Create(ctx context.Context, p *model.Product) error {
	query := `INSERT INTO products (id, id_product, customer_id)
	          VALUES ($1, $2, $3)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.ID, p.Code, p.CustomerID).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("product with id_product %q already exists: %w", p.Code, common.ErrConflict)
		}
		if common.IsForeignKeyViolation(err) {
			return fmt.Errorf("customer %s: %w", p.CustomerID, common.ErrNotFound)
		}
		return fmt.Errorf("pgProductRepository.Create: %w", err)
	}
	return nil
}

func (r *pgProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, productWithCustomer+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgProductRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *pgProductRepository) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, productWithCustomer+` WHERE p.id_product = $1`, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %q: %w", code, common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgProductRepository.FindByCode: %w", err)
	}
	return p, nil
}

func (r *pgProductRepository) List(ctx context.Context) ([]model.Product, error) {
	return r.list(ctx, productWithCustomer+` ORDER BY p.created_at ASC`)
}

func (r *pgProductRepository) ListByCustomer(ctx context.Context, customerID string) ([]model.Product, error) {
	return r.list(ctx, productWithCustomer+` WHERE p.customer_id = $1 ORDER BY p.created_at ASC`, customerID)
}

func (r *pgProductRepository) list(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgProductRepository.list: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("pgProductRepository.list: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProductRepository.list: %w", err)
	}
	return products, nil
}

// Update persists the product code. Ownership is immutable.
func (r *pgProductRepository) Update(ctx context.Context, p *model.Product) error {
	query := `UPDATE products SET id_product = $1, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $2
	          RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, p.Code, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %s: %w", p.ID, common.ErrNotFound)
		}
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("product with id_product %q already exists: %w", p.Code, common.ErrConflict)
		}
		return fmt.Errorf("pgProductRepository.Update: %w", err)
	}
	return nil
}

func (r *pgProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgProductRepository.Delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgProductRepository.Delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("product %s not found for deletion: %w", id, common.ErrNotFound)
	}
	return nil
}

func scanProduct(row rowScanner) (*model.Product, error) {
	p := &model.Product{Customer: &model.User{}}
	var role string
	err := row.Scan(
		&p.ID, &p.Code, &p.CustomerID, &p.CreatedAt, &p.UpdatedAt,
		&p.Customer.ID, &p.Customer.Email, &p.Customer.Username, &role, &p.Customer.CreatedAt, &p.Customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Customer.Role = model.Role(role)
	return p, nil
}
