package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/models"
)

const productColumns = `id, name, description, price, image, bestseller, created_at`

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Bestseller, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	p.CreatedAt = s.timestamp()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, s.q(`
			INSERT INTO products (name, description, price, image, bestseller, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id
		`), p.Name, p.Description, p.Price, p.Image, p.Bestseller, p.CreatedAt).Scan(&p.ID)
		if err != nil {
			return err
		}
		return s.replaceSizes(ctx, tx, p.ID, p.Sizes)
	})
}

// UpdateProduct overwrites the product's fields. An empty Image keeps the
// current one. Nil Sizes keeps the current stock rows; a non-nil slice,
// even an empty one, replaces them.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			UPDATE products
			SET name = ?, description = ?, price = ?, bestseller = ?,
			    image = CASE WHEN ? = '' THEN image ELSE ? END
			WHERE id = ?
		`), p.Name, p.Description, p.Price, p.Bestseller, p.Image, p.Image, p.ID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrNotFound
		}
		if p.Sizes == nil {
			return nil
		}
		return s.replaceSizes(ctx, tx, p.ID, p.Sizes)
	})
}

func (s *Store) replaceSizes(ctx context.Context, tx *sql.Tx, productID int64, sizes []models.SizeStock) error {
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM product_sizes WHERE product_id = ?`), productID); err != nil {
		return err
	}
	for _, sz := range sizes {
		_, err := tx.ExecContext(ctx, s.q(`INSERT INTO product_sizes (product_id, size, quantity) VALUES (?, ?, ?)`),
			productID, string(sz.Size), sz.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM product_sizes WHERE product_id = ?`), id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM products WHERE id = ?`), id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.getProduct(ctx, s.DB, id)
}

func (s *Store) getProduct(ctx context.Context, db querier, id int64) (*models.Product, error) {
	p, err := scanProduct(db.QueryRowContext(ctx, s.q(`SELECT `+productColumns+` FROM products WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadSizes(ctx, db, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProducts returns products newest first; bestsellersOnly narrows the
// listing to flagged products.
func (s *Store) ListProducts(ctx context.Context, bestsellersOnly bool) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if bestsellersOnly {
		query += ` WHERE bestseller = ?`
		args = append(args, true)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.DB.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range products {
		if err := s.loadSizes(ctx, s.DB, &products[i]); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// loadSizes fills p.Sizes in the fixed size order and recomputes TotalStock.
func (s *Store) loadSizes(ctx context.Context, db querier, p *models.Product) error {
	rows, err := db.QueryContext(ctx, s.q(`SELECT size, quantity FROM product_sizes WHERE product_id = ?`), p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	bySize := map[models.Size]int{}
	for rows.Next() {
		var size string
		var qty int
		if err := rows.Scan(&size, &qty); err != nil {
			return err
		}
		bySize[models.Size(size)] = qty
	}
	if err := rows.Err(); err != nil {
		return err
	}

	p.Sizes = []models.SizeStock{}
	for _, size := range models.Sizes {
		if qty, ok := bySize[size]; ok {
			p.Sizes = append(p.Sizes, models.SizeStock{Size: size, Quantity: qty})
		}
	}
	p.ComputeTotalStock()
	return nil
}

func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}
