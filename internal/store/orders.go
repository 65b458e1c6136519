package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/models"
)

// ShortageError reports that a size no longer has the requested stock at
// the moment of the decrement.
type ShortageError struct {
	ProductID int64
	Size      models.Size
	Available int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d size %s: %d available", e.ProductID, e.Size, e.Available)
}

const orderColumns = `id, customer_name, customer_phone, customer_address, governorate, subtotal, shipping_cost, total_amount, status, notes, order_date`

// CreateOrder decrements stock for every item and inserts the order in one
// transaction. Each decrement is conditional on enough stock remaining; if
// any item falls short nothing is written and a *ShortageError is returned.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	if o.Status == "" {
		o.Status = models.OrderPending
	}
	o.OrderDate = s.timestamp()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, item := range o.Items {
			res, err := tx.ExecContext(ctx, s.q(`
				UPDATE product_sizes SET quantity = quantity - ?
				WHERE product_id = ? AND size = ? AND quantity >= ?
			`), item.Quantity, item.ProductID, string(item.SelectedSize), item.Quantity)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return s.shortage(ctx, tx, item.ProductID, item.SelectedSize)
			}
		}

		err := tx.QueryRowContext(ctx, s.q(`
			INSERT INTO orders (customer_name, customer_phone, customer_address, governorate, subtotal, shipping_cost, total_amount, status, notes, order_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`), o.CustomerName, o.CustomerPhone, o.CustomerAddress, o.Governorate, o.Subtotal, o.ShippingCost, o.TotalAmount,
			string(o.Status), o.Notes, o.OrderDate).Scan(&o.ID)
		if err != nil {
			return err
		}

		for i, item := range o.Items {
			_, err := tx.ExecContext(ctx, s.q(`
				INSERT INTO order_items (order_id, position, product_id, product_name, quantity, selected_size, price)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`), o.ID, i, item.ProductID, item.ProductName, item.Quantity, string(item.SelectedSize), item.Price)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) shortage(ctx context.Context, tx *sql.Tx, productID int64, size models.Size) error {
	var available int
	err := tx.QueryRowContext(ctx, s.q(`SELECT quantity FROM product_sizes WHERE product_id = ? AND size = ?`),
		productID, string(size)).Scan(&available)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return &ShortageError{ProductID: productID, Size: size, Available: available}
}

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	var status string
	err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress, &o.Governorate,
		&o.Subtotal, &o.ShippingCost, &o.TotalAmount, &status, &o.Notes, &o.OrderDate)
	if err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	return &o, nil
}

// GetOrder returns the order with its line items resolved to products.
func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(s.DB.QueryRowContext(ctx, s.q(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, o, map[int64]*models.Product{}); err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrders returns orders newest first. limit <= 0 returns all of them.
func (s *Store) ListOrders(ctx context.Context, limit, offset int) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY order_date DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := s.DB.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	products := map[int64]*models.Product{}
	for i := range orders {
		if err := s.loadItems(ctx, &orders[i], products); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// loadItems fills o.Items. products caches lookups across orders; a
// deleted product resolves to nil.
func (s *Store) loadItems(ctx context.Context, o *models.Order, products map[int64]*models.Product) error {
	rows, err := s.DB.QueryContext(ctx, s.q(`
		SELECT product_id, product_name, quantity, selected_size, price
		FROM order_items WHERE order_id = ? ORDER BY position
	`), o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	o.Items = []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		var size string
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &size, &it.Price); err != nil {
			return err
		}
		it.SelectedSize = models.Size(size)
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	for i := range o.Items {
		id := o.Items[i].ProductID
		p, cached := products[id]
		if !cached {
			p, err = s.GetProduct(ctx, id)
			if errors.Is(err, ErrNotFound) {
				p, err = nil, nil
			}
			if err != nil {
				return err
			}
			products[id] = p
		}
		o.Items[i].Product = p
	}
	return nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	res, err := s.DB.ExecContext(ctx, s.q(`UPDATE orders SET status = ? WHERE id = ?`), string(status), id)
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
}

func (s *Store) CountOrders(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&count)
	return count, err
}
