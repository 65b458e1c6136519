// Package orders validates carts, prices them and places orders.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/models"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/shipping"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/store"
)

// Egyptian mobile numbers: 01, then 0/1/2/5, then eight digits.
var phoneRegex = regexp.MustCompile(`^01[0125][0-9]{8}$`)

func ValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

type Repository interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
}

type ItemInput struct {
	ProductID    int64
	Quantity     int
	SelectedSize models.Size
}

type PlaceOrderInput struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Governorate     string
	Items           []ItemInput
	Notes           string
}

type Engine struct {
	repo Repository
}

func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// Quote is a validated and priced cart, not yet persisted.
type Quote struct {
	Governorate  shipping.Governorate
	Items        []models.OrderItem
	Subtotal     decimal.Decimal
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
}

// Validate runs every check in order and prices the cart. It never writes.
func (e *Engine) Validate(ctx context.Context, in PlaceOrderInput) (*Quote, error) {
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.CustomerPhone) == "" ||
		strings.TrimSpace(in.CustomerAddress) == "" || strings.TrimSpace(in.Governorate) == "" || len(in.Items) == 0 {
		return nil, apperr.Validation("all required fields must be filled")
	}

	if !ValidPhone(strings.TrimSpace(in.CustomerPhone)) {
		return nil, apperr.Validation("invalid phone number")
	}

	gov, err := shipping.Resolve(in.Governorate)
	if err != nil {
		return nil, apperr.Conflict("invalid governorate")
	}

	q := &Quote{Governorate: gov, Subtotal: decimal.Zero}
	products := map[int64]*models.Product{}
	// requested accumulates per product and size so a cart that lists the
	// same size twice is checked against the combined quantity.
	requested := map[int64]map[models.Size]int{}

	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, apperr.Validation("quantity must be a positive integer")
		}

		product, ok := products[item.ProductID]
		if !ok {
			product, err = e.repo.GetProduct(ctx, item.ProductID)
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperr.NotFound("product not found")
			}
			if err != nil {
				return nil, apperr.Internal(err, "failed to load product")
			}
			products[item.ProductID] = product
			requested[item.ProductID] = map[models.Size]int{}
		}

		if item.SelectedSize == "" {
			return nil, apperr.Validation("size is required for product %s", product.Name)
		}
		if !item.SelectedSize.Valid() {
			return nil, apperr.Validation("invalid size %s", item.SelectedSize)
		}

		entry := product.SizeEntry(item.SelectedSize)
		if entry == nil {
			return nil, apperr.Conflict("size %s is not available for product %s", item.SelectedSize, product.Name)
		}

		want := requested[item.ProductID][item.SelectedSize] + item.Quantity
		if entry.Quantity < want {
			return nil, insufficientStock(product.Name, item.SelectedSize, entry.Quantity)
		}
		requested[item.ProductID][item.SelectedSize] = want

		q.Subtotal = q.Subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		q.Items = append(q.Items, models.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			Quantity:     item.Quantity,
			SelectedSize: item.SelectedSize,
			Price:        product.Price,
		})
	}

	q.ShippingCost = gov.ShippingCost
	q.Total = q.Subtotal.Add(q.ShippingCost)
	return q, nil
}

// PlaceOrder validates the cart, then decrements stock and saves the order
// atomically. On any failure no stock moves and no order exists.
func (e *Engine) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	q, err := e.Validate(ctx, in)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		CustomerAddress: strings.TrimSpace(in.CustomerAddress),
		Governorate:     q.Governorate.ID,
		Items:           q.Items,
		Subtotal:        q.Subtotal,
		ShippingCost:    q.ShippingCost,
		TotalAmount:     q.Total,
		Status:          models.OrderPending,
		Notes:           in.Notes,
	}

	if err := e.repo.CreateOrder(ctx, order); err != nil {
		var se *store.ShortageError
		if errors.As(err, &se) {
			// Stock moved between validation and the decrement.
			return nil, insufficientStock(nameOf(q.Items, se.ProductID), se.Size, se.Available)
		}
		return nil, apperr.Internal(err, "failed to create order")
	}

	slog.Info("Order placed", "order_id", order.ID, "items", len(order.Items), "total", order.TotalAmount.String())

	placed, err := e.repo.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load order")
	}
	return placed, nil
}

// SetStatus moves an order to one of the three known statuses and returns
// the updated order.
func (e *Engine) SetStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	st := models.OrderStatus(status)
	if !st.Valid() {
		return nil, apperr.Conflict("invalid status")
	}
	if err := e.repo.UpdateOrderStatus(ctx, id, st); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.Internal(err, "failed to update order")
	}
	o, err := e.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load order")
	}
	return o, nil
}

func insufficientStock(product string, size models.Size, available int) *apperr.Error {
	return apperr.Conflict("insufficient stock for %s - size %s. Available: %d", product, size, available)
}

func nameOf(items []models.OrderItem, productID int64) string {
	for _, it := range items {
		if it.ProductID == productID {
			return it.ProductName
		}
	}
	return fmt.Sprintf("product %d", productID)
}
