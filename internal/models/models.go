package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and totals go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Size is a garment size label.
type Size string

const (
	SizeXS   Size = "XS"
	SizeS    Size = "S"
	SizeM    Size = "M"
	SizeL    Size = "L"
	SizeXL   Size = "XL"
	SizeXXL  Size = "XXL"
	SizeXXXL Size = "XXXL"
)

var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeXXXL}

func (s Size) Valid() bool {
	for _, v := range Sizes {
		if s == v {
			return true
		}
	}
	return false
}

type SizeStock struct {
	Size     Size `json:"size"`
	Quantity int  `json:"quantity"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"` // data URI, /uploads/ path or remote URL
	Sizes       []SizeStock     `json:"sizes"`
	Bestseller  bool            `json:"bestseller"`
	TotalStock  int             `json:"totalStock"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// SizeEntry returns the stock entry for size, or nil when the product
// does not carry it.
func (p *Product) SizeEntry(size Size) *SizeStock {
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			return &p.Sizes[i]
		}
	}
	return nil
}

// ComputeTotalStock fills TotalStock from Sizes.
func (p *Product) ComputeTotalStock() {
	total := 0
	for _, s := range p.Sizes {
		total += s.Quantity
	}
	p.TotalStock = total
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderShipped, OrderDelivered:
		return true
	}
	return false
}

type OrderItem struct {
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"` // captured at order time
	Product      *Product        `json:"product"`     // nil once the product is deleted
	Quantity     int             `json:"quantity"`
	SelectedSize Size            `json:"selectedSize"`
	Price        decimal.Decimal `json:"price"` // unit price captured at order time
}

type Order struct {
	ID              int64           `json:"id"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	CustomerAddress string          `json:"customerAddress"`
	Governorate     int             `json:"governorate"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	Notes           string          `json:"notes"`
	OrderDate       time.Time       `json:"orderDate"`
}

type MessageStatus string

const (
	MessageNew  MessageStatus = "new"
	MessageRead MessageStatus = "read"
)

func (s MessageStatus) Valid() bool {
	return s == MessageNew || s == MessageRead
}

// Message is a contact-form submission.
type Message struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Subject   string        `json:"subject"`
	Body      string        `json:"message"`
	Status    MessageStatus `json:"status"`
	IPAddress string        `json:"ipAddress"`
	UserAgent string        `json:"userAgent"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
