// Package shipping holds the static governorate table and flat shipping fees.
package shipping

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
)

type Governorate struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
}

func gov(id int, name string, fee int64) Governorate {
	return Governorate{ID: id, Name: name, ShippingCost: decimal.NewFromInt(fee)}
}

// table is never mutated after package init.
var table = []Governorate{
	gov(1, "Cairo", 30),
	gov(2, "Giza", 30),
	gov(3, "Alexandria", 40),
	gov(4, "Dakahlia", 50),
	gov(5, "Red Sea", 80),
	gov(6, "Beheira", 45),
	gov(7, "Faiyum", 55),
	gov(8, "Gharbia", 45),
	gov(9, "Ismailia", 50),
	gov(10, "Monufia", 40),
	gov(11, "Minya", 60),
	gov(12, "Qalyubia", 35),
	gov(13, "New Valley", 100),
	gov(14, "Suez", 50),
	gov(15, "Aswan", 90),
	gov(16, "Asyut", 70),
	gov(17, "Beni Suef", 55),
	gov(18, "Port Said", 60),
	gov(19, "Damietta", 50),
	gov(20, "Sharqia", 45),
	gov(21, "South Sinai", 120),
	gov(22, "Kafr El Sheikh", 50),
	gov(23, "Matrouh", 100),
	gov(24, "Luxor", 85),
	gov(25, "Qena", 75),
	gov(26, "North Sinai", 110),
	gov(27, "Sohag", 65),
}

var byID = func() map[int]Governorate {
	m := make(map[int]Governorate, len(table))
	for _, g := range table {
		m[g.ID] = g
	}
	return m
}()

// All returns a copy of the table in id order.
func All() []Governorate {
	out := make([]Governorate, len(table))
	copy(out, table)
	return out
}

func Lookup(id int) (Governorate, bool) {
	g, ok := byID[id]
	return g, ok
}

// ParseID parses a governorate id. A non-numeric id is a validation error,
// distinct from a well-formed id missing from the table.
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, apperr.Validation("invalid governorate id")
	}
	return id, nil
}

// Resolve parses and looks up s in one step.
func Resolve(s string) (Governorate, error) {
	id, err := ParseID(s)
	if err != nil {
		return Governorate{}, err
	}
	g, ok := Lookup(id)
	if !ok {
		return Governorate{}, apperr.NotFound("governorate not found")
	}
	return g, nil
}
