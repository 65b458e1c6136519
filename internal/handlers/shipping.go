package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/shipping"
)

func ListGovernorates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, shipping.All())
}

type shippingCostResponse struct {
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	GovernorateName string          `json:"governorateName"`
}

func ShippingCost(w http.ResponseWriter, r *http.Request) {
	g, err := shipping.Resolve(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shippingCostResponse{ShippingCost: g.ShippingCost, GovernorateName: g.Name})
}

func GetGovernorate(w http.ResponseWriter, r *http.Request) {
	g, err := shipping.Resolve(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}
