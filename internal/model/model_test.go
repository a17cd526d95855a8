package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestProductPriceFromText(t *testing.T) {
	raw := []byte(`[
		{"id_producto": 1, "nombre": "Papas", "precio": "2.50", "stock": 10},
		{"id_producto": 2, "nombre": "Oreo", "precio": 3.80, "stock": 5}
	]`)

	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !products[0].Price.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("Expected text price 2.5, got %s", products[0].Price)
	}
	if !products[1].Price.Equal(decimal.RequireFromString("3.8")) {
		t.Errorf("Expected numeric price 3.8, got %s", products[1].Price)
	}
}

func TestFoldDetailsLastWins(t *testing.T) {
	details := []SaleDetail{
		{ProductID: 1, Quantity: 2},
		{ProductID: 3, Quantity: 1},
		{ProductID: 1, Quantity: 7},
	}

	products := FoldDetails(details)
	if len(products) != 2 {
		t.Fatalf("Expected 2 distinct products, got %d", len(products))
	}
	if products[1] != 7 {
		t.Errorf("Expected last occurrence (7) for product 1, got %d", products[1])
	}
	if products[3] != 1 {
		t.Errorf("Expected 1 for product 3, got %d", products[3])
	}

	if got := (Sale{}).FoldDetails(); len(got) != 0 {
		t.Errorf("Expected empty map for sale without details, got %v", got)
	}
}

func TestDetailsTotal(t *testing.T) {
	details := []SaleDetail{
		{ProductID: 4, Quantity: 2, UnitPrice: decimal.RequireFromString("1.20")},
		{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("2.50")},
	}
	if got := DetailsTotal(details); !got.Equal(decimal.RequireFromString("9.90")) {
		t.Errorf("Expected 9.90, got %s", got)
	}
	if got := DetailsTotal(nil); !got.IsZero() {
		t.Errorf("Expected zero total, got %s", got)
	}
}

func TestParsePaymentMethod(t *testing.T) {
	cases := map[string]PaymentMethod{
		"Tarjeta":       Card,
		"card":          Card,
		"Cash":          Cash,
		"efectivo":      Cash,
		" Transfer ":    Transfer,
		"TRANSFERENCIA": Transfer,
	}
	for in, want := range cases {
		got, err := ParsePaymentMethod(in)
		if err != nil {
			t.Errorf("ParsePaymentMethod(%q) returned error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParsePaymentMethod(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := ParsePaymentMethod("Bitcoin"); err == nil {
		t.Error("Expected error for unknown payment method")
	}
}

func TestPaymentMethodJSON(t *testing.T) {
	var s Sale
	if err := json.Unmarshal([]byte(`{"id_venta": 9, "metodo_pago": "Cheque", "total_venta": "1"}`), &s); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if s.Method.Valid() {
		t.Error("Expected unknown method to be invalid")
	}
	if s.Method.Label() != "N/A" {
		t.Errorf("Expected N/A label, got %s", s.Method.Label())
	}

	out, err := json.Marshal(SaleInput{ClientID: 1, Method: Cash, Details: []SaleDetail{
		{ProductID: 4, Quantity: 2, UnitPrice: decimal.RequireFromString("1.20")},
	}})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"id_cliente":1,"metodo_pago":"Efectivo","detalles":[{"id_producto":4,"cantidad":2,"precio_unitario":1.2}]}`
	if string(out) != want {
		t.Errorf("Unexpected body:\n got  %s\n want %s", out, want)
	}
}
