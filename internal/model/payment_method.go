package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentMethod is the closed set of payment methods a sale may carry.
// The string value is the label the backend stores.
type PaymentMethod string

const (
	Card     PaymentMethod = "Tarjeta"
	Cash     PaymentMethod = "Efectivo"
	Transfer PaymentMethod = "Transferencia"
)

// PaymentMethods lists the methods in display order
var PaymentMethods = []PaymentMethod{Card, Cash, Transfer}

var paymentMethodAliases = map[string]PaymentMethod{
	"tarjeta":       Card,
	"card":          Card,
	"efectivo":      Cash,
	"cash":          Cash,
	"transferencia": Transfer,
	"transfer":      Transfer,
}

// ParsePaymentMethod accepts the backend label or the English name,
// case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	if m, ok := paymentMethodAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// Valid reports whether m is one of the known methods
func (m PaymentMethod) Valid() bool {
	switch m {
	case Card, Cash, Transfer:
		return true
	}
	return false
}

// Label returns the display name, or "N/A" for anything outside the set
func (m PaymentMethod) Label() string {
	if !m.Valid() {
		return "N/A"
	}
	return string(m)
}

// UnmarshalJSON keeps unknown labels verbatim so that a sale with an
// unexpected method still decodes; Valid reports the mismatch.
func (m *PaymentMethod) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if parsed, err := ParsePaymentMethod(s); err == nil {
		*m = parsed
		return nil
	}
	*m = PaymentMethod(s)
	return nil
}
