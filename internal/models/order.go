package models

import "time"

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentDigital PaymentMethod = "digital"
	PaymentSplit   PaymentMethod = "split"
)

// PaymentMethods dans l'ordre d'affichage de la caisse.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCard, PaymentDigital, PaymentSplit}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentDigital, PaymentSplit:
		return true
	}
	return false
}

// Label : libellé utilisé dans les rapports.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCash:
		return "Cash Payment"
	case PaymentCard:
		return "Credit Card"
	case PaymentDigital:
		return "Online / QR"
	case PaymentSplit:
		return "Split Payment"
	}
	return string(m)
}

type OrderStatus string

const (
	OrderCompleted OrderStatus = "completed"
	OrderRefunded  OrderStatus = "refunded"
)

// Order : instantané immuable du panier au moment de l'encaissement.
type Order struct {
	ID            string        `json:"id"`
	Items         []CartItem    `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	Total         float64       `json:"total"`
	Profit        float64       `json:"profit"` // total - coût - taxe
	PaymentMethod PaymentMethod `json:"payment_method"`
	CreatedAt     time.Time     `json:"created_at"`
	CashierID     string        `json:"cashier_id"`
	Status        OrderStatus   `json:"status"`
}

func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

func (o Order) Clone() Order {
	out := o
	out.Items = make([]CartItem, len(o.Items))
	for i, item := range o.Items {
		out.Items[i] = item.Clone()
	}
	return out
}
