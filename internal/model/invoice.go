package model

import "time"

// Invoice status constants.
const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusSent  = "sent"
	InvoiceStatusPaid  = "paid"
)

// InvoiceItem is a single billable line on an invoice.
type InvoiceItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Amount returns the line total for this item.
func (i InvoiceItem) Amount() float64 {
	return i.Quantity * i.UnitPrice
}

// Invoice is a bill issued to a client. Monetary totals are derived
// from the line items and the tax rate; they are recomputed on every
// write rather than trusted from the caller.
type Invoice struct {
	ID     string `json:"id" db:"id"`
	Number string `json:"number" db:"number"`

	ClientID   string `json:"client_id" db:"client_id"`
	ClientName string `json:"client_name" db:"client_name"`

	Items []InvoiceItem `json:"items" db:"-"`

	Subtotal  float64 `json:"subtotal" db:"subtotal"`
	TaxRate   float64 `json:"tax_rate" db:"tax_rate"`
	TaxAmount float64 `json:"tax_amount" db:"tax_amount"`
	Total     float64 `json:"total" db:"total"`

	Status string `json:"status" db:"status"`

	IssuedAt time.Time  `json:"issued_at" db:"issued_at"`
	DueAt    time.Time  `json:"due_at" db:"due_at"`
	PaidAt   *time.Time `json:"paid_at,omitempty" db:"paid_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ComputeTotals recalculates Subtotal, TaxAmount, and Total from the
// line items and tax rate.
func (inv *Invoice) ComputeTotals() {
	var subtotal float64
	for _, item := range inv.Items {
		subtotal += item.Amount()
	}
	inv.Subtotal = subtotal
	inv.TaxAmount = subtotal * inv.TaxRate
	inv.Total = subtotal + inv.TaxAmount
}
