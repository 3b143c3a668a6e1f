package ledger_model

import (
	"time"

	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

type PurchaseOrder struct {
	ID              uint            `json:"id" gorm:"primarykey"`
	OrderNumber     string          `json:"order_number" gorm:"uniqueIndex;not null"`
	SupplierName    string          `json:"supplier_name"`
	Currency        string          `json:"currency" gorm:"size:3;not null"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:decimal(20,4);not null"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate" gorm:"type:decimal(20,8)"`
	TotalAmountBase decimal.Decimal `json:"total_amount_base" gorm:"type:decimal(20,4)"`
	TotalPaid       decimal.Decimal `json:"total_paid" gorm:"type:decimal(20,4);not null;default:0"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"index"`
	BranchID        uint            `json:"branch_id" gorm:"index"`
	CreatedByID     uint            `json:"created_by_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// Remaining is the unpaid part of the order in base currency.
func (p *PurchaseOrder) Remaining() decimal.Decimal {
	return p.TotalAmountBase.Sub(p.TotalPaid)
}

func (p *PurchaseOrder) RefreshStatus() {
	switch {
	case !p.Remaining().IsPositive():
		p.PaymentStatus = PaymentPaid
	case p.TotalPaid.IsPositive():
		p.PaymentStatus = PaymentPartial
	default:
		p.PaymentStatus = PaymentUnpaid
	}
}

func (p *PurchaseOrder) Related() *ledger_core.RelatedEntity {
	return &ledger_core.RelatedEntity{
		Type: ledger_core.PurchaseOrderEntity,
		ID:   p.ID,
	}
}

type PurchasePaymentStatus string

const (
	PurchasePaymentCompleted PurchasePaymentStatus = "completed"
	PurchasePaymentReversed  PurchasePaymentStatus = "reversed"
)

type PurchaseOrderPayment struct {
	ID                    uint                  `json:"id" gorm:"primarykey"`
	PurchaseOrderID       uint                  `json:"purchase_order_id" gorm:"index;not null"`
	AccountID             uint                  `json:"account_id" gorm:"index;not null"`
	TransactionID         uint                  `json:"transaction_id"`
	Amount                decimal.Decimal       `json:"amount" gorm:"type:decimal(20,4);not null"`
	Currency              string                `json:"currency" gorm:"size:3"`
	ExchangeRate          decimal.Decimal       `json:"exchange_rate" gorm:"type:decimal(20,8)"`
	BaseAmount            decimal.Decimal       `json:"base_amount" gorm:"type:decimal(20,4)"`
	Status                PurchasePaymentStatus `json:"status" gorm:"index"`
	ReversalTransactionID uint                  `json:"reversal_transaction_id"`
	CreatedByID           uint                  `json:"created_by_id"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

func (PurchaseOrderPayment) TableName() string {
	return "purchase_order_payments"
}
