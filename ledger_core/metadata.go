package ledger_core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type MetaKind string

const (
	NoMeta              MetaKind = ""
	TransferMetaKind    MetaKind = "transfer"
	ReversalMetaKind    MetaKind = "reversal"
	ManualMetaKind      MetaKind = "manual_entry"
	InstallmentMetaKind MetaKind = "installment"
	PaymentMetaKind     MetaKind = "payment"
)

type TransferType string

const (
	TransferOutgoing TransferType = "outgoing"
	TransferIncoming TransferType = "incoming"
)

type TransferMeta struct {
	TransferType         TransferType `json:"transfer_type"`
	CounterpartAccountID uint         `json:"counterpart_account_id"`
	CounterpartName      string       `json:"counterpart_account_name"`
	CounterpartCurrency  string       `json:"counterpart_currency"`
	ScheduledTransferID  uint         `json:"scheduled_transfer_id,omitempty"`
}

type ReversalMeta struct {
	OriginalTransactionID uint            `json:"original_transaction_id"`
	OriginalAmount        decimal.Decimal `json:"original_amount"`
	OriginalType          TransactionType `json:"original_type"`
	Reason                string          `json:"reason"`
}

type ManualEntryMeta struct {
	Manual          bool            `json:"manual"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	Reason          string          `json:"reason,omitempty"`
}

type InstallmentMeta struct {
	PlanID            uint `json:"plan_id"`
	InstallmentNumber int  `json:"installment_number"`
}

type PaymentMeta struct {
	PurchaseOrderID uint            `json:"purchase_order_id"`
	Currency        string          `json:"currency"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
}

// TxMetadata is a closed union keyed by Kind. Reversal stamp fields can sit
// on top of any variant.
type TxMetadata struct {
	Kind        MetaKind         `json:"kind,omitempty"`
	Transfer    *TransferMeta    `json:"transfer,omitempty"`
	Reversal    *ReversalMeta    `json:"reversal,omitempty"`
	Manual      *ManualEntryMeta `json:"manual,omitempty"`
	Installment *InstallmentMeta `json:"installment,omitempty"`
	Payment     *PaymentMeta     `json:"payment,omitempty"`

	Reversed              bool       `json:"reversed,omitempty"`
	ReversedAt            *time.Time `json:"reversed_at,omitempty"`
	ReversalReason        string     `json:"reversal_reason,omitempty"`
	ReversalTransactionID uint       `json:"reversal_transaction_id,omitempty"`
}

func NewTransferMeta(meta *TransferMeta) TxMetadata {
	return TxMetadata{Kind: TransferMetaKind, Transfer: meta}
}

func NewReversalMeta(meta *ReversalMeta) TxMetadata {
	return TxMetadata{Kind: ReversalMetaKind, Reversal: meta}
}

func NewManualMeta(meta *ManualEntryMeta) TxMetadata {
	return TxMetadata{Kind: ManualMetaKind, Manual: meta}
}

func NewInstallmentMeta(meta *InstallmentMeta) TxMetadata {
	return TxMetadata{Kind: InstallmentMetaKind, Installment: meta}
}

func NewPaymentMeta(meta *PaymentMeta) TxMetadata {
	return TxMetadata{Kind: PaymentMetaKind, Payment: meta}
}

// Validate checks that exactly the variant named by Kind is populated.
func (m TxMetadata) Validate() error {
	set := map[MetaKind]bool{
		TransferMetaKind:    m.Transfer != nil,
		ReversalMetaKind:    m.Reversal != nil,
		ManualMetaKind:      m.Manual != nil,
		InstallmentMetaKind: m.Installment != nil,
		PaymentMetaKind:     m.Payment != nil,
	}

	for kind, ok := range set {
		if ok && kind != m.Kind {
			return &ValidationError{
				Field:   "metadata",
				Message: fmt.Sprintf("variant %s set on %q metadata", kind, m.Kind),
			}
		}
	}

	if m.Kind != NoMeta && !set[m.Kind] {
		return &ValidationError{
			Field:   "metadata",
			Message: fmt.Sprintf("metadata kind %s without payload", m.Kind),
		}
	}

	return nil
}

// ExpectedKind returns the metadata kind required by a transaction type, or
// NoMeta when any kind is accepted.
func ExpectedKind(ttype TransactionType) MetaKind {
	switch ttype {
	case TransferIn, TransferOut:
		return TransferMetaKind
	case Reversal:
		return ReversalMetaKind
	case Adjustment:
		return ManualMetaKind
	default:
		return NoMeta
	}
}
