package purchase_order

import (
	"github.com/pdcgo/ledger_service/exchange_rate"
	"gorm.io/gorm"
)

type purchaseOrderServiceImpl struct {
	db    *gorm.DB
	rates exchange_rate.Provider
}

func NewPurchaseOrderService(db *gorm.DB, rates exchange_rate.Provider) *purchaseOrderServiceImpl {
	return &purchaseOrderServiceImpl{
		db:    db,
		rates: rates,
	}
}
