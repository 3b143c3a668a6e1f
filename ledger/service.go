package ledger

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"gorm.io/gorm"
)

type ledgerServiceImpl struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *ledgerServiceImpl {
	return &ledgerServiceImpl{
		db: db,
	}
}

type TransactionView interface {
	createQuery() TransactionView
	Branch(branch ledger_core.BranchContext) TransactionView
	AccountID(id uint) TransactionView
	Type(ttype ledger_core.TransactionType) TransactionView
	Reference(ref string) TransactionView
	Search(keyword string) TransactionView
	TimeRange(trange *ledger_iface.TimeFilterRange) TransactionView
	Page(page *ledger_iface.PageFilter, pageinfo *ledger_iface.PageInfo) TransactionView
	Sort(sort ledger_iface.SortType) TransactionView
	Count(c *int64) TransactionView
	Iterate(handle func(d *ledger_core.AccountTransaction) error) error
	Err() error
}

type transactionViewImpl struct {
	db    *gorm.DB
	query *gorm.DB
	err   error
}

func NewTransactionView(db *gorm.DB) TransactionView {
	return &transactionViewImpl{
		db: db,
	}
}

func (l *transactionViewImpl) createQuery() TransactionView {
	l.query = l.
		db.
		Model(&ledger_core.AccountTransaction{})
	return l
}

// Branch implements TransactionView.
func (l *transactionViewImpl) Branch(branch ledger_core.BranchContext) TransactionView {
	l.query = branch.ScopeTransactions(l.query)
	return l
}

// AccountID implements TransactionView.
func (l *transactionViewImpl) AccountID(id uint) TransactionView {
	if id == 0 {
		return l
	}

	l.query = l.
		query.
		Where("account_transactions.account_id = ?", id)
	return l
}

// Type implements TransactionView.
func (l *transactionViewImpl) Type(ttype ledger_core.TransactionType) TransactionView {
	if ttype == "" {
		return l
	}

	l.query = l.
		query.
		Where("account_transactions.transaction_type = ?", ttype)
	return l
}

// Reference implements TransactionView.
func (l *transactionViewImpl) Reference(ref string) TransactionView {
	if ref == "" {
		return l
	}

	l.query = l.
		query.
		Where("account_transactions.reference_number = ?", ref)
	return l
}

// Search implements TransactionView.
func (l *transactionViewImpl) Search(keyword string) TransactionView {
	if keyword == "" {
		return l
	}

	keyword = strings.ToLower(keyword)
	l.query = l.
		query.
		Where("LOWER(account_transactions.description) LIKE ?", "%"+keyword+"%")
	return l
}

// TimeRange implements TransactionView.
func (l *transactionViewImpl) TimeRange(trange *ledger_iface.TimeFilterRange) TransactionView {
	if trange == nil {
		return l
	}

	if trange.StartDate != nil {
		l.query = l.
			query.
			Where("account_transactions.created_at > ?", *trange.StartDate)
	}

	if trange.EndDate != nil {
		l.query = l.
			query.
			Where("account_transactions.created_at <= ?", *trange.EndDate)
	}

	return l
}

// Sort implements TransactionView.
func (l *transactionViewImpl) Sort(sort ledger_iface.SortType) TransactionView {
	order := "desc"
	if sort == ledger_iface.SortAsc {
		order = "asc"
	}

	l.query = l.
		query.
		Order(fmt.Sprintf("account_transactions.created_at %s", order)).
		Order(fmt.Sprintf("account_transactions.id %s", order))

	return l
}

// Page implements TransactionView.
func (l *transactionViewImpl) Page(page *ledger_iface.PageFilter, pageinfo *ledger_iface.PageInfo) TransactionView {
	var err error
	var count int64

	page.Normalize()

	err = l.Count(&count).Err()
	if err != nil {
		return l.setErr(err)
	}

	var total int64 = int64(math.Ceil(float64(count) / float64(page.Limit)))
	pageinfo.TotalItems = count
	pageinfo.CurrentPage = page.Page
	pageinfo.TotalPage = total

	offset := (page.Page - 1) * page.Limit
	l.query = l.
		query.
		Offset(int(offset)).
		Limit(int(page.Limit))

	return l
}

// Count implements TransactionView.
func (l *transactionViewImpl) Count(c *int64) TransactionView {
	err := l.
		query.
		Session(&gorm.Session{}).
		Count(c).
		Error
	return l.setErr(err)
}

// Iterate implements TransactionView.
func (l *transactionViewImpl) Iterate(handle func(d *ledger_core.AccountTransaction) error) error {
	if l.err != nil {
		return l.err
	}

	rows, err := l.
		query.
		Session(&gorm.Session{}).
		Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		d := ledger_core.AccountTransaction{}
		err = l.db.ScanRows(rows, &d)
		if err != nil {
			return err
		}

		err = handle(&d)
		if err != nil {
			return err
		}
	}

	return rows.Err()
}

// Err implements TransactionView.
func (l *transactionViewImpl) Err() error {
	return l.err
}

func (l *transactionViewImpl) setErr(err error) *transactionViewImpl {
	if l.err != nil {
		return l
	}
	l.err = err
	return l
}
