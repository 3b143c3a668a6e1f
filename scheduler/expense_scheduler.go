package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pdcgo/ledger_service/clock"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_model"
	"github.com/pdcgo/ledger_service/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const expenseFailureHandle = "recurring_expense_failure"

// ExpenseScheduler posts recurring expenses. Schedules with auto_process
// off are never posted by a tick, they wait in Due for a manual Process.
type ExpenseScheduler struct {
	db         *gorm.DB
	clock      clock.Clock
	maxCatchUp int
}

func NewExpenseScheduler(db *gorm.DB, clk clock.Clock, maxCatchUp int) *ExpenseScheduler {
	if maxCatchUp < 1 {
		maxCatchUp = 1
	}

	return &ExpenseScheduler{
		db:         db,
		clock:      clk,
		maxCatchUp: maxCatchUp,
	}
}

func (s *ExpenseScheduler) Create(ctx context.Context, branch ledger_core.BranchContext, exp *ledger_model.RecurringExpense) error {
	exp.Name = strings.TrimSpace(exp.Name)
	if exp.Name == "" {
		return ledger_core.NewValidationError("name", "required")
	}
	if !exp.Amount.IsPositive() {
		return ledger_core.NewValidationError("amount", "amount must be greater than zero")
	}
	if !ledger_core.ValidAmountScale(exp.Amount) {
		return ledger_core.NewValidationError("amount", "more than %d decimal places", ledger_core.AmountPlaces)
	}
	if !exp.Frequency.Valid() {
		return ledger_core.NewValidationError("frequency", "unknown frequency %q", exp.Frequency)
	}
	if exp.StartDate.IsZero() {
		return ledger_core.NewValidationError("start_date", "required")
	}

	exp.StartDate = normalizeDate(exp.StartDate)
	exp.EndDate = normalizeEnd(exp.EndDate)
	if exp.EndDate != nil && exp.EndDate.Before(exp.StartDate) {
		return ledger_core.NewValidationError("end_date", "end date before start date")
	}

	db := s.db.WithContext(ctx)
	_, err := usableAccount(db, branch, "account_id", exp.AccountID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	exp.NextDueDate = exp.StartDate
	exp.LastProcessedDate = nil
	exp.IsActive = true
	exp.Status = ledger_model.ScheduleActive
	exp.ProcessCount = 0
	exp.BranchID = branch.BranchID
	exp.CreatedByID = branch.UserID
	exp.CreatedAt = now
	exp.UpdatedAt = now

	return db.Create(exp).Error
}

func (s *ExpenseScheduler) Get(ctx context.Context, branch ledger_core.BranchContext, id uint) (*ledger_model.RecurringExpense, error) {
	exp := ledger_model.RecurringExpense{}
	err := s.db.WithContext(ctx).Where("id = ?", id).Find(&exp).Error
	if err != nil {
		return nil, err
	}
	if exp.ID == 0 || !ownedBy(branch, exp.BranchID) {
		return nil, &ledger_core.NotFoundError{Entity: "recurring expense", ID: id}
	}
	return &exp, nil
}

func (s *ExpenseScheduler) List(ctx context.Context, branch ledger_core.BranchContext, status ledger_model.ScheduleStatus) ([]*ledger_model.RecurringExpense, error) {
	result := []*ledger_model.RecurringExpense{}
	query := scopeBranch(s.db.WithContext(ctx).Model(&ledger_model.RecurringExpense{}), branch, "recurring_expenses")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.
		Order("next_due_date asc, id asc").
		Find(&result).
		Error
	return result, err
}

func (s *ExpenseScheduler) Logs(ctx context.Context, branch ledger_core.BranchContext, id uint) ([]*ledger_model.ExpenseProcessLog, error) {
	_, err := s.Get(ctx, branch, id)
	if err != nil {
		return nil, err
	}

	result := []*ledger_model.ExpenseProcessLog{}
	err = s.db.WithContext(ctx).
		Where("recurring_expense_id = ?", id).
		Order("id asc").
		Find(&result).
		Error
	return result, err
}

// Due lists manually processed expenses that are due, or will be within
// their notification window.
func (s *ExpenseScheduler) Due(ctx context.Context, branch ledger_core.BranchContext, now time.Time) ([]*ledger_model.RecurringExpense, error) {
	today := normalizeDate(now)

	exps := []*ledger_model.RecurringExpense{}
	err := scopeBranch(s.db.WithContext(ctx).Model(&ledger_model.RecurringExpense{}), branch, "recurring_expenses").
		Where("is_active = ? AND auto_process = ?", true, false).
		Order("next_due_date asc, id asc").
		Find(&exps).
		Error
	if err != nil {
		return nil, err
	}

	result := []*ledger_model.RecurringExpense{}
	for _, exp := range exps {
		window := today.AddDate(0, 0, exp.NotificationDaysBefore)
		if exp.NextDueDate.After(window) || exp.Expired() {
			continue
		}
		result = append(result, exp)
	}

	return result, nil
}

func (s *ExpenseScheduler) Pause(ctx context.Context, branch ledger_core.BranchContext, id uint) (*ledger_model.RecurringExpense, error) {
	return s.mutate(ctx, branch, id, func(exp *ledger_model.RecurringExpense) {
		exp.IsActive = false
		exp.Status = ledger_model.SchedulePaused
	})
}

func (s *ExpenseScheduler) Resume(ctx context.Context, branch ledger_core.BranchContext, id uint) (*ledger_model.RecurringExpense, error) {
	return s.mutate(ctx, branch, id, func(exp *ledger_model.RecurringExpense) {
		exp.IsActive = true
		exp.Status = ledger_model.ScheduleActive
	})
}

func (s *ExpenseScheduler) mutate(
	ctx context.Context,
	branch ledger_core.BranchContext,
	id uint,
	change func(exp *ledger_model.RecurringExpense),
) (*ledger_model.RecurringExpense, error) {
	var exp *ledger_model.RecurringExpense

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		exp, err = lockExpense(tx, branch, id)
		if err != nil {
			return err
		}
		if exp.Expired() || exp.Status == ledger_model.ScheduleExpired {
			return expiredExpense(exp)
		}

		change(exp)
		exp.UpdatedAt = s.clock.Now()
		return tx.Save(exp).Error
	})

	return exp, err
}

func (s *ExpenseScheduler) Skip(ctx context.Context, branch ledger_core.BranchContext, id uint) (*ledger_model.RecurringExpense, *ledger_model.ExpenseProcessLog, error) {
	var exp *ledger_model.RecurringExpense
	var plog *ledger_model.ExpenseProcessLog
	now := s.clock.Now()

	err := ledger_core.OpenTransaction(ctx, s.db, func(tx *gorm.DB, bookmng ledger_core.BookManage) error {
		var err error
		exp, err = lockExpense(tx, branch, id)
		if err != nil {
			return err
		}
		if exp.Expired() || exp.Status == ledger_model.ScheduleExpired {
			return expiredExpense(exp)
		}

		plog = &ledger_model.ExpenseProcessLog{
			RecurringExpenseID: exp.ID,
			Status:             ledger_model.ExecutionSkipped,
			Amount:             exp.Amount,
			DueDate:            exp.NextDueDate,
			ProcessedAt:        now,
		}
		err = tx.Create(plog).Error
		if err != nil {
			return err
		}

		exp.Advance()
		exp.UpdatedAt = now
		bookmng.Touch("recurring_expense_skip")
		return tx.Save(exp).Error
	})

	return exp, plog, err
}

// Process posts the pending occurrence now. This is the manual confirmation
// path for expenses that are not auto processed.
func (s *ExpenseScheduler) Process(ctx context.Context, branch ledger_core.BranchContext, id uint) (*ledger_model.RecurringExpense, *ledger_model.ExpenseProcessLog, error) {
	_, err := s.Get(ctx, branch, id)
	if err != nil {
		return nil, nil, err
	}

	return s.process(ctx, id, s.clock.Now(), true)
}

func (s *ExpenseScheduler) Tick(ctx context.Context, now time.Time) (*TickResult, error) {
	now = now.UTC()
	log := logging.FromContext(ctx)

	ids := []uint{}
	err := s.db.WithContext(ctx).
		Model(&ledger_model.RecurringExpense{}).
		Where("is_active = ? AND auto_process = ? AND next_due_date <= ?", true, true, now).
		Order("next_due_date asc, id asc").
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, err
	}

	result := &TickResult{Schedules: len(ids)}
	for _, id := range ids {
		for i := 0; i < s.maxCatchUp; i++ {
			_, _, err := s.process(ctx, id, now, false)
			if errors.Is(err, errNotDue) {
				break
			}

			var expired *ledger_core.ScheduleExpiredError
			if errors.As(err, &expired) {
				break
			}

			if err != nil {
				result.Failed++
				log.Warn().Err(err).Uint("expense_id", id).Msg("recurring expense failed")
				break
			}
			result.Succeeded++
		}
	}

	return result, nil
}

func (s *ExpenseScheduler) process(ctx context.Context, id uint, now time.Time, manual bool) (*ledger_model.RecurringExpense, *ledger_model.ExpenseProcessLog, error) {
	var exp *ledger_model.RecurringExpense
	var plog *ledger_model.ExpenseProcessLog
	log := logging.FromContext(ctx).With().Uint("expense_id", id).Logger()

	err := ledger_core.OpenTransaction(ctx, s.db, func(tx *gorm.DB, bookmng ledger_core.BookManage) error {
		var err error
		exp, err = lockExpense(tx, ledger_core.BranchContext{AllBranches: true}, id)
		if err != nil {
			return err
		}
		if exp.Expired() || exp.Status == ledger_model.ScheduleExpired {
			return expiredExpense(exp)
		}
		if !manual && !exp.Due(now) {
			return errNotDue
		}

		date := exp.NextDueDate
		plog = &ledger_model.ExpenseProcessLog{
			RecurringExpenseID: exp.ID,
			Status:             ledger_model.ExecutionPending,
			Amount:             exp.Amount,
			DueDate:            date,
			ProcessedAt:        now,
			ReferenceNumber:    exp.Reference(date),
		}

		entry, err := bookmng.Post(ledger_core.SystemContext(exp.BranchID, exp.CreatedByID), &ledger_core.EntryPayload{
			AccountID:   exp.AccountID,
			Type:        ledger_core.Expense,
			Amount:      exp.Amount,
			Description: describeExpense(exp),
			Reference:   plog.ReferenceNumber,
			Related:     exp.Related(),
			EntryTime:   now,
		})
		if err != nil {
			return &occurrenceError{err: err}
		}

		plog.Status = ledger_model.ExecutionSuccess
		plog.TransactionID = entry.ID
		err = tx.Create(plog).Error
		if err != nil {
			return err
		}

		processedAt := now
		exp.LastProcessedDate = &processedAt
		exp.ProcessCount++
		exp.Advance()
		exp.UpdatedAt = now
		return tx.Save(exp).Error
	})

	var occ *occurrenceError
	switch {
	case err == nil:
		log.Info().
			Str("reference", plog.ReferenceNumber).
			Time("next_due_date", exp.NextDueDate).
			Msg("recurring expense posted")
		return exp, plog, nil

	case errors.As(err, &occ):
		plog.ID = 0
		plog.Status = ledger_model.ExecutionFailed
		plog.ErrorMessage = occ.err.Error()
		ferr := recordFailure(ctx, s.db, expenseFailureHandle, plog)
		if ferr != nil {
			log.Error().Err(ferr).Msg("cannot record failed expense")
		}
		return exp, plog, unwrapOccurrence(err)

	default:
		return exp, nil, err
	}
}

func describeExpense(exp *ledger_model.RecurringExpense) string {
	desc := exp.Name
	if exp.VendorName != "" {
		desc += " - " + exp.VendorName
	}
	if exp.Description != "" {
		desc += ": " + exp.Description
	}
	return desc
}

func lockExpense(tx *gorm.DB, branch ledger_core.BranchContext, id uint) (*ledger_model.RecurringExpense, error) {
	exp := ledger_model.RecurringExpense{}
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Find(&exp).
		Error
	if err != nil {
		return nil, err
	}
	if exp.ID == 0 || !ownedBy(branch, exp.BranchID) {
		return nil, &ledger_core.NotFoundError{Entity: "recurring expense", ID: id}
	}
	return &exp, nil
}

func expiredExpense(exp *ledger_model.RecurringExpense) error {
	end := exp.NextDueDate
	if exp.EndDate != nil {
		end = *exp.EndDate
	}
	return &ledger_core.ScheduleExpiredError{ScheduleID: exp.ID, EndDate: end}
}
