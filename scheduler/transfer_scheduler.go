package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/pdcgo/ledger_service/clock"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_model"
	"github.com/pdcgo/ledger_service/ledger_transaction/transfer_transaction"
	"github.com/pdcgo/ledger_service/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const transferFailureHandle = "scheduled_transfer_failure"

type Upcoming struct {
	Schedule  *ledger_model.ScheduledTransfer
	DueDate   time.Time
	DaysUntil int
}

// TransferScheduler drives scheduled transfers. Each occurrence runs in its
// own ledger unit: both legs, the execution row and the date advance commit
// together or not at all.
type TransferScheduler struct {
	db         *gorm.DB
	clock      clock.Clock
	maxCatchUp int
}

func NewTransferScheduler(db *gorm.DB, clk clock.Clock, maxCatchUp int) *TransferScheduler {
	if maxCatchUp < 1 {
		maxCatchUp = 1
	}

	return &TransferScheduler{
		db:         db,
		clock:      clk,
		maxCatchUp: maxCatchUp,
	}
}

func (s *TransferScheduler) Create(ctx context.Context, branch ledger_core.BranchContext, sched *ledger_model.ScheduledTransfer) error {
	if sched.SourceAccountID == sched.DestinationAccountID {
		return ledger_core.NewValidationError("destination_account_id", "source and destination must differ")
	}
	if !sched.Amount.IsPositive() {
		return ledger_core.NewValidationError("amount", "amount must be greater than zero")
	}
	if !ledger_core.ValidAmountScale(sched.Amount) {
		return ledger_core.NewValidationError("amount", "more than %d decimal places", ledger_core.AmountPlaces)
	}
	if !sched.Frequency.Valid() {
		return ledger_core.NewValidationError("frequency", "unknown frequency %q", sched.Frequency)
	}
	if sched.StartDate.IsZero() {
		return ledger_core.NewValidationError("start_date", "required")
	}

	sched.StartDate = normalizeDate(sched.StartDate)
	sched.EndDate = normalizeEnd(sched.EndDate)
	if sched.EndDate != nil && sched.EndDate.Before(sched.StartDate) {
		return ledger_core.NewValidationError("end_date", "end date before start date")
	}

	db := s.db.WithContext(ctx)
	_, err := usableAccount(db, branch, "source_account_id", sched.SourceAccountID)
	if err != nil {
		return err
	}
	_, err = usableAccount(db, branch, "destination_account_id", sched.DestinationAccountID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	sched.NextExecutionDate = sched.StartDate
	sched.LastExecutedDate = nil
	sched.IsActive = true
	sched.Status = ledger_model.ScheduleActive
	sched.ExecutionCount = 0
	sched.BranchID = branch.BranchID
	sched.CreatedByID = branch.UserID
	sched.CreatedAt = now
	sched.UpdatedAt = now

	return db.Create(sched).Error
}

func (s *TransferScheduler) Get(ctx context.Context, branch ledger_core.BranchContext, id uint) (*ledger_model.ScheduledTransfer, error) {
	sched := ledger_model.ScheduledTransfer{}
	err := s.db.WithContext(ctx).Where("id = ?", id).Find(&sched).Error
	if err != nil {
		return nil, err
	}
	if sched.ID == 0 || !ownedBy(branch, sched.BranchID) {
		return nil, &ledger_core.NotFoundError{Entity: "scheduled transfer", ID: id}
	}
	return &sched, nil
}

func (s *TransferScheduler) List(ctx context.Context, branch ledger_core.BranchContext, status ledger_model.ScheduleStatus) ([]*ledger_model.ScheduledTransfer, error) {
	result := []*ledger_model.ScheduledTransfer{}
	query := scopeBranch(s.db.WithContext(ctx).Model(&ledger_model.ScheduledTransfer{}), branch, "scheduled_transfers")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.
		Order("next_execution_date asc, id asc").
		Find(&result).
		Error
	return result, err
}

func (s *TransferScheduler) Executions(ctx context.Context, branch ledger_core.BranchContext, id uint) ([]*ledger_model.TransferExecution, error) {
	_, err := s.Get(ctx, branch, id)
	if err != nil {
		return nil, err
	}

	result := []*ledger_model.TransferExecution{}
	err = s.db.WithContext(ctx).
		Where("scheduled_transfer_id = ?", id).
		Order("id asc").
		Find(&result).
		Error
	return result, err
}

func (s *TransferScheduler) Pause(ctx context.Context, branch ledger_core.BranchContext, id uint) (*ledger_model.ScheduledTransfer, error) {
	return s.mutate(ctx, branch, id, func(sched *ledger_model.ScheduledTransfer) {
		sched.IsActive = false
		sched.Status = ledger_model.SchedulePaused
	})
}

func (s *TransferScheduler) Resume(ctx context.Context, branch ledger_core.BranchContext, id uint) (*ledger_model.ScheduledTransfer, error) {
	return s.mutate(ctx, branch, id, func(sched *ledger_model.ScheduledTransfer) {
		sched.IsActive = true
		sched.Status = ledger_model.ScheduleActive
	})
}

func (s *TransferScheduler) mutate(
	ctx context.Context,
	branch ledger_core.BranchContext,
	id uint,
	change func(sched *ledger_model.ScheduledTransfer),
) (*ledger_model.ScheduledTransfer, error) {
	var sched *ledger_model.ScheduledTransfer

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sched, err = lockSchedule(tx, branch, id)
		if err != nil {
			return err
		}
		if sched.Expired() || sched.Status == ledger_model.ScheduleExpired {
			return expiredSchedule(sched)
		}

		change(sched)
		sched.UpdatedAt = s.clock.Now()
		return tx.Save(sched).Error
	})

	return sched, err
}

// Skip advances one occurrence without moving money.
func (s *TransferScheduler) Skip(ctx context.Context, branch ledger_core.BranchContext, id uint) (*ledger_model.ScheduledTransfer, *ledger_model.TransferExecution, error) {
	var sched *ledger_model.ScheduledTransfer
	var exec *ledger_model.TransferExecution
	now := s.clock.Now()

	err := ledger_core.OpenTransaction(ctx, s.db, func(tx *gorm.DB, bookmng ledger_core.BookManage) error {
		var err error
		sched, err = lockSchedule(tx, branch, id)
		if err != nil {
			return err
		}
		if sched.Expired() || sched.Status == ledger_model.ScheduleExpired {
			return expiredSchedule(sched)
		}

		exec = &ledger_model.TransferExecution{
			ScheduledTransferID: sched.ID,
			Status:              ledger_model.ExecutionSkipped,
			Amount:              sched.Amount,
			ScheduledDate:       sched.NextExecutionDate,
			ExecutedAt:          now,
		}
		err = tx.Create(exec).Error
		if err != nil {
			return err
		}

		sched.Advance()
		sched.UpdatedAt = now
		bookmng.Touch("scheduled_transfer_skip")
		return tx.Save(sched).Error
	})

	return sched, exec, err
}

// ExecuteNow runs the pending occurrence regardless of its date.
func (s *TransferScheduler) ExecuteNow(ctx context.Context, branch ledger_core.BranchContext, id uint) (*ledger_model.ScheduledTransfer, *ledger_model.TransferExecution, error) {
	_, err := s.Get(ctx, branch, id)
	if err != nil {
		return nil, nil, err
	}

	return s.execute(ctx, id, s.clock.Now(), true)
}

// Tick executes every auto executing schedule due at now. A schedule that
// missed several dates catches up at most maxCatchUp of them and stops at the
// first failure, leaving its date in place for the next tick.
func (s *TransferScheduler) Tick(ctx context.Context, now time.Time) (*TickResult, error) {
	now = now.UTC()
	log := logging.FromContext(ctx)

	ids := []uint{}
	err := s.db.WithContext(ctx).
		Model(&ledger_model.ScheduledTransfer{}).
		Where("is_active = ? AND auto_execute = ? AND next_execution_date <= ?", true, true, now).
		Order("next_execution_date asc, id asc").
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, err
	}

	result := &TickResult{Schedules: len(ids)}
	for _, id := range ids {
		for i := 0; i < s.maxCatchUp; i++ {
			_, _, err := s.execute(ctx, id, now, false)
			if errors.Is(err, errNotDue) {
				break
			}

			var expired *ledger_core.ScheduleExpiredError
			if errors.As(err, &expired) {
				break
			}

			if err != nil {
				result.Failed++
				log.Warn().Err(err).Uint("schedule_id", id).Msg("scheduled transfer failed")
				break
			}
			result.Succeeded++
		}
	}

	return result, nil
}

func (s *TransferScheduler) execute(ctx context.Context, id uint, now time.Time, manual bool) (*ledger_model.ScheduledTransfer, *ledger_model.TransferExecution, error) {
	var sched *ledger_model.ScheduledTransfer
	var exec *ledger_model.TransferExecution
	log := logging.FromContext(ctx).With().Uint("schedule_id", id).Logger()

	err := ledger_core.OpenTransaction(ctx, s.db, func(tx *gorm.DB, bookmng ledger_core.BookManage) error {
		var err error
		sched, err = lockSchedule(tx, ledger_core.BranchContext{AllBranches: true}, id)
		if err != nil {
			return err
		}
		if sched.Expired() || sched.Status == ledger_model.ScheduleExpired {
			return expiredSchedule(sched)
		}
		if !manual && !sched.Due(now) {
			return errNotDue
		}

		date := sched.NextExecutionDate
		exec = &ledger_model.TransferExecution{
			ScheduledTransferID: sched.ID,
			Status:              ledger_model.ExecutionPending,
			Amount:              sched.Amount,
			ScheduledDate:       date,
			ExecutedAt:          now,
			ReferenceNumber:     sched.Reference(date),
		}

		result, err := transfer_transaction.TransferWithBook(
			tx,
			bookmng,
			ledger_core.SystemContext(sched.BranchID, sched.CreatedByID),
			&transfer_transaction.TransferPayload{
				SourceAccountID:      sched.SourceAccountID,
				DestinationAccountID: sched.DestinationAccountID,
				Amount:               sched.Amount,
				Description:          sched.Description,
				Reference:            exec.ReferenceNumber,
				Related:              sched.Related(),
				ScheduledTransferID:  sched.ID,
				EntryTime:            now,
			},
		)
		if err != nil {
			return &occurrenceError{err: err}
		}

		exec.Status = ledger_model.ExecutionSuccess
		exec.OutTransactionID = result.Out.ID
		exec.InTransactionID = result.In.ID
		err = tx.Create(exec).Error
		if err != nil {
			return err
		}

		executedAt := now
		sched.LastExecutedDate = &executedAt
		sched.ExecutionCount++
		sched.Advance()
		sched.UpdatedAt = now
		return tx.Save(sched).Error
	})

	var occ *occurrenceError
	switch {
	case err == nil:
		log.Info().
			Str("reference", exec.ReferenceNumber).
			Time("next_execution_date", sched.NextExecutionDate).
			Msg("scheduled transfer executed")
		return sched, exec, nil

	case errors.As(err, &occ):
		exec.ID = 0
		exec.Status = ledger_model.ExecutionFailed
		exec.ErrorMessage = occ.err.Error()
		ferr := recordFailure(ctx, s.db, transferFailureHandle, exec)
		if ferr != nil {
			log.Error().Err(ferr).Msg("cannot record failed execution")
		}
		return sched, exec, unwrapOccurrence(err)

	default:
		return sched, nil, err
	}
}

// Upcoming lists schedules with notifications enabled whose next date falls
// inside their notification window.
func (s *TransferScheduler) Upcoming(ctx context.Context, branch ledger_core.BranchContext, now time.Time) ([]*Upcoming, error) {
	today := normalizeDate(now)

	scheds := []*ledger_model.ScheduledTransfer{}
	err := scopeBranch(s.db.WithContext(ctx).Model(&ledger_model.ScheduledTransfer{}), branch, "scheduled_transfers").
		Where("is_active = ? AND notification_enabled = ?", true, true).
		Order("next_execution_date asc, id asc").
		Find(&scheds).
		Error
	if err != nil {
		return nil, err
	}

	result := []*Upcoming{}
	for _, sched := range scheds {
		window := today.AddDate(0, 0, sched.NotificationDaysBefore)
		if sched.NextExecutionDate.After(window) || sched.Expired() {
			continue
		}

		result = append(result, &Upcoming{
			Schedule:  sched,
			DueDate:   sched.NextExecutionDate,
			DaysUntil: daysBetween(today, sched.NextExecutionDate),
		})
	}

	return result, nil
}

func lockSchedule(tx *gorm.DB, branch ledger_core.BranchContext, id uint) (*ledger_model.ScheduledTransfer, error) {
	sched := ledger_model.ScheduledTransfer{}
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Find(&sched).
		Error
	if err != nil {
		return nil, err
	}
	if sched.ID == 0 || !ownedBy(branch, sched.BranchID) {
		return nil, &ledger_core.NotFoundError{Entity: "scheduled transfer", ID: id}
	}
	return &sched, nil
}

func expiredSchedule(sched *ledger_model.ScheduledTransfer) error {
	end := sched.NextExecutionDate
	if sched.EndDate != nil {
		end = *sched.EndDate
	}
	return &ledger_core.ScheduleExpiredError{ScheduleID: sched.ID, EndDate: end}
}
