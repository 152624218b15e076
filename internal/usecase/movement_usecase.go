package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/domain"
	"github.com/finanza/ledger/internal/infrastructure/metrics"
)

// MovementUseCase orchestrates compound money movements: it runs the
// gate, creates the matched pending entries, and promotes them as one
// atomic group. A rejected movement never creates entries; a held
// movement leaves its entries pending for the sweep.
type MovementUseCase struct {
	txManager     TransactionManager
	retrier       Retrier
	accountRepo   AccountRepository
	entryRepo     EntryRepository
	operationRepo OperationRepository
	outboxRepo    OutboxRepository
	auditRepo     AuditRepository
	gate          *TransactionGate
	ledger        *LedgerUseCase
	idGen         IDGenerator
	metrics       *metrics.Metrics
}

// NewMovementUseCase creates a new MovementUseCase.
func NewMovementUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	operationRepo OperationRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	gate *TransactionGate,
	ledger *LedgerUseCase,
	idGen IDGenerator,
	m *metrics.Metrics,
) *MovementUseCase {
	return &MovementUseCase{
		txManager:     txManager,
		retrier:       retrier,
		accountRepo:   accountRepo,
		entryRepo:     entryRepo,
		operationRepo: operationRepo,
		outboxRepo:    outboxRepo,
		auditRepo:     auditRepo,
		gate:          gate,
		ledger:        ledger,
		idGen:         idGen,
		metrics:       m,
	}
}

// ExecuteTransfer moves money between two user accounts: a debit on
// the source and a credit on the destination, sharing one operation.
func (uc *MovementUseCase) ExecuteTransfer(ctx context.Context, actorUserID, fromAccountID, toAccountID string, amount decimal.Decimal, sourceTag string) (*domain.OperationResult, error) {
	return uc.Execute(ctx, domain.Movement{
		ActorUserID:   actorUserID,
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
		Amount:        amount,
		Type:          domain.MovementTypeTransfer,
		SourceTag:     sourceTag,
	})
}

// ExecuteDeposit credits a single account with external money.
func (uc *MovementUseCase) ExecuteDeposit(ctx context.Context, actorUserID, accountID string, amount decimal.Decimal, sourceTag string) (*domain.OperationResult, error) {
	return uc.Execute(ctx, domain.Movement{
		ActorUserID: actorUserID,
		ToAccountID: accountID,
		Amount:      amount,
		Type:        domain.MovementTypeDeposit,
		SourceTag:   sourceTag,
	})
}

// ExecuteAdminFund funds a user account from the system reserve. The
// reserve must exist and be active; that is an operator precondition,
// not something the gate heals on the fly.
func (uc *MovementUseCase) ExecuteAdminFund(ctx context.Context, actorUserID, toAccountID string, amount decimal.Decimal) (*domain.OperationResult, error) {
	return uc.Execute(ctx, domain.Movement{
		ActorUserID: actorUserID,
		ToAccountID: toAccountID,
		Amount:      amount,
		Type:        domain.MovementTypeAdminFund,
		SourceTag:   "system_reserve",
	})
}

// Execute runs one proposed movement through gate, append and promote.
func (uc *MovementUseCase) Execute(ctx context.Context, m domain.Movement) (*domain.OperationResult, error) {
	start := time.Now()

	if err := m.Validate(); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(m.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateSourceTag(m.SourceTag); err != nil {
		return nil, err
	}

	if m.Type == domain.MovementTypeAdminFund {
		reserve, err := uc.accountRepo.GetSystemReserve(ctx)
		if err != nil {
			return nil, err
		}

		if !reserve.IsActive() {
			return nil, fmt.Errorf("%w: reserve account %s is %s", domain.ErrSystemReserveMissing, reserve.ID, reserve.Status)
		}

		m.FromAccountID = reserve.ID
	}

	var result *domain.OperationResult

	run := func() error {
		var err error

		result, err = uc.executeOnce(ctx, m)

		return err
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, run)
	} else {
		err = run()
	}

	if err != nil {
		return nil, err
	}

	uc.observe(m, result, time.Since(start))
	uc.audit(ctx, m, result)

	return result, nil
}

func (uc *MovementUseCase) executeOnce(ctx context.Context, m domain.Movement) (*domain.OperationResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	decision, state, err := uc.gate.Evaluate(txCtx, tx, m)
	if err != nil {
		return nil, err
	}

	if decision.Outcome == domain.OutcomeRejected {
		// No entries are ever created for a rejection; the caller
		// gets the reason code as an ordinary value.
		return &domain.OperationResult{
			Outcome: domain.OutcomeRejected,
			Reason:  decision.Reason,
		}, nil
	}

	now := time.Now().UTC()

	opStatus := domain.OperationStatusPosted
	if decision.Outcome == domain.OutcomeHeld {
		opStatus = domain.OperationStatusHeld
	}

	op := &domain.Operation{
		ID:            uc.idGen.Generate(),
		Type:          m.Type,
		ActorUserID:   m.ActorUserID,
		FromAccountID: m.FromAccountID,
		ToAccountID:   m.ToAccountID,
		Amount:        m.Amount,
		Status:        opStatus,
		Reason:        decision.Reason,
		SourceTag:     m.SourceTag,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.operationRepo.Create(txCtx, tx, op); err != nil {
		return nil, err
	}

	entries := uc.buildEntries(op, state, now)

	entryIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}

		if err := uc.entryRepo.Append(txCtx, tx, e); err != nil {
			return nil, err
		}

		entryIDs = append(entryIDs, e.ID)
	}

	var posted []*domain.Entry

	if decision.Outcome == domain.OutcomeApproved {
		posted, err = uc.ledger.PromoteTx(txCtx, tx, entryIDs, now)
		if err != nil {
			return nil, err
		}
	}

	if err := uc.emitMovementEvent(txCtx, tx, op, decision, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.ledger.invalidateBalances(ctx, posted)

	return &domain.OperationResult{
		OperationID: op.ID,
		Outcome:     decision.Outcome,
		Reason:      decision.Reason,
		EntryIDs:    entryIDs,
	}, nil
}

// buildEntries creates the matched pending drafts for one operation:
// a deposit is one credit; transfers and admin funding pair a debit
// with a credit.
func (uc *MovementUseCase) buildEntries(op *domain.Operation, state *GateState, now time.Time) []*domain.Entry {
	entries := make([]*domain.Entry, 0, 2)

	if op.Type != domain.MovementTypeDeposit {
		entries = append(entries, &domain.Entry{
			ID:          uc.idGen.Generate(),
			AccountID:   state.From.ID,
			UserID:      state.From.OwnerUserID,
			OperationID: op.ID,
			Direction:   domain.DirectionDebit,
			Amount:      op.Amount,
			Status:      domain.EntryStatusPending,
			SourceTag:   op.SourceTag,
			CreatedAt:   now,
		})
	}

	entries = append(entries, &domain.Entry{
		ID:          uc.idGen.Generate(),
		AccountID:   state.To.ID,
		UserID:      state.To.OwnerUserID,
		OperationID: op.ID,
		Direction:   domain.DirectionCredit,
		Amount:      op.Amount,
		Status:      domain.EntryStatusPending,
		SourceTag:   op.SourceTag,
		CreatedAt:   now,
	})

	return entries
}

func (uc *MovementUseCase) emitMovementEvent(ctx context.Context, tx Transaction, op *domain.Operation, decision domain.Decision, now time.Time) error {
	if uc.outboxRepo == nil {
		return nil
	}

	eventType := domain.EventTypeMovementPosted
	payload := map[string]any{
		"operation_id":    op.ID,
		"movement_type":   string(op.Type),
		"from_account_id": op.FromAccountID,
		"to_account_id":   op.ToAccountID,
		"amount":          op.Amount.String(),
		"source_tag":      op.SourceTag,
	}

	if decision.Outcome == domain.OutcomeHeld {
		eventType = domain.EventTypeMovementHeld
		payload["reason"] = string(decision.Reason)
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   op.ID,
		AggregateType: domain.AggregateTypeOperation,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

// GetOperation retrieves an operation by ID.
func (uc *MovementUseCase) GetOperation(ctx context.Context, id string) (*domain.Operation, error) {
	return uc.operationRepo.GetByID(ctx, id)
}

// ListOperationsByAccount lists operations touching an account.
func (uc *MovementUseCase) ListOperationsByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.operationRepo.ListByAccount(ctx, accountID, limit, offset)
}

// SweepReport summarizes one pass over held operations.
type SweepReport struct {
	Evaluated int
	Promoted  int
	Voided    int
	StillHeld int
	SweptAt   time.Time
}

// SweepHeld re-evaluates held operations. Operations whose
// preconditions now pass are promoted; operations whose actor ended
// up KYC-rejected are voided; the rest stay held.
func (uc *MovementUseCase) SweepHeld(ctx context.Context) (*SweepReport, error) {
	held, err := uc.operationRepo.ListHeld(ctx, SweepBatchSize)
	if err != nil {
		return nil, err
	}

	return uc.sweep(ctx, held)
}

// SweepHeldForUser re-evaluates one user's held operations, typically
// right after their KYC status changed.
func (uc *MovementUseCase) SweepHeldForUser(ctx context.Context, userID string) (*SweepReport, error) {
	held, err := uc.operationRepo.ListHeldByUser(ctx, userID, SweepBatchSize)
	if err != nil {
		return nil, err
	}

	return uc.sweep(ctx, held)
}

func (uc *MovementUseCase) sweep(ctx context.Context, held []*domain.Operation) (*SweepReport, error) {
	report := &SweepReport{SweptAt: time.Now().UTC()}

	for _, op := range held {
		outcome, err := uc.resumeOperation(ctx, op.ID)
		if err != nil {
			// One stuck operation must not wedge the whole sweep.
			continue
		}

		report.Evaluated++

		switch outcome {
		case domain.OutcomeApproved:
			report.Promoted++
		case domain.OutcomeRejected:
			report.Voided++
		default:
			report.StillHeld++
		}
	}

	if uc.metrics != nil {
		uc.metrics.SweepRuns.Inc()
		uc.metrics.SweepPromoted.Add(float64(report.Promoted))
		uc.metrics.SweepVoided.Add(float64(report.Voided))
	}

	return report, nil
}

func (uc *MovementUseCase) resumeOperation(ctx context.Context, operationID string) (domain.Outcome, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	op, err := uc.operationRepo.GetByIDForUpdate(txCtx, tx, operationID)
	if err != nil {
		return "", err
	}

	if !op.IsHeld() {
		// Another sweep got here first.
		return domain.OutcomeHeld, tx.Rollback(txCtx)
	}

	decision, _, err := uc.gate.Evaluate(txCtx, tx, op.Movement())
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()

	switch decision.Outcome {
	case domain.OutcomeApproved:
		entries, err := uc.entryRepo.ListByOperation(txCtx, op.ID)
		if err != nil {
			return "", err
		}

		pendingIDs := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Status == domain.EntryStatusPending {
				pendingIDs = append(pendingIDs, e.ID)
			}
		}

		posted, err := uc.ledger.PromoteTx(txCtx, tx, pendingIDs, now)
		if err != nil {
			return "", err
		}

		if err := uc.operationRepo.UpdateStatus(txCtx, tx, op.ID, domain.OperationStatusPosted, domain.ReasonNone, now); err != nil {
			return "", err
		}

		if err := uc.emitMovementEvent(txCtx, tx, op, domain.Approved(), now); err != nil {
			return "", err
		}

		if err := tx.Commit(txCtx); err != nil {
			return "", err
		}

		uc.ledger.invalidateBalances(ctx, posted)

		return domain.OutcomeApproved, nil

	case domain.OutcomeRejected:
		voided, err := uc.entryRepo.VoidByOperation(txCtx, tx, op.ID, now)
		if err != nil {
			return "", err
		}

		if err := uc.operationRepo.UpdateStatus(txCtx, tx, op.ID, domain.OperationStatusVoided, decision.Reason, now); err != nil {
			return "", err
		}

		if uc.outboxRepo != nil {
			event := &domain.OutboxEvent{
				ID:            uc.idGen.Generate(),
				AggregateID:   op.ID,
				AggregateType: domain.AggregateTypeOperation,
				EventType:     domain.EventTypeMovementVoided,
				Payload: map[string]any{
					"operation_id": op.ID,
					"reason":       string(decision.Reason),
				},
				CreatedAt: now,
			}
			if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
				return "", err
			}
		}

		if err := tx.Commit(txCtx); err != nil {
			return "", err
		}

		if uc.metrics != nil {
			uc.metrics.EntriesVoided.Add(float64(voided))
		}

		return domain.OutcomeRejected, nil

	default:
		// Preconditions still not met; leave everything as is.
		return domain.OutcomeHeld, tx.Rollback(txCtx)
	}
}

func (uc *MovementUseCase) observe(m domain.Movement, result *domain.OperationResult, elapsed time.Duration) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.MovementDuration.Observe(elapsed.Seconds())

	amount, _ := m.Amount.Float64()
	uc.metrics.MovementAmount.Observe(amount)

	switch result.Outcome {
	case domain.OutcomeApproved:
		uc.metrics.MovementsApproved.WithLabelValues(string(m.Type)).Inc()
	case domain.OutcomeHeld:
		uc.metrics.MovementsHeld.WithLabelValues(string(m.Type), string(result.Reason)).Inc()
	case domain.OutcomeRejected:
		uc.metrics.MovementsRejected.WithLabelValues(string(m.Type), string(result.Reason)).Inc()
	}
}

func (uc *MovementUseCase) audit(ctx context.Context, m domain.Movement, result *domain.OperationResult) {
	if uc.auditRepo == nil {
		return
	}

	status := string(domain.AuditStatusSuccess)
	if result.Outcome == domain.OutcomeRejected {
		status = string(domain.AuditStatusFailure)
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorUserID:  m.ActorUserID,
		Action:       string(domain.AuditActionMovementExecute),
		ResourceType: domain.AggregateTypeOperation,
		ResourceID:   result.OperationID,
		Detail: domain.JSON{
			"movement_type": string(m.Type),
			"amount":        m.Amount.String(),
			"outcome":       string(result.Outcome),
			"reason":        string(result.Reason),
		},
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}

	// Best effort; auditing must not fail the movement.
	_ = uc.auditRepo.Create(ctx, log)
}
