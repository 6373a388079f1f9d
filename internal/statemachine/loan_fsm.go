package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/emprestafacil/emprestafacil-api/internal/models"
)

// LoanFSM wraps a loan with its lifecycle state machine
type LoanFSM struct {
	loan *models.Loan
	fsm  *fsm.FSM
}

// NewLoanFSM creates a new loan state machine
func NewLoanFSM(loan *models.Loan) *LoanFSM {
	lfsm := &LoanFSM{
		loan: loan,
	}

	lfsm.fsm = fsm.NewFSM(
		loan.Status,
		fsm.Events{
			// active/overdue → paid
			{Name: "mark_paid", Src: []string{models.LoanStatusActive, models.LoanStatusOverdue}, Dst: models.LoanStatusPaid},

			// active → overdue
			{Name: "mark_overdue", Src: []string{models.LoanStatusActive}, Dst: models.LoanStatusOverdue},

			// overdue/paid → active (manual correction)
			{Name: "reactivate", Src: []string{models.LoanStatusOverdue, models.LoanStatusPaid}, Dst: models.LoanStatusActive},
		},
		fsm.Callbacks{},
	)

	return lfsm
}

// MarkPaid transitions the loan to paid state
func (l *LoanFSM) MarkPaid(ctx context.Context) error {
	if !l.loan.MayMarkPaid() {
		return fmt.Errorf("loan cannot be marked paid in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "mark_paid"); err != nil {
		return fmt.Errorf("failed to mark loan paid: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// MarkOverdue transitions the loan to overdue state
func (l *LoanFSM) MarkOverdue(ctx context.Context) error {
	if !l.loan.MayMarkOverdue() {
		return fmt.Errorf("loan cannot be marked overdue in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "mark_overdue"); err != nil {
		return fmt.Errorf("failed to mark loan overdue: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Reactivate transitions the loan back to active state
func (l *LoanFSM) Reactivate(ctx context.Context) error {
	if !l.loan.MayReactivate() {
		return fmt.Errorf("loan cannot be reactivated in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "reactivate"); err != nil {
		return fmt.Errorf("failed to reactivate loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Current returns the current state
func (l *LoanFSM) Current() string {
	return l.fsm.Current()
}

// Can checks if a transition is possible
func (l *LoanFSM) Can(event string) bool {
	return l.fsm.Can(event)
}
