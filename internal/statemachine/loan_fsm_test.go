package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emprestafacil/emprestafacil-api/internal/models"
)

func TestLoanFSMMarkPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("from active", func(t *testing.T) {
		loan := &models.Loan{Status: models.LoanStatusActive}
		require.NoError(t, NewLoanFSM(loan).MarkPaid(ctx))
		assert.Equal(t, models.LoanStatusPaid, loan.Status)
	})

	t.Run("from overdue", func(t *testing.T) {
		loan := &models.Loan{Status: models.LoanStatusOverdue}
		require.NoError(t, NewLoanFSM(loan).MarkPaid(ctx))
		assert.Equal(t, models.LoanStatusPaid, loan.Status)
	})

	t.Run("already paid is rejected", func(t *testing.T) {
		loan := &models.Loan{Status: models.LoanStatusPaid}
		err := NewLoanFSM(loan).MarkPaid(ctx)
		assert.Error(t, err)
		assert.Equal(t, models.LoanStatusPaid, loan.Status)
	})
}

func TestLoanFSMMarkOverdue(t *testing.T) {
	ctx := context.Background()

	t.Run("from active", func(t *testing.T) {
		loan := &models.Loan{Status: models.LoanStatusActive}
		require.NoError(t, NewLoanFSM(loan).MarkOverdue(ctx))
		assert.Equal(t, models.LoanStatusOverdue, loan.Status)
	})

	t.Run("paid loan never goes overdue", func(t *testing.T) {
		loan := &models.Loan{Status: models.LoanStatusPaid}
		err := NewLoanFSM(loan).MarkOverdue(ctx)
		assert.Error(t, err)
		assert.Equal(t, models.LoanStatusPaid, loan.Status)
	})
}

func TestLoanFSMReactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("from overdue", func(t *testing.T) {
		loan := &models.Loan{Status: models.LoanStatusOverdue}
		require.NoError(t, NewLoanFSM(loan).Reactivate(ctx))
		assert.Equal(t, models.LoanStatusActive, loan.Status)
	})

	t.Run("from paid", func(t *testing.T) {
		loan := &models.Loan{Status: models.LoanStatusPaid}
		require.NoError(t, NewLoanFSM(loan).Reactivate(ctx))
		assert.Equal(t, models.LoanStatusActive, loan.Status)
	})

	t.Run("already active is rejected", func(t *testing.T) {
		loan := &models.Loan{Status: models.LoanStatusActive}
		err := NewLoanFSM(loan).Reactivate(ctx)
		assert.Error(t, err)
	})
}

func TestLoanFSMCan(t *testing.T) {
	loan := &models.Loan{Status: models.LoanStatusActive}
	m := NewLoanFSM(loan)

	assert.True(t, m.Can("mark_paid"))
	assert.True(t, m.Can("mark_overdue"))
	assert.False(t, m.Can("reactivate"))
	assert.Equal(t, models.LoanStatusActive, m.Current())
}
