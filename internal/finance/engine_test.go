package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeLoanEconomics(t *testing.T) {
	t.Run("standard 30 percent over 3 installments", func(t *testing.T) {
		eco, err := ComputeLoanEconomics(dec("1000"), dec("30"), 3)
		require.NoError(t, err)

		assert.True(t, eco.TotalAmount.Equal(dec("1300")), "totalAmount = %s", eco.TotalAmount)
		assert.True(t, eco.TotalInterest.Equal(dec("300")), "totalInterest = %s", eco.TotalInterest)
		// 1300/3 does not divide evenly; installments must still sum back
		// to the total within a cent.
		diff := eco.InstallmentAmount.Mul(decimal.NewFromInt(3)).Sub(eco.TotalAmount).Abs()
		assert.True(t, diff.LessThan(dec("0.01")), "drift = %s", diff)
	})

	t.Run("zero interest keeps principal", func(t *testing.T) {
		eco, err := ComputeLoanEconomics(dec("500"), decimal.Zero, 5)
		require.NoError(t, err)

		assert.True(t, eco.TotalAmount.Equal(dec("500")))
		assert.True(t, eco.InstallmentAmount.Equal(dec("100")))
		assert.True(t, eco.TotalInterest.IsZero())
	})

	t.Run("single installment equals total", func(t *testing.T) {
		eco, err := ComputeLoanEconomics(dec("2000"), dec("25"), 1)
		require.NoError(t, err)

		assert.True(t, eco.InstallmentAmount.Equal(eco.TotalAmount))
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := ComputeLoanEconomics(decimal.Zero, dec("30"), 3)
		assert.ErrorIs(t, err, ErrNonPositiveAmount)

		_, err = ComputeLoanEconomics(dec("-100"), dec("30"), 3)
		assert.ErrorIs(t, err, ErrNonPositiveAmount)

		_, err = ComputeLoanEconomics(dec("1000"), dec("-1"), 3)
		assert.ErrorIs(t, err, ErrNegativeRate)

		_, err = ComputeLoanEconomics(dec("1000"), dec("30"), 0)
		assert.ErrorIs(t, err, ErrInvalidInstallments)
	})
}

func TestComputeOverdue(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("ten days overdue", func(t *testing.T) {
		due := today.AddDate(0, 0, -10)
		o := ComputeOverdue(dec("1000"), decimal.Zero, &due, today, dec("0.1"), dec("2"))

		assert.Equal(t, 10, o.DaysOverdue)
		assert.True(t, o.DailyInterest.Equal(dec("10")), "dailyInterest = %s", o.DailyInterest)
		assert.True(t, o.LateFee.Equal(dec("20")), "lateFee = %s", o.LateFee)
		assert.True(t, o.TotalOverdue.Equal(dec("1030")), "totalOverdue = %s", o.TotalOverdue)
	})

	t.Run("partial payment shrinks the base", func(t *testing.T) {
		due := today.AddDate(0, 0, -10)
		o := ComputeOverdue(dec("1000"), dec("600"), &due, today, dec("0.1"), dec("2"))

		assert.True(t, o.DailyInterest.Equal(dec("4")))
		assert.True(t, o.LateFee.Equal(dec("8")))
		assert.True(t, o.TotalOverdue.Equal(dec("412")))
	})

	t.Run("future due date yields zeros", func(t *testing.T) {
		due := today.AddDate(0, 0, 5)
		o := ComputeOverdue(dec("1000"), decimal.Zero, &due, today, dec("0.1"), dec("2"))

		assert.Equal(t, 0, o.DaysOverdue)
		assert.True(t, o.TotalOverdue.IsZero())
	})

	t.Run("due today yields zeros", func(t *testing.T) {
		due := today
		o := ComputeOverdue(dec("1000"), decimal.Zero, &due, today, dec("0.1"), dec("2"))

		assert.Equal(t, 0, o.DaysOverdue)
		assert.True(t, o.TotalOverdue.IsZero())
	})

	t.Run("settled loan past due yields zeros", func(t *testing.T) {
		due := today.AddDate(0, 0, -30)
		o := ComputeOverdue(dec("1000"), dec("1000"), &due, today, dec("0.1"), dec("2"))

		assert.Equal(t, 0, o.DaysOverdue)
		assert.True(t, o.DailyInterest.IsZero())
		assert.True(t, o.LateFee.IsZero())
		assert.True(t, o.TotalOverdue.IsZero())
	})

	t.Run("overpaid loan yields zeros", func(t *testing.T) {
		due := today.AddDate(0, 0, -30)
		o := ComputeOverdue(dec("1000"), dec("1200"), &due, today, dec("0.1"), dec("2"))

		assert.True(t, o.TotalOverdue.IsZero())
	})

	t.Run("nil due date yields zeros", func(t *testing.T) {
		o := ComputeOverdue(dec("1000"), decimal.Zero, nil, today, dec("0.1"), dec("2"))

		assert.Equal(t, 0, o.DaysOverdue)
		assert.True(t, o.TotalOverdue.IsZero())
	})

	t.Run("idempotent for a fixed reference time", func(t *testing.T) {
		due := today.AddDate(0, 0, -7)
		first := ComputeOverdue(dec("1000"), dec("200"), &due, today, dec("0.1"), dec("2"))
		second := ComputeOverdue(dec("1000"), dec("200"), &due, today, dec("0.1"), dec("2"))

		assert.True(t, first.TotalOverdue.Equal(second.TotalOverdue))
		assert.Equal(t, first.DaysOverdue, second.DaysOverdue)
	})
}

func TestDeriveStatus(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	past := today.AddDate(0, 0, -3)
	future := today.AddDate(0, 0, 3)

	t.Run("paid is terminal", func(t *testing.T) {
		assert.Equal(t, "paid", DeriveStatus("paid", dec("1000"), decimal.Zero, &past, today))
	})

	t.Run("settled by payments", func(t *testing.T) {
		assert.Equal(t, "paid", DeriveStatus("active", dec("1000"), dec("1000"), &past, today))
	})

	t.Run("past due with balance", func(t *testing.T) {
		assert.Equal(t, "overdue", DeriveStatus("active", dec("1000"), dec("100"), &past, today))
	})

	t.Run("manual overdue reverts when not past due", func(t *testing.T) {
		assert.Equal(t, "active", DeriveStatus("overdue", dec("1000"), decimal.Zero, &future, today))
	})

	t.Run("no due date stays active", func(t *testing.T) {
		assert.Equal(t, "active", DeriveStatus("active", dec("1000"), decimal.Zero, nil, today))
	})
}
