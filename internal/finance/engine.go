// Package finance implements the loan financial engine: pure functions
// that derive loan economics, overdue interest and penalties from
// explicit inputs. Nothing in this package touches storage or the
// clock; callers pass the reference time in.
package finance

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Input validation errors. The engine rejects malformed input instead
// of producing NaN or infinite figures.
var (
	ErrNonPositiveAmount   = errors.New("valor do empréstimo deve ser positivo")
	ErrNegativeRate        = errors.New("taxa de juros não pode ser negativa")
	ErrInvalidInstallments = errors.New("número de parcelas deve ser no mínimo 1")
)

var hundred = decimal.NewFromInt(100)

// Economics holds the figures derived from a loan's principal, interest
// rate and installment count.
type Economics struct {
	TotalAmount       decimal.Decimal `json:"total_amount"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	TotalInterest     decimal.Decimal `json:"total_interest"`
}

// ComputeLoanEconomics derives totalAmount = amount * (1 + rate/100),
// installmentAmount = totalAmount / installments and totalInterest =
// totalAmount - amount.
func ComputeLoanEconomics(amount, interestRate decimal.Decimal, installments int) (Economics, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Economics{}, ErrNonPositiveAmount
	}
	if interestRate.IsNegative() {
		return Economics{}, ErrNegativeRate
	}
	if installments < 1 {
		return Economics{}, ErrInvalidInstallments
	}

	totalAmount := amount.Mul(decimal.NewFromInt(1).Add(interestRate.Div(hundred)))
	return Economics{
		TotalAmount:       totalAmount,
		InstallmentAmount: totalAmount.Div(decimal.NewFromInt(int64(installments))),
		TotalInterest:     totalAmount.Sub(amount),
	}, nil
}

// Overdue holds the late figures for a loan. All fields are zero when
// the loan is not overdue or is already settled.
type Overdue struct {
	DaysOverdue   int             `json:"days_overdue"`
	DailyInterest decimal.Decimal `json:"daily_interest"`
	LateFee       decimal.Decimal `json:"late_fee"`
	TotalOverdue  decimal.Decimal `json:"total_overdue"`
}

// zeroOverdue keeps decimal fields at decimal.Zero rather than the
// uninitialized value so callers can compare directly.
func zeroOverdue() Overdue {
	return Overdue{DailyInterest: decimal.Zero, LateFee: decimal.Zero, TotalOverdue: decimal.Zero}
}

// DaysOverdue returns the whole days elapsed from dueDate to today,
// truncated. Zero or negative means not yet due.
func DaysOverdue(dueDate, today time.Time) int {
	return int(today.Sub(dueDate).Hours() / 24)
}

// ComputeOverdue derives the late figures for a loan given its total,
// the sum already paid and the overdue rates. A nil due date yields the
// all-zero result: loans without a due date are intentionally never
// considered overdue rather than treated as an error. A settled loan
// (remaining <= 0) is never overdue either, even when closed late.
//
// Daily interest grows linearly with the days elapsed (simple, not
// compound); the late fee is a one-time percentage of the outstanding
// balance, not accrued per day.
func ComputeOverdue(totalAmount, totalPaid decimal.Decimal, dueDate *time.Time, today time.Time, dailyInterestRate, lateFeePercentage decimal.Decimal) Overdue {
	if dueDate == nil {
		return zeroOverdue()
	}

	days := DaysOverdue(*dueDate, today)
	if days <= 0 {
		return zeroOverdue()
	}

	remaining := totalAmount.Sub(totalPaid)
	if remaining.LessThanOrEqual(decimal.Zero) {
		return zeroOverdue()
	}

	dailyInterest := remaining.Mul(dailyInterestRate.Div(hundred)).Mul(decimal.NewFromInt(int64(days)))
	lateFee := remaining.Mul(lateFeePercentage.Div(hundred))

	return Overdue{
		DaysOverdue:   days,
		DailyInterest: dailyInterest,
		LateFee:       lateFee,
		TotalOverdue:  remaining.Add(dailyInterest).Add(lateFee),
	}
}

// IsSettled reports whether the paid total covers the loan total.
func IsSettled(totalAmount, totalPaid decimal.Decimal) bool {
	return totalPaid.GreaterThanOrEqual(totalAmount)
}

// DeriveStatus resolves the authoritative status for a loan at a given
// reference time. The stored column is treated as a cache: "paid" is
// terminal and always honored, while active/overdue is re-derived from
// the due date and the payment set. A manual status override therefore
// holds exactly until the next recomputation, as the edit semantics
// require.
func DeriveStatus(storedStatus string, totalAmount, totalPaid decimal.Decimal, dueDate *time.Time, today time.Time) string {
	if storedStatus == "paid" || IsSettled(totalAmount, totalPaid) {
		return "paid"
	}
	if dueDate != nil && DaysOverdue(*dueDate, today) > 0 {
		return "overdue"
	}
	return "active"
}
