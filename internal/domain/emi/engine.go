package emi

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"loan-origination/internal/pkg/apperrors"
)

// Money values are carried as float64 and rounded to 2 decimal places with
// round-half-away-from-zero, matching conventional financial rounding.
type Money = float64

// Installment is one period of an amortization schedule. The sequence is
// recomputed on every request; it carries no identity or lifecycle.
type Installment struct {
	Month                int   `json:"month"`
	EMI                  Money `json:"emi"`
	Principal            Money `json:"principal"`
	Interest             Money `json:"interest"`
	OutstandingPrincipal Money `json:"outstanding_principal"`
}

// Summary holds the headline figures for a computed loan.
type Summary struct {
	MonthlyEMI    Money
	TotalInterest Money
	TotalAmount   Money
}

// ComputeInstallment returns the fixed monthly installment for the given
// principal, annual interest rate (percent) and tenure (months). A zero rate
// degenerates to straight-line repayment.
func ComputeInstallment(principal Money, annualRatePercent Money, tenureMonths int) (Money, error) {
	if principal <= 0 {
		return 0, fmt.Errorf("%w: principal must be positive", apperrors.ErrInvalidArgument)
	}
	if tenureMonths <= 0 {
		return 0, fmt.Errorf("%w: tenure months must be positive", apperrors.ErrInvalidArgument)
	}
	if annualRatePercent < 0 {
		return 0, fmt.Errorf("%w: annual rate cannot be negative", apperrors.ErrInvalidArgument)
	}

	monthlyRate := annualRatePercent / 1200
	if monthlyRate == 0 {
		return roundMoney(principal / float64(tenureMonths)), nil
	}

	compound := math.Pow(1+monthlyRate, float64(tenureMonths))
	installment := principal * monthlyRate * compound / (compound - 1)
	return roundMoney(installment), nil
}

// GenerateSchedule produces the full amortization schedule, one entry per
// month. The installment is computed once and held fixed; each period's
// components are rounded to 2 decimals, and the outstanding principal is
// clamped at zero so the final period absorbs cumulative rounding drift.
func GenerateSchedule(principal Money, annualRatePercent Money, tenureMonths int) ([]Installment, error) {
	installment, err := ComputeInstallment(principal, annualRatePercent, tenureMonths)
	if err != nil {
		return nil, err
	}

	monthlyRate := annualRatePercent / 1200
	schedule := make([]Installment, 0, tenureMonths)
	outstanding := principal

	for month := 1; month <= tenureMonths; month++ {
		interest := roundMoney(outstanding * monthlyRate)
		principalPart := roundMoney(installment - interest)
		outstanding -= principalPart

		remaining := roundMoney(outstanding)
		if remaining < 0 {
			remaining = 0
		}

		schedule = append(schedule, Installment{
			Month:                month,
			EMI:                  installment,
			Principal:            principalPart,
			Interest:             interest,
			OutstandingPrincipal: remaining,
		})
	}

	return schedule, nil
}

// Summarize computes the installment plus the total-interest and total-amount
// figures used by the calculation endpoint.
func Summarize(principal Money, annualRatePercent Money, tenureMonths int) (Summary, error) {
	installment, err := ComputeInstallment(principal, annualRatePercent, tenureMonths)
	if err != nil {
		return Summary{}, err
	}

	totalAmount := roundMoney(installment * float64(tenureMonths))
	return Summary{
		MonthlyEMI:    installment,
		TotalInterest: roundMoney(totalAmount - principal),
		TotalAmount:   totalAmount,
	}, nil
}

func roundMoney(n Money) Money {
	rounded, _ := decimal.NewFromFloat(n).Round(2).Float64()
	return rounded
}
