package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// maxRevolvingMonths bounds revolving schedules; a payment too small to
// amortize within it is rejected before any schedule is generated
const maxRevolvingMonths = 120

const (
	minInstallments = 2
	maxInstallments = 60
)

var (
	maxInstallmentFeeRate = decimal.NewFromFloat(0.10)
	maxAnnualInterestRate = decimal.NewFromFloat(0.30)
	monthsPerYear         = decimal.NewFromInt(12)
)

// PlanParameters holds the caller-supplied scheduling parameters
type PlanParameters struct {
	PaymentType        PaymentType
	TotalInstallments  int
	InstallmentFeeRate decimal.Decimal
	MonthlyPayment     decimal.Decimal
	AnnualInterestRate decimal.Decimal
}

// Validate checks the parameter bounds independently of any principal
func (p PlanParameters) Validate() error {
	switch p.PaymentType {
	case PaymentTypeInstallment:
		if p.TotalInstallments < minInstallments || p.TotalInstallments > maxInstallments {
			return NewValidationError("INSTALLMENTS_OUT_OF_RANGE", "total installments must be between 2 and 60")
		}
		if p.InstallmentFeeRate.IsNegative() || p.InstallmentFeeRate.GreaterThan(maxInstallmentFeeRate) {
			return NewValidationError("FEE_RATE_OUT_OF_RANGE", "installment fee rate must be between 0.0 and 0.10")
		}
	case PaymentTypeRevolving:
		if !p.MonthlyPayment.IsPositive() {
			return NewValidationError("MONTHLY_PAYMENT_NOT_POSITIVE", "monthly payment must be positive")
		}
		if p.AnnualInterestRate.IsNegative() || p.AnnualInterestRate.GreaterThan(maxAnnualInterestRate) {
			return NewValidationError("INTEREST_RATE_OUT_OF_RANGE", "annual interest rate must be between 0.0 and 0.30")
		}
	default:
		return NewValidationError("UNKNOWN_PAYMENT_TYPE", "payment type must be INSTALLMENT or REVOLVING")
	}
	return nil
}

// ScheduleLine is one period of a generated repayment schedule
type ScheduleLine struct {
	Number         int
	DueDate        time.Time
	Principal      decimal.Decimal
	Fee            decimal.Decimal
	Interest       decimal.Decimal
	Total          decimal.Decimal
	RemainingAfter decimal.Decimal
}

// Schedule is a fully amortizing repayment schedule.
// The final line's RemainingAfter is exactly zero; rounding remainders are
// folded into the final period, never distributed.
type Schedule struct {
	Lines            []ScheduleLine
	TotalCharges     decimal.Decimal
	TotalWithCharges decimal.Decimal
}

// BuildSchedule computes a repayment schedule from plan parameters.
// Pure computation: no I/O, raises only validation errors.
func BuildSchedule(principal decimal.Decimal, currency string, params PlanParameters, startDate time.Time) (*Schedule, error) {
	if !principal.IsPositive() {
		return nil, NewValidationError("PRINCIPAL_NOT_POSITIVE", "principal must be positive")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	switch params.PaymentType {
	case PaymentTypeInstallment:
		return buildInstallmentSchedule(principal, currency, params, startDate)
	case PaymentTypeRevolving:
		return buildRevolvingSchedule(principal, currency, params, startDate)
	default:
		return nil, NewValidationError("UNKNOWN_PAYMENT_TYPE", "payment type must be INSTALLMENT or REVOLVING")
	}
}

// buildInstallmentSchedule splits principal plus a flat per-period fee into
// equal nominal payments. The fee is feeRate x principal charged on every
// installment, matching the product's fee model.
func buildInstallmentSchedule(principal decimal.Decimal, currency string, params PlanParameters, startDate time.Time) (*Schedule, error) {
	n := int64(params.TotalInstallments)
	count := decimal.NewFromInt(n)

	// Every installment must carry at least one minor unit of principal,
	// otherwise the split degenerates into zero or negative payments
	if !FloorMoney(principal.Div(count), currency).IsPositive() {
		return nil, NewValidationError("PRINCIPAL_TOO_SMALL", "principal does not fund one minor unit per installment")
	}

	feePerInstallment := RoundMoney(principal.Mul(params.InstallmentFeeRate), currency)
	totalFee := feePerInstallment.Mul(count)
	totalWithFee := principal.Add(totalFee)
	// Floored so the regular periods never overshoot the balance; the
	// remainder lands in the final period and keeps it >= perInstallment
	perInstallment := FloorMoney(totalWithFee.Div(count), currency)

	lines := make([]ScheduleLine, 0, params.TotalInstallments)
	for i := 1; i <= params.TotalInstallments; i++ {
		line := ScheduleLine{
			Number:  i,
			DueDate: AddMonthsClamped(startDate, i),
			Fee:     feePerInstallment,
		}

		if i < params.TotalInstallments {
			line.Total = perInstallment
			line.Principal = perInstallment.Sub(feePerInstallment)
			line.RemainingAfter = totalWithFee.Sub(perInstallment.Mul(decimal.NewFromInt(int64(i))))
		} else {
			// Final period absorbs the rounding remainder in its principal
			// component and closes the balance exactly
			total := totalWithFee.Sub(perInstallment.Mul(decimal.NewFromInt(n - 1)))
			line.Total = total
			line.Principal = total.Sub(feePerInstallment)
			line.RemainingAfter = decimal.Zero
		}
		lines = append(lines, line)
	}

	return &Schedule{
		Lines:            lines,
		TotalCharges:     totalFee,
		TotalWithCharges: totalWithFee,
	}, nil
}

// buildRevolvingSchedule amortizes a declining balance under a fixed monthly
// payment, accruing interest at annualRate/12 on the outstanding balance.
func buildRevolvingSchedule(principal decimal.Decimal, currency string, params PlanParameters, startDate time.Time) (*Schedule, error) {
	monthlyRate := params.AnnualInterestRate.Div(monthsPerYear)

	if principal.Mul(monthlyRate).GreaterThanOrEqual(params.MonthlyPayment) {
		return nil, NewValidationError("PAYMENT_BELOW_INTEREST", "monthly payment does not cover accrued interest")
	}

	var lines []ScheduleLine
	totalInterest := decimal.Zero
	remaining := principal

	for month := 1; remaining.IsPositive(); month++ {
		if month > maxRevolvingMonths {
			return nil, NewValidationError("SCHEDULE_TOO_LONG", "monthly payment does not amortize the balance within 120 months")
		}

		interest := RoundMoney(remaining.Mul(monthlyRate), currency)
		principalPortion := params.MonthlyPayment.Sub(interest)
		if principalPortion.GreaterThan(remaining) {
			// Final month is truncated to exactly close the balance
			principalPortion = remaining
		}
		remaining = remaining.Sub(principalPortion)
		totalInterest = totalInterest.Add(interest)

		lines = append(lines, ScheduleLine{
			Number:         month,
			DueDate:        AddMonthsClamped(startDate, month),
			Principal:      principalPortion,
			Interest:       interest,
			Total:          principalPortion.Add(interest),
			RemainingAfter: remaining,
		})
	}

	return &Schedule{
		Lines:            lines,
		TotalCharges:     totalInterest,
		TotalWithCharges: principal.Add(totalInterest),
	}, nil
}

// AddMonthsClamped advances a date by whole months, keeping the day of month
// and clamping to the last day when the target month is shorter.
func AddMonthsClamped(t time.Time, months int) time.Time {
	y, m, _ := t.Date()
	anchor := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())

	day := t.Day()
	if last := anchor.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
