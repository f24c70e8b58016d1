package dto

import (
	"fmt"

	"loan-origination/internal/domain/application"
	"loan-origination/internal/domain/emi"
)

type EMICalculationRequest struct {
	LoanAmount       float64 `json:"loan_amount"`
	InterestRate     float64 `json:"interest_rate"`
	LoanTenureMonths int     `json:"loan_tenure_months"`
}

func (r *EMICalculationRequest) Validate() error {
	if r.LoanAmount <= 0 {
		return fmt.Errorf("loan_amount must be greater than zero")
	}
	if r.InterestRate < 0 || r.InterestRate > 50 {
		return fmt.Errorf("interest_rate must be between 0 and 50")
	}
	if r.LoanTenureMonths < application.MinTenureMonths || r.LoanTenureMonths > application.MaxTenureMonths {
		return fmt.Errorf("loan_tenure_months must be between %d and %d", application.MinTenureMonths, application.MaxTenureMonths)
	}
	return nil
}

type InstallmentResponse struct {
	Month                int     `json:"month"`
	EMI                  float64 `json:"emi"`
	Principal            float64 `json:"principal"`
	Interest             float64 `json:"interest"`
	OutstandingPrincipal float64 `json:"outstanding_principal"`
}

type EMICalculationResponse struct {
	MonthlyEMI    float64               `json:"monthly_emi"`
	TotalInterest float64               `json:"total_interest"`
	TotalAmount   float64               `json:"total_amount"`
	EMISchedule   []InstallmentResponse `json:"emi_schedule"`
}

func NewEMICalculationResponse(summary emi.Summary, schedule []emi.Installment) EMICalculationResponse {
	installments := make([]InstallmentResponse, len(schedule))
	for i, inst := range schedule {
		installments[i] = InstallmentResponse{
			Month:                inst.Month,
			EMI:                  inst.EMI,
			Principal:            inst.Principal,
			Interest:             inst.Interest,
			OutstandingPrincipal: inst.OutstandingPrincipal,
		}
	}
	return EMICalculationResponse{
		MonthlyEMI:    summary.MonthlyEMI,
		TotalInterest: summary.TotalInterest,
		TotalAmount:   summary.TotalAmount,
		EMISchedule:   installments,
	}
}
