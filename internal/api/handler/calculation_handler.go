package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/domain/emi"
	"loan-origination/internal/infrastructure/monitoring"
	"loan-origination/internal/pkg/apperrors"
)

type CalculationHandler struct {
	logger *slog.Logger
}

func NewCalculationHandler(l *slog.Logger) *CalculationHandler {
	return &CalculationHandler{logger: l.With("component", "CalculationHandler")}
}

// CalculateEMI computes the amortization schedule for hypothetical loan terms.
//
// @Summary Calculate EMI
// @Description Computes the monthly installment, interest totals and the full amortization schedule for the given terms. The calculation is stateless.
// @Tags Loan Calculations
// @Accept json
// @Produce json
// @Param request body dto.EMICalculationRequest true "Loan terms"
// @Success 200 {object} dto.EMICalculationResponse "Amortization result"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan terms"
// @Router /loan-calculations/emi [post]
// @Security BearerAuth
func (h *CalculationHandler) CalculateEMI(w http.ResponseWriter, r *http.Request) {
	var req dto.EMICalculationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	schedule, err := emi.GenerateSchedule(req.LoanAmount, req.InterestRate, req.LoanTenureMonths)
	if err != nil {
		respondError(w, err)
		return
	}
	summary, err := emi.Summarize(req.LoanAmount, req.InterestRate, req.LoanTenureMonths)
	if err != nil {
		respondError(w, err)
		return
	}

	monitoring.RecordEMICalculation()
	respondJSON(w, http.StatusOK, dto.NewEMICalculationResponse(summary, schedule))
}
