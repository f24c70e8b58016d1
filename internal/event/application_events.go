package event

import (
	"time"
)

type ApplicationEventPayload struct {
	ApplicationID     string  `json:"applicationId"`
	ApplicationNumber string  `json:"applicationNumber"`
	CustomerID        string  `json:"customerId"`
	BranchID          string  `json:"branchId"`
	LoanType          string  `json:"loanType"`
	LoanAmount        float64 `json:"loanAmount"`
	Status            string  `json:"status"`
	Version           int     `json:"version"`
}

type ApplicationCreatedEvent struct {
	Timestamp time.Time               `json:"timestamp"`
	Payload   ApplicationEventPayload `json:"payload"`
}

type ApplicationStatusChangedEvent struct {
	Timestamp time.Time               `json:"timestamp"`
	OldStatus string                  `json:"oldStatus"`
	NewStatus string                  `json:"newStatus"`
	ActorID   string                  `json:"actorId"`
	Payload   ApplicationEventPayload `json:"payload"`
}
