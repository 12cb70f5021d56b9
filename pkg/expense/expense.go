package expense

import (
	"errors"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amirasaad/tem/pkg/conversion"
)

var ErrInvalidStatus = errors.New("invalid expense status")

// Status is the approval state of an expense.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusReturned Status = "returned"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusReturned}

// ParseStatus parses a status name, case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusReturned:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// ConversionDetails is the conversion captured by the expense form, stored
// verbatim with the expense.
type ConversionDetails = conversion.ConversionData

// Expense is a single claim filed by an employee against a project.
type Expense struct {
	ID                uuid.UUID          `json:"expenseId"`
	EmployeeID        string             `json:"employeeId" validate:"required"`
	ProjectID         string             `json:"projectId" validate:"required"`
	Category          string             `json:"category" validate:"required"`
	Date              civil.Date         `json:"date"`
	Amount            decimal.Decimal    `json:"amount"`
	Currency          string             `json:"currency" validate:"required,len=3"`
	InvoiceNumber     string             `json:"invoiceNumber,omitempty"`
	Status            Status             `json:"status" validate:"required,oneof=draft pending approved rejected returned"`
	Remarks           string             `json:"remarks,omitempty"`
	ApproverComment   string             `json:"approverComment,omitempty"`
	ConversionDetails *ConversionDetails `json:"conversionDetails,omitempty"`
}

// New creates a draft expense with a fresh ID.
func New(employeeID, projectID, category string, date civil.Date, amount decimal.Decimal, currency string) *Expense {
	return &Expense{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		ProjectID:  projectID,
		Category:   category,
		Date:       date,
		Amount:     amount,
		Currency:   strings.ToUpper(strings.TrimSpace(currency)),
		Status:     StatusDraft,
	}
}

// AttachConversion stores the form's conversion on the expense. INR expenses
// never carry one. A foreign expense saved without a usable rate keeps none
// and is totalled at its entered amount.
func (e *Expense) AttachConversion(out conversion.FormOutput) {
	if strings.EqualFold(e.Currency, conversion.BaseCurrency) || out.ConversionData == nil {
		e.ConversionDetails = nil
		return
	}
	details := *out.ConversionData
	e.ConversionDetails = &details
}

// AmountINR is the amount used for every rupee total: the converted amount
// when a conversion was stored, otherwise the amount as entered.
func (e *Expense) AmountINR() decimal.Decimal {
	if e.ConversionDetails != nil {
		return e.ConversionDetails.ConvertedAmount
	}
	return e.Amount
}
