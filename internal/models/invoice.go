package models

import (
	"time"
)

// InvoiceStatus represents the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceUnpaid        InvoiceStatus = "UNPAID"
	InvoicePartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoicePaid          InvoiceStatus = "PAID"
	InvoiceOverdue       InvoiceStatus = "OVERDUE"
	InvoiceCancelled     InvoiceStatus = "CANCELLED"
)

// Invoice represents a patient bill.
// Invariant: Total == Subtotal + Tax - Discount.
// UNPAID, PARTIALLY_PAID and PAID are derived from the payment sum;
// OVERDUE and CANCELLED are set administratively.
type Invoice struct {
	BaseModel
	PatientID     string        `gorm:"size:36;index;not null" json:"patientId"`
	InvoiceNumber string        `gorm:"size:30;uniqueIndex;not null" json:"invoiceNumber"`
	Date          time.Time     `json:"date"`
	DueDate       time.Time     `json:"dueDate"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	Discount      float64       `json:"discount"`
	Total         float64       `json:"total"`
	Status        InvoiceStatus `gorm:"size:20;default:'UNPAID'" json:"status"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`

	// Relations
	Patient  Patient       `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

// InvoiceItem is a billed line item owned by its invoice
type InvoiceItem struct {
	BaseModel
	InvoiceID   string  `gorm:"size:36;index;not null" json:"invoiceId"`
	Description string  `gorm:"size:255;not null" json:"description"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unitPrice"`
	Total       float64 `gorm:"not null" json:"total"`
}

// Payment is an append-only record of money received against an invoice.
// Payments are never edited or deleted once created.
type Payment struct {
	BaseModel
	InvoiceID     string    `gorm:"size:36;index;not null" json:"invoiceId"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Method        string    `gorm:"size:50;not null" json:"method"`
	TransactionID string    `gorm:"size:100" json:"transactionId,omitempty"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`
	PaidAt        time.Time `json:"paidAt"`
}

// InvoiceCounter holds the next invoice sequence for a given year.
// Rows are bumped under a row lock so concurrent invoice creation
// cannot hand out the same number.
type InvoiceCounter struct {
	Year     int   `gorm:"primaryKey" json:"year"`
	Sequence int64 `gorm:"not null" json:"sequence"`
}
