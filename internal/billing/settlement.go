package billing

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dental-clinic-server/internal/models"
)

var (
	// ErrInvoiceNotFound is returned when the referenced invoice does not exist.
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrNoItems is returned when an invoice is created without line items.
	ErrNoItems = errors.New("at least one invoice item is required")
	// ErrInvalidItem is returned for a line item with a non-positive quantity
	// or a negative unit price.
	ErrInvalidItem = errors.New("invoice item quantity must be positive and unit price non-negative")
	// ErrNegativeTotal is returned when the discount exceeds subtotal plus tax.
	ErrNegativeTotal = errors.New("discount may not exceed subtotal plus tax")
	// ErrInvalidAmount is returned for a non-positive payment amount.
	ErrInvalidAmount = errors.New("payment amount must be positive")
	// ErrInvoiceCancelled is returned when a payment targets a cancelled invoice.
	ErrInvoiceCancelled = errors.New("cannot record a payment against a cancelled invoice")
)

// ItemInput is a requested invoice line item.
type ItemInput struct {
	Description string
	Quantity    int
	UnitPrice   float64
}

// ComputeTotals validates the line items and returns the invoice subtotal
// and total, where total = subtotal + tax - discount.
func ComputeTotals(items []ItemInput, tax, discount float64) (subtotal, total float64, err error) {
	if len(items) == 0 {
		return 0, 0, ErrNoItems
	}
	for _, item := range items {
		if item.Quantity <= 0 || item.UnitPrice < 0 {
			return 0, 0, ErrInvalidItem
		}
		subtotal += float64(item.Quantity) * item.UnitPrice
	}
	if tax < 0 || discount < 0 {
		return 0, 0, ErrInvalidItem
	}
	total = subtotal + tax - discount
	if total < 0 {
		return 0, 0, ErrNegativeTotal
	}
	return subtotal, total, nil
}

// DeriveStatus returns the payment status implied by the accumulated
// payments: PAID once totalPaid covers the total (overpayment included),
// PARTIALLY_PAID for anything in between, UNPAID when nothing is paid.
func DeriveStatus(total, totalPaid float64) models.InvoiceStatus {
	switch {
	case totalPaid >= total:
		return models.InvoicePaid
	case totalPaid > 0:
		return models.InvoicePartiallyPaid
	default:
		return models.InvoiceUnpaid
	}
}

// FormatInvoiceNumber renders a human-readable invoice number, e.g.
// INV-2025-001. The sequence is zero-padded to three digits and grows
// past the padding without truncation.
func FormatInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("INV-%d-%03d", year, seq)
}

// Service computes invoice totals, assigns invoice numbers and settles
// payments against invoices.
type Service struct {
	DB *gorm.DB
}

// NewService creates a new billing Service.
func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// CreateInvoiceInput holds the fields for a new invoice.
type CreateInvoiceInput struct {
	PatientID string
	DueDate   time.Time
	Items     []ItemInput
	Tax       float64
	Discount  float64
	Notes     string
}

// nextInvoiceNumber bumps the per-year counter under a row lock and returns
// the formatted invoice number. The first counter row of a year is seeded
// from the existing invoice count, which keeps historical numbering intact.
func (s *Service) nextInvoiceNumber(tx *gorm.DB, now time.Time) (string, error) {
	year := now.Year()

	var counter models.InvoiceCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("year = ?", year).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var count int64
		if err := tx.Model(&models.Invoice{}).Count(&count).Error; err != nil {
			return "", err
		}
		counter = models.InvoiceCounter{Year: year, Sequence: count}
		if err := tx.Create(&counter).Error; err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	counter.Sequence++
	if err := tx.Save(&counter).Error; err != nil {
		return "", err
	}

	return FormatInvoiceNumber(year, counter.Sequence), nil
}

// CreateInvoice computes totals, assigns the next invoice number and
// persists the invoice together with its items in a single transaction.
// New invoices always start UNPAID.
func (s *Service) CreateInvoice(input CreateInvoiceInput) (*models.Invoice, error) {
	subtotal, total, err := ComputeTotals(input.Items, input.Tax, input.Discount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	invoice := &models.Invoice{
		PatientID: input.PatientID,
		Date:      now,
		DueDate:   input.DueDate,
		Subtotal:  subtotal,
		Tax:       input.Tax,
		Discount:  input.Discount,
		Total:     total,
		Status:    models.InvoiceUnpaid,
		Notes:     input.Notes,
	}
	for _, item := range input.Items {
		invoice.Items = append(invoice.Items, models.InvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       float64(item.Quantity) * item.UnitPrice,
		})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		number, err := s.nextInvoiceNumber(tx, now)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number
		return tx.Create(invoice).Error
	})
	if err != nil {
		return nil, err
	}

	return invoice, nil
}

// PaymentInput holds the fields for a new payment.
type PaymentInput struct {
	Amount        float64
	Method        string
	TransactionID string
	Notes         string
}

// RecordPayment appends a payment to an invoice and re-derives the payment
// status from the accumulated sum. The invoice row is locked for the
// duration of the transaction, so the payment insert and the status update
// are observed together and never interleave with a concurrent payment.
func (s *Service) RecordPayment(invoiceID string, input PaymentInput) (*models.Payment, *models.Invoice, error) {
	if input.Amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}

	var payment *models.Payment
	var invoice models.Invoice

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&invoice, "id = ?", invoiceID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvoiceNotFound
		} else if err != nil {
			return err
		}

		if invoice.Status == models.InvoiceCancelled {
			return ErrInvoiceCancelled
		}

		var paidSoFar float64
		err = tx.Model(&models.Payment{}).
			Where("invoice_id = ?", invoiceID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&paidSoFar).Error
		if err != nil {
			return err
		}

		payment = &models.Payment{
			InvoiceID:     invoiceID,
			Amount:        input.Amount,
			Method:        input.Method,
			TransactionID: input.TransactionID,
			Notes:         input.Notes,
			PaidAt:        time.Now(),
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		invoice.Status = DeriveStatus(invoice.Total, paidSoFar+input.Amount)
		return tx.Model(&invoice).Update("status", invoice.Status).Error
	})
	if err != nil {
		return nil, nil, err
	}

	return payment, &invoice, nil
}

// RecalculateTotal reapplies the total invariant after a tax or discount
// change, returning the new total.
func RecalculateTotal(subtotal, tax, discount float64) (float64, error) {
	if tax < 0 || discount < 0 {
		return 0, ErrInvalidItem
	}
	total := subtotal + tax - discount
	if total < 0 {
		return 0, ErrNegativeTotal
	}
	return total, nil
}
