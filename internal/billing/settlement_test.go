package billing

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestComputeTotals(t *testing.T) {
	items := []ItemInput{
		{Description: "Scaling", Quantity: 2, UnitPrice: 150000},
		{Description: "Consultation", Quantity: 1, UnitPrice: 50000},
	}

	subtotal, total, err := ComputeTotals(items, 10000, 5000)
	require.NoError(t, err)
	assert.Equal(t, 350000.0, subtotal)
	assert.Equal(t, 355000.0, total)
}

func TestComputeTotalsValidation(t *testing.T) {
	tests := []struct {
		name     string
		items    []ItemInput
		tax      float64
		discount float64
		wantErr  error
	}{
		{"empty items", nil, 0, 0, ErrNoItems},
		{"zero quantity", []ItemInput{{Description: "x", Quantity: 0, UnitPrice: 100}}, 0, 0, ErrInvalidItem},
		{"negative quantity", []ItemInput{{Description: "x", Quantity: -1, UnitPrice: 100}}, 0, 0, ErrInvalidItem},
		{"negative unit price", []ItemInput{{Description: "x", Quantity: 1, UnitPrice: -100}}, 0, 0, ErrInvalidItem},
		{"negative tax", []ItemInput{{Description: "x", Quantity: 1, UnitPrice: 100}}, -1, 0, ErrInvalidItem},
		{"discount exceeds subtotal plus tax", []ItemInput{{Description: "x", Quantity: 1, UnitPrice: 100}}, 0, 500, ErrNegativeTotal},
		{"free item admitted", []ItemInput{{Description: "x", Quantity: 1, UnitPrice: 0}}, 0, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ComputeTotals(tt.items, tt.tax, tt.discount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name      string
		total     float64
		totalPaid float64
		want      models.InvoiceStatus
	}{
		{"nothing paid", 355000, 0, models.InvoiceUnpaid},
		{"first partial payment", 355000, 200000, models.InvoicePartiallyPaid},
		{"exactly settled", 355000, 355000, models.InvoicePaid},
		{"overpaid stays paid", 355000, 405000, models.InvoicePaid},
		{"zero total is immediately paid", 0, 0, models.InvoicePaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.total, tt.totalPaid))
		})
	}
}

// Status must be derivable from the payment sum alone, regardless of the
// order individual payments arrive in.
func TestDeriveStatusAccumulation(t *testing.T) {
	const total = 355000.0

	paid := 0.0
	paid += 200000
	assert.Equal(t, models.InvoicePartiallyPaid, DeriveStatus(total, paid))
	paid += 155000
	assert.Equal(t, models.InvoicePaid, DeriveStatus(total, paid))
	paid += 50000 // overpayment
	assert.Equal(t, models.InvoicePaid, DeriveStatus(total, paid))
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-2025-001", FormatInvoiceNumber(2025, 1))
	assert.Equal(t, "INV-2025-042", FormatInvoiceNumber(2025, 42))
	assert.Equal(t, "INV-2025-999", FormatInvoiceNumber(2025, 999))
	// Sequence grows past the padding without truncation
	assert.Equal(t, "INV-2025-1000", FormatInvoiceNumber(2025, 1000))
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	db, _ := newTestDB(t)
	service := NewService(db)

	_, _, err := service.RecordPayment("invoice-1", PaymentInput{Amount: 0, Method: "CASH"})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = service.RecordPayment("invoice-1", PaymentInput{Amount: -50, Method: "CASH"})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRecordPaymentNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	service := NewService(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `invoices` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "total", "status"}))
	mock.ExpectRollback()

	_, _, err := service.RecordPayment("missing", PaymentInput{Amount: 100, Method: "CASH"})
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPaymentRejectsCancelledInvoice(t *testing.T) {
	db, mock := newTestDB(t)
	service := NewService(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `invoices` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "total", "status"}).
			AddRow("invoice-1", 355000.0, "CANCELLED"))
	mock.ExpectRollback()

	_, _, err := service.RecordPayment("invoice-1", PaymentInput{Amount: 100, Method: "CASH"})
	assert.ErrorIs(t, err, ErrInvoiceCancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPaymentSettlesInvoice(t *testing.T) {
	db, mock := newTestDB(t)
	service := NewService(db)

	// 200000 already paid on a 355000 invoice; a 155000 payment settles it.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `invoices` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "total", "status"}).
			AddRow("invoice-1", 355000.0, "PARTIALLY_PAID"))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `payments`").
		WillReturnRows(sqlmock.NewRows([]string{"COALESCE(SUM(amount), 0)"}).AddRow(200000.0))
	mock.ExpectExec("INSERT INTO `payments`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE `invoices` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payment, invoice, err := service.RecordPayment("invoice-1", PaymentInput{
		Amount: 155000,
		Method: "TRANSFER",
	})
	require.NoError(t, err)
	assert.Equal(t, 155000.0, payment.Amount)
	assert.NotEmpty(t, payment.ID)
	assert.False(t, payment.PaidAt.IsZero())
	assert.Equal(t, models.InvoicePaid, invoice.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPaymentPartial(t *testing.T) {
	db, mock := newTestDB(t)
	service := NewService(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `invoices` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "total", "status"}).
			AddRow("invoice-1", 355000.0, "UNPAID"))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM `payments`").
		WillReturnRows(sqlmock.NewRows([]string{"COALESCE(SUM(amount), 0)"}).AddRow(0.0))
	mock.ExpectExec("INSERT INTO `payments`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE `invoices` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, invoice, err := service.RecordPayment("invoice-1", PaymentInput{
		Amount: 200000,
		Method: "CASH",
	})
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePartiallyPaid, invoice.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInvoiceSeedsCounterFromExistingCount(t *testing.T) {
	db, mock := newTestDB(t)
	service := NewService(db)

	year := time.Now().Year()

	mock.ExpectBegin()
	// No counter row for the year yet; it is seeded from the invoice count.
	mock.ExpectQuery("SELECT .* FROM `invoice_counters` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"year", "sequence"}))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `invoices`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(999))
	mock.ExpectExec("INSERT INTO `invoice_counters`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE `invoice_counters` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `invoices`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `invoice_items`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	invoice, err := service.CreateInvoice(CreateInvoiceInput{
		PatientID: "patient-1",
		DueDate:   time.Now().AddDate(0, 0, 14),
		Items:     []ItemInput{{Description: "Scaling", Quantity: 1, UnitPrice: 150000}},
	})
	require.NoError(t, err)
	assert.Equal(t, FormatInvoiceNumber(year, 1000), invoice.InvoiceNumber)
	assert.Equal(t, models.InvoiceUnpaid, invoice.Status)
	assert.Equal(t, 150000.0, invoice.Subtotal)
	assert.Equal(t, 150000.0, invoice.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInvoiceRejectsInvalidInput(t *testing.T) {
	db, _ := newTestDB(t)
	service := NewService(db)

	_, err := service.CreateInvoice(CreateInvoiceInput{PatientID: "patient-1"})
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = service.CreateInvoice(CreateInvoiceInput{
		PatientID: "patient-1",
		Items:     []ItemInput{{Description: "x", Quantity: 1, UnitPrice: 100}},
		Discount:  1000,
	})
	assert.ErrorIs(t, err, ErrNegativeTotal)
}

func TestRecalculateTotal(t *testing.T) {
	total, err := RecalculateTotal(350000, 10000, 5000)
	require.NoError(t, err)
	assert.Equal(t, 355000.0, total)

	_, err = RecalculateTotal(100, 0, 500)
	assert.ErrorIs(t, err, ErrNegativeTotal)
}
