package handlers

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"dental-clinic-server/internal/billing"
)

func invoiceRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewInvoiceHandler(db, billing.NewService(db))
	router := gin.New()
	router.POST("/api/invoices/:id/payments", handler.AddPayment)
	return router
}

func TestAddPaymentRejectsMissingAmount(t *testing.T) {
	db, mock := newTestDB(t)
	router := invoiceRouter(db)

	// Validation fails before any database work
	w := postJSON(t, router, "/api/invoices/invoice-1/payments", map[string]interface{}{
		"method": "CASH",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPaymentRejectsMissingMethod(t *testing.T) {
	db, mock := newTestDB(t)
	router := invoiceRouter(db)

	w := postJSON(t, router, "/api/invoices/invoice-1/payments", map[string]interface{}{
		"amount": 100000,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPaymentUnknownInvoiceReturnsNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	router := invoiceRouter(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `invoices` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "total", "status"}))
	mock.ExpectRollback()

	w := postJSON(t, router, "/api/invoices/missing/payments", map[string]interface{}{
		"amount": 100000,
		"method": "CASH",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Invoice not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPaymentSettlesInvoice(t *testing.T) {
	db, mock := newTestDB(t)
	router := invoiceRouter(db)

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

	w := postJSON(t, router, "/api/invoices/invoice-1/payments", map[string]interface{}{
		"amount": 155000,
		"method": "TRANSFER",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Payment added successfully")
	assert.Contains(t, w.Body.String(), `"status":"PAID"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
