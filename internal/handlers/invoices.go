package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/billing"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// InvoiceHandler handles invoice and payment requests.
type InvoiceHandler struct {
	DB      *gorm.DB
	Billing *billing.Service
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(db *gorm.DB, billingService *billing.Service) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Billing: billingService}
}

// GetInvoices handles fetching a paginated, searchable invoice list.
func (h *InvoiceHandler) GetInvoices(c *gin.Context) {
	page, limit := utils.ParsePagination(c, 50)

	query := h.DB.Model(&models.Invoice{})
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.
			Joins("JOIN patients ON patients.id = invoices.patient_id").
			Where("invoices.invoice_number LIKE ? OR patients.first_name LIKE ? OR patients.last_name LIKE ?",
				like, like, like)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("invoices.status = ?", status)
	}
	if patientID := c.Query("patientId"); patientID != "" {
		query = query.Where("invoices.patient_id = ?", patientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count invoices: "+err.Error())
		return
	}

	var invoices []models.Invoice
	err := query.Preload("Patient").Preload("Items").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("paid_at desc")
		}).
		Order("invoices.date desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch invoices: "+err.Error())
		return
	}

	utils.Paged(c, "Invoices fetched successfully", invoices, utils.NewPagination(total, page, limit))
}

// GetInvoiceByID handles fetching a single invoice with items and payments.
func (h *InvoiceHandler) GetInvoiceByID(c *gin.Context) {
	invoiceID := c.Param("id")

	var invoice models.Invoice
	err := h.DB.Preload("Patient").Preload("Items").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("paid_at desc")
		}).
		First(&invoice, "id = ?", invoiceID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Invoice not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Invoice fetched successfully", invoice)
}

// InvoiceItemRequest is a line item in an invoice creation request.
type InvoiceItemRequest struct {
	Description string  `json:"description" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unitPrice" binding:"gte=0"`
}

// CreateInvoiceRequest represents the request body for creating an invoice.
type CreateInvoiceRequest struct {
	PatientID string               `json:"patientId" binding:"required,uuid"`
	DueDate   time.Time            `json:"dueDate" binding:"required"`
	Items     []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	Tax       float64              `json:"tax" binding:"gte=0"`
	Discount  float64              `json:"discount" binding:"gte=0"`
	Notes     string               `json:"notes"`
}

// CreateInvoice creates an invoice through the settlement engine.
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", req.PatientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	items := make([]billing.ItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = billing.ItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	invoice, err := h.Billing.CreateInvoice(billing.CreateInvoiceInput{
		PatientID: req.PatientID,
		DueDate:   req.DueDate,
		Items:     items,
		Tax:       req.Tax,
		Discount:  req.Discount,
		Notes:     req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrNoItems),
			errors.Is(err, billing.ErrInvalidItem),
			errors.Is(err, billing.ErrNegativeTotal):
			utils.BadRequest(c, err.Error())
		default:
			utils.InternalServerError(c, "Failed to create invoice: "+err.Error())
		}
		return
	}

	invoice.Patient = patient
	utils.Created(c, "Invoice created successfully", invoice)
}

// UpdateInvoiceRequest represents the request body for updating an invoice.
// Tax and discount changes re-derive the total; status is an administrative
// override for OVERDUE and CANCELLED only.
type UpdateInvoiceRequest struct {
	DueDate  *time.Time `json:"dueDate"`
	Tax      *float64   `json:"tax"`
	Discount *float64   `json:"discount"`
	Notes    *string    `json:"notes"`
	Status   string     `json:"status" binding:"omitempty,oneof=OVERDUE CANCELLED"`
}

// UpdateInvoice handles updating invoice metadata.
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	invoiceID := c.Param("id")

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if err := utils.Validate(&req); err != nil {
		utils.BadRequest(c, "Validation failed: "+utils.FormatValidationError(err))
		return
	}

	var invoice models.Invoice
	if err := h.DB.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Invoice not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.DueDate != nil {
		invoice.DueDate = *req.DueDate
	}
	if req.Notes != nil {
		invoice.Notes = *req.Notes
	}
	if req.Status != "" {
		invoice.Status = models.InvoiceStatus(req.Status)
	}

	if req.Tax != nil || req.Discount != nil {
		if req.Tax != nil {
			invoice.Tax = *req.Tax
		}
		if req.Discount != nil {
			invoice.Discount = *req.Discount
		}
		total, err := billing.RecalculateTotal(invoice.Subtotal, invoice.Tax, invoice.Discount)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		invoice.Total = total
	}

	if err := h.DB.Save(&invoice).Error; err != nil {
		utils.InternalServerError(c, "Failed to update invoice: "+err.Error())
		return
	}

	utils.Success(c, "Invoice updated successfully", invoice)
}

// DeleteInvoice handles deleting an invoice and its owned rows.
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	invoiceID := c.Param("id")

	var invoice models.Invoice
	if err := h.DB.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Invoice not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	// Payments and items cannot outlive their invoice
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Payment{}, "invoice_id = ?", invoiceID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.InvoiceItem{}, "invoice_id = ?", invoiceID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Invoice{}, "id = ?", invoiceID).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete invoice: "+err.Error())
		return
	}

	utils.Success(c, "Invoice deleted successfully", nil)
}

// AddPaymentRequest represents the request body for recording a payment.
type AddPaymentRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Method        string  `json:"method" binding:"required"`
	TransactionID string  `json:"transactionId"`
	Notes         string  `json:"notes"`
}

// AddPayment records a payment against an invoice through the settlement
// engine and returns the payment together with the updated invoice.
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	invoiceID := c.Param("id")

	var req AddPaymentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	payment, invoice, err := h.Billing.RecordPayment(invoiceID, billing.PaymentInput{
		Amount:        req.Amount,
		Method:        req.Method,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvoiceNotFound):
			utils.NotFound(c, "Invoice not found")
		case errors.Is(err, billing.ErrInvalidAmount), errors.Is(err, billing.ErrInvoiceCancelled):
			utils.BadRequest(c, err.Error())
		default:
			utils.InternalServerError(c, "Failed to record payment: "+err.Error())
		}
		return
	}

	utils.Created(c, "Payment added successfully", gin.H{
		"payment": payment,
		"invoice": invoice,
	})
}
