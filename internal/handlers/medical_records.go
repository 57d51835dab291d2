package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/middleware"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// MedicalRecordHandler handles medical record requests.
type MedicalRecordHandler struct {
	DB *gorm.DB
}

// NewMedicalRecordHandler creates a new MedicalRecordHandler.
func NewMedicalRecordHandler(db *gorm.DB) *MedicalRecordHandler {
	return &MedicalRecordHandler{DB: db}
}

// GetMedicalRecords handles fetching a paginated, searchable record list.
func (h *MedicalRecordHandler) GetMedicalRecords(c *gin.Context) {
	page, limit := utils.ParsePagination(c, 50)

	query := h.DB.Model(&models.MedicalRecord{})
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("diagnosis LIKE ? OR treatment LIKE ?", like, like)
	}
	if patientID := c.Query("patientId"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count medical records: "+err.Error())
		return
	}

	var records []models.MedicalRecord
	err := query.Preload("Patient").Preload("Doctor").
		Order("date desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch medical records: "+err.Error())
		return
	}

	utils.Paged(c, "Medical records fetched successfully", records, utils.NewPagination(total, page, limit))
}

// GetMedicalRecordByID handles fetching a single medical record.
func (h *MedicalRecordHandler) GetMedicalRecordByID(c *gin.Context) {
	recordID := c.Param("id")

	var record models.MedicalRecord
	if err := h.DB.Preload("Patient").Preload("Doctor").First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Medical record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Medical record fetched successfully", record)
}

// CreateMedicalRecordRequest represents the request body for creating a record.
type CreateMedicalRecordRequest struct {
	PatientID    string `json:"patientId" binding:"required,uuid"`
	Diagnosis    string `json:"diagnosis" binding:"required"`
	Symptoms     string `json:"symptoms"`
	Treatment    string `json:"treatment" binding:"required"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
}

// CreateMedicalRecord handles creating a medical record. The doctor is the
// authenticated user.
func (h *MedicalRecordHandler) CreateMedicalRecord(c *gin.Context) {
	var req CreateMedicalRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
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

	record := models.MedicalRecord{
		PatientID:    req.PatientID,
		DoctorID:     doctorID,
		Date:         time.Now(),
		Diagnosis:    req.Diagnosis,
		Symptoms:     req.Symptoms,
		Treatment:    req.Treatment,
		Prescription: req.Prescription,
		Notes:        req.Notes,
	}

	if err := h.DB.Create(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to create medical record: "+err.Error())
		return
	}

	utils.Created(c, "Medical record created successfully", record)
}

// UpdateMedicalRecordRequest represents the request body for updating a record.
type UpdateMedicalRecordRequest struct {
	Diagnosis    string  `json:"diagnosis"`
	Symptoms     *string `json:"symptoms"`
	Treatment    string  `json:"treatment"`
	Prescription *string `json:"prescription"`
	Notes        *string `json:"notes"`
}

// UpdateMedicalRecord handles updating a medical record.
func (h *MedicalRecordHandler) UpdateMedicalRecord(c *gin.Context) {
	recordID := c.Param("id")

	var req UpdateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var record models.MedicalRecord
	if err := h.DB.First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Medical record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Diagnosis != "" {
		record.Diagnosis = req.Diagnosis
	}
	if req.Treatment != "" {
		record.Treatment = req.Treatment
	}
	if req.Symptoms != nil {
		record.Symptoms = *req.Symptoms
	}
	if req.Prescription != nil {
		record.Prescription = *req.Prescription
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}

	if err := h.DB.Save(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to update medical record: "+err.Error())
		return
	}

	utils.Success(c, "Medical record updated successfully", record)
}

// DeleteMedicalRecord handles deleting a medical record.
func (h *MedicalRecordHandler) DeleteMedicalRecord(c *gin.Context) {
	recordID := c.Param("id")

	var record models.MedicalRecord
	if err := h.DB.First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Medical record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&models.MedicalRecord{}, "id = ?", recordID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete medical record: "+err.Error())
		return
	}

	utils.Success(c, "Medical record deleted successfully", nil)
}
