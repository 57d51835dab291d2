package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// PatientHandler handles patient record requests.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

// GetPatients handles fetching a paginated, searchable patient list.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	page, limit := utils.ParsePagination(c, 10)

	query := h.DB.Model(&models.Patient{})
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"first_name LIKE ? OR last_name LIKE ? OR phone LIKE ? OR email LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count patients: "+err.Error())
		return
	}

	var patients []models.Patient
	err := query.Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&patients).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	utils.Paged(c, "Patients fetched successfully", patients, utils.NewPagination(total, page, limit))
}

// GetPatientByID handles fetching a single patient with their recent
// appointments, medical records and invoices.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	patientID := c.Param("id")

	var patient models.Patient
	err := h.DB.
		Preload("Appointments", func(db *gorm.DB) *gorm.DB {
			return db.Order("date desc").Limit(5)
		}).
		Preload("MedicalRecords", func(db *gorm.DB) *gorm.DB {
			return db.Order("date desc").Limit(5)
		}).
		Preload("Invoices", func(db *gorm.DB) *gorm.DB {
			return db.Order("date desc").Limit(5)
		}).
		First(&patient, "id = ?", patientID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Patient fetched successfully", patient)
}

// CreatePatientRequest represents the request body for creating a patient.
type CreatePatientRequest struct {
	FirstName        string    `json:"firstName" binding:"required"`
	LastName         string    `json:"lastName" binding:"required"`
	DateOfBirth      time.Time `json:"dateOfBirth" binding:"required"`
	Gender           string    `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
	Phone            string    `json:"phone" binding:"required"`
	Email            string    `json:"email" binding:"omitempty,email"`
	Address          string    `json:"address"`
	EmergencyContact string    `json:"emergencyContact"`
	Allergies        string    `json:"allergies"`
	MedicalServices  string    `json:"medicalServices"`
	Notes            string    `json:"notes"`
}

// CreatePatient handles creating a new patient record.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient := models.Patient{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		DateOfBirth:      req.DateOfBirth,
		Gender:           models.Gender(req.Gender),
		Phone:            req.Phone,
		Email:            req.Email,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		Allergies:        req.Allergies,
		MedicalServices:  req.MedicalServices,
		Notes:            req.Notes,
	}

	if err := h.DB.Create(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}

	utils.Created(c, "Patient created successfully", patient)
}

// UpdatePatientRequest represents the request body for updating a patient.
// All fields are optional; only provided values are applied.
type UpdatePatientRequest struct {
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	DateOfBirth      *time.Time `json:"dateOfBirth"`
	Gender           string     `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email" binding:"omitempty,email"`
	Address          *string    `json:"address"`
	EmergencyContact *string    `json:"emergencyContact"`
	Allergies        *string    `json:"allergies"`
	MedicalServices  *string    `json:"medicalServices"`
	Notes            *string    `json:"notes"`
}

// UpdatePatient handles updating a patient record.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	patientID := c.Param("id")

	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.FirstName != "" {
		patient.FirstName = req.FirstName
	}
	if req.LastName != "" {
		patient.LastName = req.LastName
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = *req.DateOfBirth
	}
	if req.Gender != "" {
		patient.Gender = models.Gender(req.Gender)
	}
	if req.Phone != "" {
		patient.Phone = req.Phone
	}
	if req.Email != "" {
		patient.Email = req.Email
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.EmergencyContact != nil {
		patient.EmergencyContact = *req.EmergencyContact
	}
	if req.Allergies != nil {
		patient.Allergies = *req.Allergies
	}
	if req.MedicalServices != nil {
		patient.MedicalServices = *req.MedicalServices
	}
	if req.Notes != nil {
		patient.Notes = *req.Notes
	}

	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient updated successfully", patient)
}

// DeletePatient handles deleting a patient record.
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	patientID := c.Param("id")

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&models.Patient{}, "id = ?", patientID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient deleted successfully", nil)
}
