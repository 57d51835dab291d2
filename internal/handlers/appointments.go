package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/scheduling"
	"dental-clinic-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB     *gorm.DB
	Engine *scheduling.Engine
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, engine *scheduling.Engine) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Engine: engine}
}

// appointmentFilter holds the optional list filters. Unknown query
// parameters are ignored; only these fields reach the query.
type appointmentFilter struct {
	Date      string `form:"date"`
	Status    string `form:"status"`
	DoctorID  string `form:"doctorId"`
	PatientID string `form:"patientId"`
}

// truncateToDay returns midnight of t's calendar day in t's location.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// GetAppointments handles fetching appointments with optional filters.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	var filter appointmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	query := h.DB.Preload("Patient").Preload("Doctor").
		Order("date asc").Order("start_time asc")

	if filter.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", filter.Date, time.Local)
		if err != nil {
			utils.BadRequest(c, "Invalid date filter: expected YYYY-MM-DD")
			return
		}
		query = query.Where("date >= ? AND date < ?", day, day.AddDate(0, 0, 1))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DoctorID != "" {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment by its ID.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	PatientID string    `json:"patientId" binding:"required,uuid"`
	DoctorID  string    `json:"doctorId" binding:"required,uuid"`
	Date      time.Time `json:"date" binding:"required"`
	StartTime time.Time `json:"startTime" binding:"required"`
	EndTime   time.Time `json:"endTime" binding:"required"`
	Reason    string    `json:"reason"`
	Notes     string    `json:"notes"`
}

// CreateAppointment admits a new appointment through the scheduling engine.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	// Verify doctor exists and is a doctor
	var doctor models.User
	if err := h.DB.Where("id = ? AND role = ?", req.DoctorID, models.RoleDoctor).First(&doctor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found or user is not a doctor")
		} else {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
		}
		return
	}
	// Verify patient exists
	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", req.PatientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	appointment := models.Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      truncateToDay(req.Date),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    models.StatusScheduled,
		Reason:    req.Reason,
		Notes:     req.Notes,
	}

	if err := h.Engine.Book(&appointment); err != nil {
		switch {
		case errors.Is(err, scheduling.ErrInvalidRange):
			utils.BadRequest(c, err.Error())
		case errors.Is(err, scheduling.ErrSlotTaken):
			utils.BadRequest(c, "Time slot is already booked")
		default:
			utils.InternalServerError(c, "Failed to create appointment: "+err.Error())
		}
		return
	}

	appointment.Patient = patient
	appointment.Doctor = doctor
	utils.Created(c, "Appointment created successfully", appointment)
}

// UpdateAppointmentRequest represents the request body for updating an appointment.
type UpdateAppointmentRequest struct {
	Date      *time.Time `json:"date"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Status    string     `json:"status" binding:"omitempty,oneof=SCHEDULED CONFIRMED IN_PROGRESS COMPLETED CANCELLED NO_SHOW"`
	Reason    *string    `json:"reason"`
	Notes     *string    `json:"notes"`
}

// UpdateAppointment updates an appointment. Time changes are re-validated
// through the scheduling engine with the appointment itself excluded from
// the conflict set.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if err := utils.Validate(&req); err != nil {
		utils.BadRequest(c, "Validation failed: "+utils.FormatValidationError(err))
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Status != "" {
		appointment.Status = models.AppointmentStatus(req.Status)
	}
	if req.Reason != nil {
		appointment.Reason = *req.Reason
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}

	if req.Date != nil || req.StartTime != nil || req.EndTime != nil {
		date := appointment.Date
		start := appointment.StartTime
		end := appointment.EndTime
		if req.Date != nil {
			date = truncateToDay(*req.Date)
		}
		if req.StartTime != nil {
			start = *req.StartTime
		}
		if req.EndTime != nil {
			end = *req.EndTime
		}

		if err := h.Engine.Reschedule(&appointment, date, start, end); err != nil {
			switch {
			case errors.Is(err, scheduling.ErrInvalidRange):
				utils.BadRequest(c, err.Error())
			case errors.Is(err, scheduling.ErrSlotTaken):
				utils.BadRequest(c, "Time slot is already booked")
			default:
				utils.InternalServerError(c, "Failed to update appointment: "+err.Error())
			}
			return
		}
	} else {
		if err := h.DB.Save(&appointment).Error; err != nil {
			utils.InternalServerError(c, "Failed to update appointment: "+err.Error())
			return
		}
	}

	utils.Success(c, "Appointment updated successfully", appointment)
}

// DeleteAppointment handles deleting an appointment.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&models.Appointment{}, "id = ?", appointmentID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment deleted successfully", nil)
}
