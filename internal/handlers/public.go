package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"dental-clinic-server/internal/intake"
	"dental-clinic-server/internal/scheduling"
	"dental-clinic-server/internal/utils"
)

// PublicHandler handles unauthenticated marketing-site requests.
type PublicHandler struct {
	Intake *intake.Adapter
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(adapter *intake.Adapter) *PublicHandler {
	return &PublicHandler{Intake: adapter}
}

// CreateReservationRequest represents the online booking form.
type CreateReservationRequest struct {
	Name            string    `json:"name" binding:"required"`
	Email           string    `json:"email" binding:"omitempty,email"`
	Phone           string    `json:"phone" binding:"required"`
	Service         string    `json:"service" binding:"required"`
	Date            time.Time `json:"date" binding:"required"`
	Time            string    `json:"time" binding:"required"`
	MedicalServices string    `json:"medicalServices"`
	Message         string    `json:"message"`
}

// CreateReservation books an appointment from the public reservation form.
func (h *PublicHandler) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Intake.Reserve(intake.ReservationInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Service:         req.Service,
		Date:            req.Date,
		Time:            req.Time,
		MedicalServices: req.MedicalServices,
		Message:         req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduling.ErrSlotTaken):
			utils.BadRequest(c, "Time slot is already booked. Please choose another time.")
		case errors.Is(err, scheduling.ErrInvalidRange):
			utils.BadRequest(c, err.Error())
		case errors.Is(err, intake.ErrBadTime):
			utils.BadRequest(c, err.Error())
		case errors.Is(err, intake.ErrNoUsers):
			utils.ServiceUnavailable(c, err.Error())
		default:
			utils.InternalServerError(c, "Failed to create reservation: "+err.Error())
		}
		return
	}

	utils.Created(c, "Reservation created successfully", appointment)
}
