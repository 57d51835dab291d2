package scheduling

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dental-clinic-server/internal/models"
)

var (
	// ErrInvalidRange is returned when a proposed slot has startTime >= endTime.
	ErrInvalidRange = errors.New("appointment start time must be before end time")
	// ErrSlotTaken is returned when a proposed slot overlaps an existing appointment.
	ErrSlotTaken = errors.New("time slot is already booked")
)

// Statuses that free up a slot: cancelled and completed appointments
// no longer block the doctor's calendar.
var terminalStatuses = []models.AppointmentStatus{
	models.StatusCancelled,
	models.StatusCompleted,
}

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2)
// intersect. Back-to-back slots (e1 == s2) do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// Engine decides whether a proposed appointment may be admitted for a
// given doctor without creating a double-booking.
type Engine struct {
	DB *gorm.DB
}

// NewEngine creates a new scheduling Engine.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{DB: db}
}

// conflictQuery selects the doctor's non-terminal appointments on the given
// day whose slot intersects [start, end). The overlap predicate is pushed
// into SQL so the database sees the exact same half-open test as Overlaps.
func (e *Engine) conflictQuery(tx *gorm.DB, doctorID string, date, start, end time.Time, excludeID string) *gorm.DB {
	q := tx.Model(&models.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Where("date = ?", date).
		Where("status NOT IN ?", terminalStatuses).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != "" {
		q = q.Where("id != ?", excludeID)
	}
	return q
}

// CheckAvailability returns nil when the slot [start, end) is free for the
// doctor on the given date, ErrSlotTaken when it collides with an existing
// appointment, and ErrInvalidRange when the slot itself is malformed.
// excludeID skips one appointment, used when re-validating an edit.
func (e *Engine) CheckAvailability(doctorID string, date, start, end time.Time, excludeID string) error {
	if !start.Before(end) {
		return ErrInvalidRange
	}

	var count int64
	if err := e.conflictQuery(e.DB, doctorID, date, start, end, excludeID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSlotTaken
	}
	return nil
}

// Book admits and persists a new appointment. The availability check and the
// insert run in one transaction with the conflicting range locked, so two
// concurrent requests for the same slot cannot both pass the check.
func (e *Engine) Book(appointment *models.Appointment) error {
	if !appointment.StartTime.Before(appointment.EndTime) {
		return ErrInvalidRange
	}

	return e.DB.Transaction(func(tx *gorm.DB) error {
		var conflicts []models.Appointment
		err := e.conflictQuery(tx, appointment.DoctorID, appointment.Date,
			appointment.StartTime, appointment.EndTime, appointment.ID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Find(&conflicts).Error
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return ErrSlotTaken
		}

		return tx.Create(appointment).Error
	})
}

// Reschedule moves an existing appointment to a new slot, re-validating
// availability with the appointment itself excluded from the conflict set.
func (e *Engine) Reschedule(appointment *models.Appointment, date, start, end time.Time) error {
	if !start.Before(end) {
		return ErrInvalidRange
	}

	return e.DB.Transaction(func(tx *gorm.DB) error {
		var conflicts []models.Appointment
		err := e.conflictQuery(tx, appointment.DoctorID, date, start, end, appointment.ID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Find(&conflicts).Error
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return ErrSlotTaken
		}

		appointment.Date = date
		appointment.StartTime = start
		appointment.EndTime = end
		return tx.Save(appointment).Error
	})
}
