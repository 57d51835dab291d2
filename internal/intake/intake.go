package intake

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/scheduling"
)

var (
	// ErrNoUsers is returned when no user exists to act as the assigned
	// doctor. This is a misconfigured system, not a bad request.
	ErrNoUsers = errors.New("no available doctor in the system")
	// ErrBadTime is returned for a reservation time not in HH:MM form.
	ErrBadTime = errors.New("invalid reservation time: expected HH:MM")
)

// DefaultDuration is the slot length for public reservations.
const DefaultDuration = time.Hour

// placeholderDOB stands in until the front desk records the real birth date.
var placeholderDOB = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// SplitName splits a free-text full name into first and last name.
// A single-token name is used for both parts.
func SplitName(full string) (firstName, lastName string) {
	parts := strings.Fields(strings.TrimSpace(full))
	if len(parts) == 0 {
		return "", ""
	}
	firstName = parts[0]
	lastName = strings.Join(parts[1:], " ")
	if lastName == "" {
		lastName = firstName
	}
	return firstName, lastName
}

// ParseSlot anchors an "HH:MM" time string to the given date and returns
// the start and end of a default-length slot.
func ParseSlot(date time.Time, hhmm string) (start, end time.Time, err error) {
	clock, err := time.ParseInLocation("15:04", hhmm, date.Location())
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrBadTime, hhmm)
	}
	start = time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, date.Location())
	return start, start.Add(DefaultDuration), nil
}

// Adapter translates public booking-form input into the canonical patient
// and appointment shapes and delegates slot admission to the scheduling engine.
type Adapter struct {
	DB     *gorm.DB
	Engine *scheduling.Engine
}

// NewAdapter creates a new reservation intake Adapter.
func NewAdapter(db *gorm.DB, engine *scheduling.Engine) *Adapter {
	return &Adapter{DB: db, Engine: engine}
}

// ReservationInput is the normalized public reservation form.
type ReservationInput struct {
	Name            string
	Email           string
	Phone           string
	Service         string
	Date            time.Time
	Time            string
	MedicalServices string
	Message         string
}

// FindOrCreatePatient matches an existing patient by phone or email, or
// creates a provisional record with placeholder date of birth and gender.
func (a *Adapter) FindOrCreatePatient(input ReservationInput) (*models.Patient, error) {
	var patient models.Patient

	query := a.DB.Where("phone = ?", input.Phone)
	if input.Email != "" {
		query = a.DB.Where("phone = ? OR email = ?", input.Phone, input.Email)
	}
	err := query.First(&patient).Error
	if err == nil {
		return &patient, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	firstName, lastName := SplitName(input.Name)
	notes := input.Message
	if notes == "" {
		notes = "Patient created from online reservation"
	}
	patient = models.Patient{
		FirstName:       firstName,
		LastName:        lastName,
		Phone:           input.Phone,
		Email:           input.Email,
		DateOfBirth:     placeholderDOB,
		Gender:          models.GenderOther,
		MedicalServices: input.MedicalServices,
		Notes:           notes,
	}
	if err := a.DB.Create(&patient).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

// ResolveDoctor picks a doctor for the reservation: any user with the
// DOCTOR role, falling back to any user at all.
func (a *Adapter) ResolveDoctor() (*models.User, error) {
	var doctor models.User
	err := a.DB.Where("role = ?", models.RoleDoctor).First(&doctor).Error
	if err == nil {
		return &doctor, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = a.DB.First(&doctor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoUsers
	} else if err != nil {
		return nil, err
	}
	return &doctor, nil
}

// Reserve books a public reservation end to end: patient lookup/creation,
// doctor resolution, slot parsing and admission through the scheduling
// engine. Scheduling errors pass through unchanged for the handler to map.
func (a *Adapter) Reserve(input ReservationInput) (*models.Appointment, error) {
	patient, err := a.FindOrCreatePatient(input)
	if err != nil {
		return nil, err
	}

	doctor, err := a.ResolveDoctor()
	if err != nil {
		return nil, err
	}

	start, end, err := ParseSlot(input.Date, input.Time)
	if err != nil {
		return nil, err
	}

	notes := input.Message
	if notes == "" {
		notes = "Online reservation"
	}
	day := time.Date(input.Date.Year(), input.Date.Month(), input.Date.Day(),
		0, 0, 0, 0, input.Date.Location())
	appointment := &models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      day,
		StartTime: start,
		EndTime:   end,
		Status:    models.StatusScheduled,
		Reason:    input.Service,
		Notes:     notes,
	}
	if err := a.Engine.Book(appointment); err != nil {
		return nil, err
	}

	appointment.Patient = *patient
	appointment.Doctor = *doctor
	return appointment, nil
}
