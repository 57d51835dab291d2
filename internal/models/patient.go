package models

import (
	"time"
)

// Gender enum
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Patient represents a clinic patient record
type Patient struct {
	BaseModel
	FirstName        string    `gorm:"size:100;not null" json:"firstName"`
	LastName         string    `gorm:"size:100;not null" json:"lastName"`
	DateOfBirth      time.Time `json:"dateOfBirth"`
	Gender           Gender    `gorm:"size:10;default:'OTHER'" json:"gender"`
	Phone            string    `gorm:"size:30;index;not null" json:"phone"`
	Email            string    `gorm:"size:255;index" json:"email,omitempty"`
	Address          string    `gorm:"size:255" json:"address,omitempty"`
	EmergencyContact string    `gorm:"size:255" json:"emergencyContact,omitempty"`
	Allergies        string    `gorm:"type:text" json:"allergies,omitempty"`
	MedicalServices  string    `gorm:"type:text" json:"medicalServices,omitempty"`
	Notes            string    `gorm:"type:text" json:"notes,omitempty"`

	// Relations (not always preloaded)
	Appointments   []Appointment   `gorm:"foreignKey:PatientID" json:"appointments,omitempty"`
	MedicalRecords []MedicalRecord `gorm:"foreignKey:PatientID" json:"medicalRecords,omitempty"`
	Invoices       []Invoice       `gorm:"foreignKey:PatientID" json:"invoices,omitempty"`
}
