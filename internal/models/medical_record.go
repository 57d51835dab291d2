package models

import (
	"time"
)

// MedicalRecord represents a treatment entry in a patient's dental history
type MedicalRecord struct {
	BaseModel
	PatientID    string    `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID     string    `gorm:"size:36;index;not null" json:"doctorId"`
	Date         time.Time `json:"date"`
	Diagnosis    string    `gorm:"size:255;not null" json:"diagnosis"`
	Symptoms     string    `gorm:"type:text" json:"symptoms,omitempty"`
	Treatment    string    `gorm:"type:text;not null" json:"treatment"`
	Prescription string    `gorm:"type:text" json:"prescription,omitempty"`
	Notes        string    `gorm:"type:text" json:"notes,omitempty"`

	// Relations
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  User    `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}
