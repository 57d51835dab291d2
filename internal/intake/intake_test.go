package intake

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/scheduling"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name      string
		full      string
		wantFirst string
		wantLast  string
	}{
		{"single token duplicates", "Budi", "Budi", "Budi"},
		{"two tokens", "Budi Santoso", "Budi", "Santoso"},
		{"three tokens", "Budi Agus Santoso", "Budi", "Agus Santoso"},
		{"surrounding whitespace", "  Budi Santoso  ", "Budi", "Santoso"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := SplitName(tt.full)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestParseSlot(t *testing.T) {
	date := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	start, end, err := ParseSlot(date, "09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC), start)
	assert.Equal(t, start.Add(time.Hour), end)
}

func TestParseSlotRejectsMalformedTime(t *testing.T) {
	date := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	for _, bad := range []string{"9am", "25:00", "09:61", "morning", ""} {
		_, _, err := ParseSlot(date, bad)
		assert.ErrorIs(t, err, ErrBadTime, "input %q", bad)
	}
}

func TestFindOrCreatePatientMatchesExisting(t *testing.T) {
	db, mock := newTestDB(t)
	adapter := NewAdapter(db, scheduling.NewEngine(db))

	mock.ExpectQuery("SELECT .* FROM `patients`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "phone"}).
			AddRow("patient-1", "Budi", "Santoso", "0812345"))

	patient, err := adapter.FindOrCreatePatient(ReservationInput{
		Name:  "Budi Santoso",
		Phone: "0812345",
	})
	require.NoError(t, err)
	assert.Equal(t, "patient-1", patient.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOrCreatePatientCreatesProvisionalRecord(t *testing.T) {
	db, mock := newTestDB(t)
	adapter := NewAdapter(db, scheduling.NewEngine(db))

	mock.ExpectQuery("SELECT .* FROM `patients`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `patients`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	patient, err := adapter.FindOrCreatePatient(ReservationInput{
		Name:  "Budi",
		Phone: "0812345",
		Email: "budi@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Budi", patient.FirstName)
	assert.Equal(t, "Budi", patient.LastName)
	assert.Equal(t, models.GenderOther, patient.Gender)
	assert.Equal(t, 2000, patient.DateOfBirth.Year())
	assert.Equal(t, "Patient created from online reservation", patient.Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveDoctorPrefersDoctorRole(t *testing.T) {
	db, mock := newTestDB(t)
	adapter := NewAdapter(db, scheduling.NewEngine(db))

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "role"}).
			AddRow("doctor-1", "Dr. Aghna", "DOCTOR"))

	doctor, err := adapter.ResolveDoctor()
	require.NoError(t, err)
	assert.Equal(t, "doctor-1", doctor.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveDoctorFallsBackToAnyUser(t *testing.T) {
	db, mock := newTestDB(t)
	adapter := NewAdapter(db, scheduling.NewEngine(db))

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "role"}).
			AddRow("admin-1", "Administrator", "ADMIN"))

	doctor, err := adapter.ResolveDoctor()
	require.NoError(t, err)
	assert.Equal(t, "admin-1", doctor.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveDoctorNoUsers(t *testing.T) {
	db, mock := newTestDB(t)
	adapter := NewAdapter(db, scheduling.NewEngine(db))

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := adapter.ResolveDoctor()
	assert.ErrorIs(t, err, ErrNoUsers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveBooksFreeSlot(t *testing.T) {
	db, mock := newTestDB(t)
	adapter := NewAdapter(db, scheduling.NewEngine(db))

	date := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	// Existing patient and doctor
	mock.ExpectQuery("SELECT .* FROM `patients`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "phone"}).
			AddRow("patient-1", "Budi", "Santoso", "0812345"))
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "role"}).
			AddRow("doctor-1", "Dr. Aghna", "DOCTOR"))

	// Booking transaction: no conflicts, insert admitted
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `appointments` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO `appointments`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	appointment, err := adapter.Reserve(ReservationInput{
		Name:    "Budi Santoso",
		Phone:   "0812345",
		Service: "Scaling",
		Date:    date,
		Time:    "09:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "patient-1", appointment.PatientID)
	assert.Equal(t, "doctor-1", appointment.DoctorID)
	assert.Equal(t, models.StatusScheduled, appointment.Status)
	assert.Equal(t, time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC), appointment.StartTime)
	assert.Equal(t, appointment.StartTime.Add(time.Hour), appointment.EndTime)
	assert.Equal(t, "Online reservation", appointment.Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
