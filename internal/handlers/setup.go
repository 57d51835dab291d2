package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// SetupHandler handles one-time system bootstrap.
type SetupHandler struct {
	DB *gorm.DB
}

// NewSetupHandler creates a new SetupHandler.
func NewSetupHandler(db *gorm.DB) *SetupHandler {
	return &SetupHandler{DB: db}
}

// InitAdminRequest represents the optional credentials for the first admin.
type InitAdminRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,min=8"`
	Name     string `json:"name"`
}

// InitAdmin creates the first admin and a default doctor account. It refuses
// to run once any user exists.
func (h *SetupHandler) InitAdmin(c *gin.Context) {
	// The body is optional; defaults are used when it is absent
	var req InitAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var userCount int64
	if err := h.DB.Model(&models.User{}).Count(&userCount).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if userCount > 0 {
		utils.BadRequest(c, "Setup already completed. Users already exist in the database.")
		return
	}

	adminEmail := req.Email
	if adminEmail == "" {
		adminEmail = "admin@aghna-dental.com"
	}
	adminPassword := req.Password
	if adminPassword == "" {
		adminPassword = "admin123"
	}
	adminName := req.Name
	if adminName == "" {
		adminName = "Administrator"
	}

	admin := models.User{
		Email: adminEmail,
		Name:  adminName,
		Role:  models.RoleAdmin,
	}
	if err := admin.SetPassword(adminPassword); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	doctor := models.User{
		Email: "doctor@aghna-dental.com",
		Name:  "Dr. Aghna",
		Role:  models.RoleDoctor,
	}
	if err := doctor.SetPassword("doctor123"); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		return tx.Create(&doctor).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create default users: "+err.Error())
		return
	}

	utils.Created(c, "Admin user created successfully. Please change the default passwords after first login.", gin.H{
		"user": admin.Sanitize(),
	})
}
