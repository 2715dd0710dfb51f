package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hivcare-app-server/internal/clinical"
	"hivcare-app-server/internal/models"
	"hivcare-app-server/internal/utils"
)

// PatientHandler handles patient registration and lookup.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

// RegisterPatientRequest represents the request body for registering a patient.
type RegisterPatientRequest struct {
	FirstName      string     `json:"firstName" binding:"required"`
	LastName       string     `json:"lastName" binding:"required"`
	DateOfBirth    *time.Time `json:"dateOfBirth"`
	Gender         string     `json:"gender"`
	PhoneNumber    string     `json:"phoneNumber"`
	Address        string     `json:"address"`
	NextOfKinName  string     `json:"nextOfKinName"`
	NextOfKinPhone string     `json:"nextOfKinPhone"`
}

// RegisterPatient creates a new patient record.
func (h *PatientHandler) RegisterPatient(c *gin.Context) {
	var req RegisterPatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient := models.Patient{
		PatientNumber:    clinical.NewDocumentNumber("PT", time.Now()),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		DateOfBirth:      req.DateOfBirth,
		Gender:           req.Gender,
		PhoneNumber:      req.PhoneNumber,
		Address:          req.Address,
		NextOfKinName:    req.NextOfKinName,
		NextOfKinPhone:   req.NextOfKinPhone,
		RegistrationDate: time.Now(),
	}
	if err := h.DB.Create(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to register patient: "+err.Error())
		return
	}
	utils.Created(c, "Patient registered successfully", patient)
}

// GetPatients lists registered patients, optionally searched by name.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	query := h.DB.Order("last_name asc")
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR patient_number LIKE ?", like, like, like)
	}

	var patients []models.Patient
	if err := query.Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

// GetPatientByID fetches a single patient record.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdatePatientRequest represents the request body for updating demographics.
type UpdatePatientRequest struct {
	PhoneNumber    string `json:"phoneNumber"`
	Address        string `json:"address"`
	NextOfKinName  string `json:"nextOfKinName"`
	NextOfKinPhone string `json:"nextOfKinPhone"`
}

// UpdatePatient updates a patient's contact details.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.PhoneNumber != "" {
		patient.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		patient.Address = req.Address
	}
	if req.NextOfKinName != "" {
		patient.NextOfKinName = req.NextOfKinName
	}
	if req.NextOfKinPhone != "" {
		patient.NextOfKinPhone = req.NextOfKinPhone
	}

	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}
	utils.Success(c, "Patient updated successfully", patient)
}
