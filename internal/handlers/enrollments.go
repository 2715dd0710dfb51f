package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hivcare-app-server/internal/clinical"
	"hivcare-app-server/internal/middleware"
	"hivcare-app-server/internal/models"
	"hivcare-app-server/internal/utils"
)

// EnrollmentHandler handles ART, PEP and PrEP program enrollments.
type EnrollmentHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(db *gorm.DB, log *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{DB: db, Log: log}
}

// hasActiveEnrollment reports whether the patient already holds an
// active record for the program. Checked immediately before the write.
func (h *EnrollmentHandler) hasActiveEnrollment(patientID string, program models.Program) (bool, error) {
	var count int64
	err := h.DB.Model(&models.Enrollment{}).
		Where("patient_id = ? AND program = ? AND status = ?", patientID, program, models.EnrollmentActive).
		Count(&count).Error
	return count > 0, err
}

// htsRecordConsumed reports whether an active enrollment in the program
// already links this HTS record. The eligible-records listing applies
// the same rule, but the submission is checked on its own so a stale
// listing cannot double-link one test.
func (h *EnrollmentHandler) htsRecordConsumed(htsRecordID string, program models.Program) (bool, error) {
	var count int64
	err := h.DB.Model(&models.Enrollment{}).
		Where("hts_record_id = ? AND program = ? AND status = ?", htsRecordID, program, models.EnrollmentActive).
		Count(&count).Error
	return count > 0, err
}

// EnrollARTRequest represents the request body for an ART enrollment.
type EnrollARTRequest struct {
	PatientID       string     `json:"patientId" binding:"required,uuid"`
	EnrollmentDate  *time.Time `json:"enrollmentDate"`
	RegimenCode     string     `json:"regimenCode" binding:"required"`
	WHOStage        string     `json:"whoStage"`
	PriorARTHistory string     `json:"priorArtHistory"`
	SupporterName   string     `json:"supporterName"`
	SupporterPhone  string     `json:"supporterPhone"`
}

// EnrollART enrolls a patient into ART and places the baseline viral
// load order. A failed baseline order is reported as a warning; the
// enrollment itself stands.
func (h *EnrollmentHandler) EnrollART(c *gin.Context) {
	var req EnrollARTRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if !h.patientExists(c, req.PatientID) {
		return
	}

	hasActive, err := h.hasActiveEnrollment(req.PatientID, models.ProgramART)
	if err != nil {
		utils.InternalServerError(c, "Database error checking enrollments: "+err.Error())
		return
	}

	input := clinical.ARTInput{
		PatientID:       req.PatientID,
		RegimenCode:     req.RegimenCode,
		WHOStage:        req.WHOStage,
		PriorARTHistory: req.PriorARTHistory,
		SupporterName:   req.SupporterName,
		SupporterPhone:  req.SupporterPhone,
	}
	if req.EnrollmentDate != nil {
		input.EnrollmentDate = *req.EnrollmentDate
	}

	decision, err := clinical.EnrollART(input, hasActive, time.Now())
	if err != nil {
		respondClinicalError(c, err)
		return
	}

	enrollment := decision.Enrollment
	if err := h.DB.Create(&enrollment).Error; err != nil {
		utils.InternalServerError(c, "Failed to create enrollment: "+err.Error())
		return
	}

	warnings := decision.Warnings
	userID, _ := middleware.GetUserIDFromContext(c)
	for _, cmd := range decision.Commands {
		command, isOrder := cmd.(clinical.CreateLabOrder)
		if !isOrder {
			continue
		}
		order := models.LabOrder{
			OrderNumber:  clinical.NewDocumentNumber("LAB", time.Now()),
			PatientID:    enrollment.PatientID,
			EnrollmentID: enrollment.ID,
			OrderedByID:  userID,
			TestType:     command.TestType,
			Indication:   command.Indication,
			Status:       models.LabOrderOrdered,
		}
		if err := h.DB.Create(&order).Error; err != nil {
			// The enrollment stands; the missed baseline order is
			// surfaced to the caller and logged for follow-up.
			h.Log.Warn("baseline lab order failed after ART enrollment",
				zap.String("enrollment", enrollment.ProgramNumber),
				zap.Error(err),
			)
			warnings = append(warnings, clinical.Warning{
				Code:    clinical.WarnNonFatalSideEffectFailed,
				Message: "baseline viral load order could not be created: " + err.Error(),
			})
		}
	}

	if len(warnings) > 0 {
		utils.CreatedWithWarnings(c, "ART enrollment created", enrollment, warnings)
		return
	}
	utils.Created(c, "ART enrollment created", enrollment)
}

// EnrollPEPRequest represents the request body for a PEP enrollment.
type EnrollPEPRequest struct {
	PatientID         string     `json:"patientId" binding:"required,uuid"`
	HTSRecordID       string     `json:"htsRecordId" binding:"required,uuid"`
	EnrollmentDate    *time.Time `json:"enrollmentDate"`
	ExposureDate      time.Time  `json:"exposureDate" binding:"required"`
	ModeOfExposure    string     `json:"modeOfExposure" binding:"required"`
	DurationBeforePEP string     `json:"durationBeforePep" binding:"required"`
	// Client forms may echo a status; the stored value is always
	// derived from the linked HTS record.
	HIVStatusAtExposure string `json:"hivStatusAtExposure"`
	SupporterName       string `json:"supporterName"`
	SupporterPhone      string `json:"supporterPhone"`
}

// EnrollPEP enrolls a patient into PEP against a linked HTS record.
func (h *EnrollmentHandler) EnrollPEP(c *gin.Context) {
	var req EnrollPEPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	hts, ok := h.loadHTSRecord(c, req.HTSRecordID)
	if !ok {
		return
	}

	hasActive, err := h.hasActiveEnrollment(req.PatientID, models.ProgramPEP)
	if err != nil {
		utils.InternalServerError(c, "Database error checking enrollments: "+err.Error())
		return
	}
	htsConsumed, err := h.htsRecordConsumed(req.HTSRecordID, models.ProgramPEP)
	if err != nil {
		utils.InternalServerError(c, "Database error checking HTS record: "+err.Error())
		return
	}

	input := clinical.PEPInput{
		PatientID:         req.PatientID,
		HTSRecordID:       req.HTSRecordID,
		ExposureDate:      req.ExposureDate,
		ModeOfExposure:    req.ModeOfExposure,
		DurationBeforePEP: req.DurationBeforePEP,
		ReportedHIVStatus: req.HIVStatusAtExposure,
		SupporterName:     req.SupporterName,
		SupporterPhone:    req.SupporterPhone,
	}
	if req.EnrollmentDate != nil {
		input.EnrollmentDate = *req.EnrollmentDate
	}

	decision, err := clinical.EnrollPEP(input, *hts, hasActive, htsConsumed, time.Now())
	if err != nil {
		respondClinicalError(c, err)
		return
	}

	for _, warning := range decision.Warnings {
		if warning.Code == clinical.WarnDerivedDataMismatch {
			h.Log.Warn("client-supplied HIV status overridden",
				zap.String("htsRecord", req.HTSRecordID),
				zap.String("detail", warning.Message),
			)
		}
	}

	enrollment := decision.Enrollment
	if err := h.DB.Create(&enrollment).Error; err != nil {
		utils.InternalServerError(c, "Failed to create enrollment: "+err.Error())
		return
	}

	if len(decision.Warnings) > 0 {
		utils.CreatedWithWarnings(c, "PEP enrollment created", enrollment, decision.Warnings)
		return
	}
	utils.Created(c, "PEP enrollment created", enrollment)
}

// EnrollPrEPRequest represents the request body for a PrEP commencement.
type EnrollPrEPRequest struct {
	PatientID      string     `json:"patientId" binding:"required,uuid"`
	HTSRecordID    string     `json:"htsRecordId" binding:"required,uuid"`
	EnrollmentDate *time.Time `json:"enrollmentDate"`
	SupporterName  string     `json:"supporterName"`
	SupporterPhone string     `json:"supporterPhone"`
}

// EnrollPrEP commences a patient on PrEP against a linked HTS record.
func (h *EnrollmentHandler) EnrollPrEP(c *gin.Context) {
	var req EnrollPrEPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	hts, ok := h.loadHTSRecord(c, req.HTSRecordID)
	if !ok {
		return
	}

	hasActive, err := h.hasActiveEnrollment(req.PatientID, models.ProgramPrEP)
	if err != nil {
		utils.InternalServerError(c, "Database error checking enrollments: "+err.Error())
		return
	}
	htsConsumed, err := h.htsRecordConsumed(req.HTSRecordID, models.ProgramPrEP)
	if err != nil {
		utils.InternalServerError(c, "Database error checking HTS record: "+err.Error())
		return
	}

	input := clinical.PrEPInput{
		PatientID:      req.PatientID,
		HTSRecordID:    req.HTSRecordID,
		SupporterName:  req.SupporterName,
		SupporterPhone: req.SupporterPhone,
	}
	if req.EnrollmentDate != nil {
		input.EnrollmentDate = *req.EnrollmentDate
	}

	decision, err := clinical.EnrollPrEP(input, *hts, hasActive, htsConsumed, time.Now())
	if err != nil {
		respondClinicalError(c, err)
		return
	}

	enrollment := decision.Enrollment
	if err := h.DB.Create(&enrollment).Error; err != nil {
		utils.InternalServerError(c, "Failed to create enrollment: "+err.Error())
		return
	}

	utils.Created(c, "PrEP commencement created", enrollment)
}

// GetEnrollments lists enrollments, optionally filtered by patient or program.
func (h *EnrollmentHandler) GetEnrollments(c *gin.Context) {
	query := h.DB.Order("enrollment_date desc")
	if patientID := c.Query("patient_id"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if program := c.Query("program"); program != "" {
		query = query.Where("program = ?", program)
	}

	var enrollments []models.Enrollment
	if err := query.Find(&enrollments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch enrollments: "+err.Error())
		return
	}
	utils.Success(c, "Enrollments fetched successfully", enrollments)
}

func (h *EnrollmentHandler) patientExists(c *gin.Context, patientID string) bool {
	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return false
	}
	return true
}

func (h *EnrollmentHandler) loadHTSRecord(c *gin.Context, id string) (*models.HTSRecord, bool) {
	var hts models.HTSRecord
	if err := h.DB.First(&hts, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "HTS record not found")
		} else {
			utils.InternalServerError(c, "Database error fetching HTS record: "+err.Error())
		}
		return nil, false
	}
	return &hts, true
}
