package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hivcare-app-server/internal/clinical"
	"hivcare-app-server/internal/utils"
)

// respondClinicalError maps a rejection from the decision core to the
// right HTTP response. Lifecycle conflicts are 409, validation
// failures 422.
func respondClinicalError(c *gin.Context, err error) {
	var (
		invalidTransition *clinical.InvalidTransitionError
		terminalState     *clinical.TerminalStateError
		labTransition     *clinical.LabOrderTransitionError
		duplicate         *clinical.DuplicateEnrollmentError
		validation        *clinical.ValidationError
	)
	switch {
	case errors.As(err, &invalidTransition), errors.As(err, &terminalState),
		errors.As(err, &labTransition), errors.As(err, &duplicate):
		utils.Conflict(c, err.Error())
	case errors.As(err, &validation):
		utils.UnprocessableEntity(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}
