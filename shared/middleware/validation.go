package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/meridianbank/banking/shared/errs"
)

var validate = validator.New()

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type BadRequestErrorResponse struct {
	Message string            `json:"message"`
	Details []ValidationError `json:"details"`
}

func ValidateRequest(obj any) []ValidationError {
	var validationErrors []ValidationError

	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	for _, err := range err.(validator.ValidationErrors) {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: getErrorMsg(err),
			Type:    err.Tag(),
		})
	}

	return validationErrors
}

func getErrorMsg(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "oneof":
		return "Value must be one of: " + err.Param()
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gt":
		return "Value must be greater than " + err.Param()
	case "gte":
		return "Value must be greater than or equal to " + err.Param()
	default:
		return "Invalid value"
	}
}

func RespondWithValidationError(c *gin.Context, validationErrors []ValidationError) {
	c.JSON(http.StatusBadRequest, BadRequestErrorResponse{
		Message: "Invalid request data",
		Details: validationErrors,
	})
}

func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"message": message,
	})
}

// RespondWithDomainError maps the shared failure taxonomy to HTTP statuses:
// validation and currency mismatch → 400, not found → 404, invalid state
// transition → 409, balance rule violations → 422. Anything unrecognised is
// a 500 with a generic message.
func RespondWithDomainError(c *gin.Context, err error) {
	var (
		validation   *errs.ValidationError
		notFound     *errs.NotFoundError
		transition   *errs.InvalidStateTransitionError
		mismatch     *errs.CurrencyMismatchError
		noFunds      *errs.InsufficientFundsError
		noAvailFunds *errs.InsufficientAvailableFundsError
	)
	switch {
	case errors.As(err, &validation):
		RespondWithError(c, http.StatusBadRequest, validation.Msg)
	case errors.As(err, &mismatch):
		RespondWithError(c, http.StatusBadRequest, mismatch.Error())
	case errors.As(err, &notFound):
		RespondWithError(c, http.StatusNotFound, notFound.Error())
	case errors.As(err, &transition):
		RespondWithError(c, http.StatusConflict, transition.Error())
	case errors.As(err, &noFunds):
		RespondWithError(c, http.StatusUnprocessableEntity, noFunds.Error())
	case errors.As(err, &noAvailFunds):
		RespondWithError(c, http.StatusUnprocessableEntity, noAvailFunds.Error())
	default:
		RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
