package handler

import (
	"errors"
	"fmt"

	"go-stock-ledger/internal/apierror"
	"go-stock-ledger/internal/middleware"
	"go-stock-ledger/internal/service"
	"go-stock-ledger/pkg/jwt"
	"go-stock-ledger/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func localString(c *fiber.Ctx, key string) string {
	if v, ok := c.Locals(key).(string); ok {
		return v
	}
	return ""
}

// actor builds the operator from the JWT context set by RequireAuth.
func actor(c *fiber.Ctx) service.Actor {
	return service.Actor{
		UserID: localString(c, middleware.LocalUserID),
		Name:   localString(c, middleware.LocalUserName),
		Email:  localString(c, middleware.LocalUserEmail),
	}
}

// parseUUID reads the :id route param. The returned error is a 400
// *fiber.Error for the app error handler to render.
func parseUUID(c *fiber.Ctx, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+what+" ID")
	}
	return id, nil
}

// bindAndValidate parses the JSON body and runs the validator tags. When it
// returns false the response has been written.
func bindAndValidate(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(apierror.NewValidation([]apierror.FieldError{{
			Kind:    apierror.KindInvalid,
			Message: "Invalid JSON: " + err.Error(),
		}}))
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		fields := make([]apierror.FieldError, len(errs))
		for i, e := range errs {
			fields[i] = apierror.FieldError{
				Kind:    apierror.KindInvalid,
				Field:   e.FailedField,
				Message: fmt.Sprintf("%s failed on '%s'", e.FailedField, e.Tag),
			}
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(apierror.NewValidation(fields))
	}
	return true, nil
}

// statusFor maps a service error to its HTTP status. 500 means the error is
// not a client problem.
func statusFor(err error) int {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		if verr.Kind == apierror.KindDuplicate {
			return fiber.StatusConflict
		}
		return fiber.StatusBadRequest
	}
	switch {
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrTransactionNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrStockBusy),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrLastAdmin):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserInactive),
		errors.Is(err, service.ErrSessionReplaced),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrMissingToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrUnknownRole),
		errors.Is(err, service.ErrDeleteSelf):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// respondError writes the envelope for err. Validation errors use the
// field list; unknown errors go to the app error handler.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		return err
	}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return c.Status(status).JSON(apierror.NewValidation(verr.Errors))
	}
	return c.Status(status).JSON(apierror.New(err.Error()))
}
