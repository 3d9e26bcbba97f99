package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// validate instancia compartida; validator cachea la metadata de cada struct.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct valida las etiquetas `validate` y devuelve un ErrInvalidInput con los campos fallidos.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
}

// statusFor traduce errores de dominio a estado HTTP y código de respuesta.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrRangeTooLong),
		errors.Is(err, domain.ErrUnsupportedGranularity),
		errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, domain.ErrCalculationInProgress):
		return fiber.StatusConflict, "CALCULATION_IN_PROGRESS"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// publicMessage oculta el detalle de los errores internos.
func publicMessage(status int, err error) string {
	if status == fiber.StatusInternalServerError {
		return "error interno, revise los logs del servicio"
	}
	return err.Error()
}

// respondError escribe el cuerpo de error.
func respondError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: publicMessage(status, err)})
}

// respondRunError como respondError pero adjunta el resumen parcial de la corrida.
func respondRunError(c *fiber.Ctx, err error, summary *dto.RunSummaryDTO) error {
	if summary == nil {
		return respondError(c, err)
	}
	status, code := statusFor(err)
	return c.Status(status).JSON(dto.RunErrorResponse{
		Code:    code,
		Message: publicMessage(status, err),
		Summary: summary,
	})
}
