package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-api/internal/application/dto"
	"github.com/jhoicas/warehouse-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Los errores reportan el nombre JSON del campo, no el de Go.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodifica el JSON del cuerpo y aplica las reglas `validate` del DTO.
// Con ok=false ya se respondió 400 y el handler debe devolver err tal cual.
func parseBody(c *fiber.Ctx, out any) (ok bool, err error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]any, len(verrs))
			for _, fe := range verrs {
				fields[fieldPath(fe)] = fe.Tag()
			}
			return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code: "VALIDATION", Message: "datos inválidos", Details: fields,
			})
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	return true, nil
}

// fieldPath quita el nombre del struct raíz: "CreateOrderRequest.items[0].quantity" → "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// respondError traduce errores de dominio a la respuesta HTTP.
//
//	ProductNotFoundError      → 404 PRODUCT_NOT_FOUND
//	InsufficientStockError    → 409 INSUFFICIENT_STOCK (product, available, required)
//	InvalidPaymentError       → 422 INVALID_PAYMENT
//	ErrNotFound               → 404 NOT_FOUND
//	ErrInvalidInput           → 400 VALIDATION
//	ErrConcurrencyConflict    → 409 CONCURRENCY_CONFLICT (reintentable)
//	ErrDuplicate              → 409 DUPLICATE
//	otro                      → 500 INTERNAL
//
// El detalle de los errores internos y de concurrencia no sale al cliente: queda en
// c.Locals(LocalError) para el RequestLogger.
func respondError(c *fiber.Ctx, err error) error {
	var (
		productErr *domain.ProductNotFoundError
		stockErr   *domain.InsufficientStockError
		paymentErr *domain.InvalidPaymentError
	)
	switch {
	case errors.As(err, &productErr):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code: "PRODUCT_NOT_FOUND", Message: productErr.Error(),
			Details: map[string]any{"product": productErr.Name},
		})
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "INSUFFICIENT_STOCK", Message: stockErr.Error(),
			Details: map[string]any{
				"product":   stockErr.ProductName,
				"available": stockErr.Available,
				"required":  stockErr.Required,
			},
		})
	case errors.As(err, &paymentErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_PAYMENT", Message: paymentErr.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		c.Locals(LocalError, err)
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "CONCURRENCY_CONFLICT", Message: domain.ErrConcurrencyConflict.Error(),
			Details: map[string]any{"retryable": true},
		})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	default:
		c.Locals(LocalError, err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func notFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: what + " no encontrado"})
}

// pageParams lee limit/offset con los mismos topes que el resto del API.
func pageParams(c *fiber.Ctx) (limit, offset int) {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p.Limit, p.Offset
}
