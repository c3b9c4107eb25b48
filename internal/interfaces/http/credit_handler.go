package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-api/internal/application/dto"
	"github.com/jhoicas/warehouse-api/internal/application/usecase"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

// CreditHandler maneja créditos y sus abonos.
type CreditHandler struct {
	uc        *usecase.TransactionUseCase
	statement *usecase.StatementUseCase
}

// NewCreditHandler construye el handler.
func NewCreditHandler(uc *usecase.TransactionUseCase, statement *usecase.StatementUseCase) *CreditHandler {
	return &CreditHandler{uc: uc, statement: statement}
}

// Create godoc
// @Summary      Crear crédito
// @Description  Descuenta el stock y registra paid_amount como abono inicial.
// @Tags         credits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCreditRequest  true  "Crédito"
// @Success      201   {object}  dto.CreditResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/credits [post]
func (h *CreditHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCreditRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateCredit(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener crédito
// @Tags         credits
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del crédito"
// @Success      200  {object}  dto.CreditResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credits/{id} [get]
func (h *CreditHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetCredit(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "crédito")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar créditos
// @Tags         credits
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.CreditListResponse
// @Router       /api/credits [get]
func (h *CreditHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.ListCredits(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar crédito
// @Tags         credits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del crédito"
// @Param        body  body  dto.UpdateCreditRequest  true  "Crédito"
// @Success      200   {object}  dto.CreditResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/credits/{id} [put]
func (h *CreditHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCreditRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateCredit(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar crédito
// @Tags         credits
// @Security     Bearer
// @Param        id   path  string  true  "ID del crédito"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credits/{id} [delete]
func (h *CreditHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteCredit(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddPayment godoc
// @Summary      Registrar abono
// @Tags         credits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del crédito"
// @Param        body  body  dto.AddPaymentRequest  true  "Abono"
// @Success      200   {object}  dto.CreditResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/credits/{id}/payment [post]
func (h *CreditHandler) AddPayment(c *fiber.Ctx) error {
	var in dto.AddPaymentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.AddPayment(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Statement godoc
// @Summary      Descargar estado de cuenta en PDF
// @Tags         credits
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del crédito"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credits/{id}/statement [get]
func (h *CreditHandler) Statement(c *fiber.Ctx) error {
	return sendStatement(c, h.statement, entity.KindCredit)
}
