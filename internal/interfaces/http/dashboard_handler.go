package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/warehouse-api/internal/application/analytics"
)

// DashboardHandler maneja el resumen del almacén.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve conteos, productos con stock bajo y cartera pendiente.
// GET /api/dashboard
//
// Los créditos vencidos se calculan contra la fecha del servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
