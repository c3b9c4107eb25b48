// Package analytics contiene el resumen del almacén para el dashboard.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-api/internal/application/dto"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/inventory"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

const dashboardLowStockLimit = 10 // productos en el widget de stock bajo

// DashboardUseCase genera el resumen de inventario y cartera.
//
// Fuente de datos: repositorios de productos y registros (consultas read-only).
type DashboardUseCase struct {
	products          repository.ProductRepository
	transactions      repository.TransactionRepository
	lowStockThreshold int64
	now               func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(products repository.ProductRepository, transactions repository.TransactionRepository, lowStockThreshold int64) *DashboardUseCase {
	return &DashboardUseCase{
		products:          products,
		transactions:      transactions,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Tres consultas en paralelo:
//  1. conteos (productos, pedidos, créditos)
//  2. ListLowStock(umbral)  → LowStock
//  3. ListOpenCredits       → cartera pendiente y créditos por estado
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	type countsResult struct {
		products, orders, credits int64
		err                       error
	}
	type lowStockResult struct {
		items []*entity.Product
		err   error
	}
	type creditsResult struct {
		items []*entity.Transaction
		err   error
	}

	countsCh := make(chan countsResult, 1)
	lowCh := make(chan lowStockResult, 1)
	creditsCh := make(chan creditsResult, 1)

	go func() {
		var r countsResult
		if r.products, r.err = uc.products.Count(ctx); r.err != nil {
			countsCh <- r
			return
		}
		if r.orders, r.err = uc.transactions.CountByKind(ctx, entity.KindOrder); r.err != nil {
			countsCh <- r
			return
		}
		r.credits, r.err = uc.transactions.CountByKind(ctx, entity.KindCredit)
		countsCh <- r
	}()
	go func() {
		items, err := uc.products.ListLowStock(ctx, uc.lowStockThreshold, dashboardLowStockLimit)
		lowCh <- lowStockResult{items, err}
	}()
	go func() {
		items, err := uc.transactions.ListOpenCredits(ctx)
		creditsCh <- creditsResult{items, err}
	}()

	counts := <-countsCh
	low := <-lowCh
	credits := <-creditsCh

	if counts.err != nil {
		return nil, fmt.Errorf("dashboard: conteos: %w", counts.err)
	}
	if low.err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo: %w", low.err)
	}
	if credits.err != nil {
		return nil, fmt.Errorf("dashboard: créditos abiertos: %w", credits.err)
	}

	// ── Cartera ────────────────────────────────────────────────────────────────
	outstanding := decimal.Zero
	var active, overdue int
	for _, c := range credits.items {
		inventory.Recompute(c, now)
		switch c.Status {
		case entity.CreditStatusActive:
			active++
		case entity.CreditStatusOverdue:
			overdue++
		}
		if c.RemainingAmount.IsPositive() {
			outstanding = outstanding.Add(c.RemainingAmount)
		}
	}

	lowStock := make([]dto.LowStockDTO, 0, len(low.items))
	for _, p := range low.items {
		lowStock = append(lowStock, dto.LowStockDTO{ProductID: p.ID, ProductName: p.Name, Quantity: p.Quantity})
	}

	return &dto.DashboardSummaryDTO{
		ProductCount:           counts.products,
		OrderCount:             counts.orders,
		CreditCount:            counts.credits,
		CreditsActive:          active,
		CreditsOverdue:         overdue,
		OutstandingReceivables: outstanding.Round(2),
		LowStock:               lowStock,
		LowStockThreshold:      uc.lowStockThreshold,
		DateLabel:              monthLabel(now),
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
