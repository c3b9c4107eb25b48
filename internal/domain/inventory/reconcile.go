package inventory

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

// ProductDelta cantidades netas de un producto antes y después de una operación.
type ProductDelta struct {
	ProductName string
	OldNet      int64
	NewNet      int64
}

// Delta unidades adicionales que salen del stock (negativo = unidades que regresan).
func (d ProductDelta) Delta() int64 {
	return d.NewNet - d.OldNet
}

// NetByProduct suma la cantidad neta por nombre de producto (varias líneas del mismo producto se acumulan).
func NetByProduct(items []entity.LineItem) map[string]int64 {
	out := make(map[string]int64, len(items))
	for _, it := range items {
		out[it.ProductName] += it.NetQuantity()
	}
	return out
}

// Diff calcula, por cada producto de la unión de ambas listas, la cantidad neta vieja y nueva.
// El resultado se ordena por nombre: es el orden en que se bloquean los productos.
func Diff(oldItems, newItems []entity.LineItem) []ProductDelta {
	oldNet := NetByProduct(oldItems)
	newNet := NetByProduct(newItems)

	names := make([]string, 0, len(oldNet)+len(newNet))
	for name := range oldNet {
		names = append(names, name)
	}
	for name := range newNet {
		if _, ok := oldNet[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]ProductDelta, 0, len(names))
	for _, name := range names {
		out = append(out, ProductDelta{ProductName: name, OldNet: oldNet[name], NewNet: newNet[name]})
	}
	return out
}

// TotalAmount Σ precio unitario * cantidad neta.
func TotalAmount(items []entity.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// CreditStatus deriva el estado de un crédito. Paid si no queda saldo, Overdue si venció, Active en otro caso.
func CreditStatus(remaining decimal.Decimal, dueDate *time.Time, now time.Time) string {
	if remaining.LessThanOrEqual(decimal.Zero) {
		return entity.CreditStatusPaid
	}
	if dueDate != nil && dueDate.Before(now) {
		return entity.CreditStatusOverdue
	}
	return entity.CreditStatusActive
}

// Recompute recalcula los campos derivados del registro a partir de sus líneas y pagos.
func Recompute(tx *entity.Transaction, now time.Time) {
	tx.TotalAmount = TotalAmount(tx.Items)
	if !tx.IsCredit() {
		tx.PaidAmount = decimal.Zero
		tx.RemainingAmount = decimal.Zero
		tx.Status = ""
		return
	}
	paid := decimal.Zero
	for _, p := range tx.Payments {
		paid = paid.Add(p.Amount)
	}
	tx.PaidAmount = paid
	tx.RemainingAmount = tx.TotalAmount.Sub(paid)
	tx.Status = CreditStatus(tx.RemainingAmount, tx.DueDate, now)
}

// FormatNumber consecutivo con al menos tres dígitos ("001", "042", "1234").
func FormatNumber(n int64) string {
	return fmt.Sprintf("%03d", n)
}

// ValidateItems valida las líneas de un pedido o crédito.
func ValidateItems(kind entity.TransactionKind, items []entity.LineItem) error {
	if len(items) == 0 {
		return domain.InvalidInputf("se requiere al menos una línea")
	}
	net := make(map[string]int64, len(items))
	for i, it := range items {
		if strings.TrimSpace(it.ProductName) == "" {
			return domain.InvalidInputf("línea %d: nombre de producto requerido", i+1)
		}
		if it.Quantity < 0 {
			return domain.InvalidInputf("línea %d: cantidad negativa", i+1)
		}
		if it.Returned < 0 || it.Returned > it.Quantity {
			return domain.InvalidInputf("línea %d: devueltos debe estar entre 0 y la cantidad", i+1)
		}
		if kind == entity.KindCredit && it.Returned != 0 {
			return domain.InvalidInputf("línea %d: los créditos no admiten devoluciones", i+1)
		}
		if it.UnitPrice.IsNegative() {
			return domain.InvalidInputf("línea %d: precio negativo", i+1)
		}
		if !ValidAmount(it.UnitPrice) {
			return domain.InvalidInputf("línea %d: el precio admite máximo %d decimales", i+1, MoneyScale)
		}
		sum, ok := AddQuantities(net[it.ProductName], it.NetQuantity())
		if !ok {
			return domain.InvalidInputf("línea %d: cantidad total de %s fuera de rango", i+1, it.ProductName)
		}
		net[it.ProductName] = sum
	}
	return nil
}

// MoneyScale decimales admitidos en precios y montos (columnas NUMERIC(18,2)).
const MoneyScale = 2

// ValidAmount indica si d no tiene más de MoneyScale decimales.
func ValidAmount(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

// AddQuantities suma dos cantidades no negativas. ok es false si el resultado no cabe en int64.
func AddQuantities(a, b int64) (sum int64, ok bool) {
	if a < 0 || b < 0 || a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}
