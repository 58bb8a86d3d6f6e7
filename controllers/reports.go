package controllers

import (
	"net/http"
	"time"

	dbpkg "pontocom/db"
	"pontocom/finance"
	"pontocom/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type FinancialSummary struct {
	Revenue       decimal.Decimal `json:"revenue"`
	Cost          decimal.Decimal `json:"cost"`
	Tax           decimal.Decimal `json:"tax"`
	Commission    decimal.Decimal `json:"commission"`
	Margin        decimal.Decimal `json:"margin"`
	MarginPercent decimal.Decimal `json:"marginPercent"`

	TotalFaturado decimal.Decimal `json:"totalFaturado"`
	TotalPago     decimal.Decimal `json:"totalPago"`
	AFaturar      decimal.Decimal `json:"aFaturar"`

	OrderCount int `json:"orderCount"`
	VendaCount int `json:"vendaCount"`
}

// GET /api/reports/commission?startDate=&endDate=
// Fecha a comissão do período. O custo entra para todo pedido da janela; receita
// e base de comissão só para VENDA.
func GetCommissionReport(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	orders, ok := loadWindowOrders(c, db)
	if !ok {
		return
	}

	locutores, counts, err := loadProrationContext(db, orders)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	config, err := models.GetOrCreateFinancialConfig(db)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	summary := finance.AggregateCommission(orders, locutores, counts, config).Rounded()
	RespondSuccess(c, gin.H{"summary": summary, "config": config})
}

// GET /api/reports/financial-summary?startDate=&endDate=
func GetFinancialSummary(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	orders, ok := loadWindowOrders(c, db)
	if !ok {
		return
	}

	locutores, counts, err := loadProrationContext(db, orders)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	config, err := models.GetOrCreateFinancialConfig(db)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	aggregate := finance.AggregateCommission(orders, locutores, counts, config)

	summary := FinancialSummary{
		Revenue:       aggregate.Revenue,
		Cost:          aggregate.Cost,
		Commission:    aggregate.Commission,
		Tax:           finance.Tax(aggregate.Revenue, config.TaxRate),
		TotalFaturado: decimal.Zero,
		TotalPago:     decimal.Zero,
		AFaturar:      decimal.Zero,
		OrderCount:    aggregate.OrderCount,
	}
	summary.Margin = summary.Revenue.
		Sub(summary.Cost).
		Sub(summary.Tax).
		Sub(summary.Commission)
	if summary.Revenue.IsPositive() {
		summary.MarginPercent = summary.Margin.Div(summary.Revenue).Mul(decimal.NewFromInt(100))
	} else {
		summary.MarginPercent = decimal.Zero
	}

	for _, order := range orders {
		if order.Status != models.ORDER_STATUS_VENDA {
			continue
		}
		summary.VendaCount++
		if order.Faturado {
			summary.TotalFaturado = summary.TotalFaturado.Add(order.VendaValor)
		} else {
			summary.AFaturar = summary.AFaturar.Add(order.VendaValor)
		}
		if order.Pago {
			summary.TotalPago = summary.TotalPago.Add(order.VendaValor)
		}
	}

	summary.Revenue = finance.Round2(summary.Revenue)
	summary.Cost = finance.Round2(summary.Cost)
	summary.Tax = finance.Round2(summary.Tax)
	summary.Commission = finance.Round2(summary.Commission)
	summary.Margin = finance.Round2(summary.Margin)
	summary.MarginPercent = finance.Round2(summary.MarginPercent)
	summary.TotalFaturado = finance.Round2(summary.TotalFaturado)
	summary.TotalPago = finance.Round2(summary.TotalPago)
	summary.AFaturar = finance.Round2(summary.AFaturar)

	RespondSuccess(c, gin.H{"summary": summary})
}

// loadWindowOrders carrega os pedidos da janela consultada. Sem janela, assume o
// mês corrente.
func loadWindowOrders(c *gin.Context, db *gorm.DB) ([]models.Order, bool) {
	start, end, ok := QueryWindow(c)
	if !ok {
		return nil, false
	}
	if start == nil && end == nil {
		now := time.Now()
		s := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(0, 1, 0).Add(-time.Nanosecond)
		start, end = &s, &e
	}

	query := db.Order("date asc")
	if start != nil {
		query = query.Where("date >= ?", *start)
	}
	if end != nil {
		query = query.Where("date <= ?", *end)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return orders, true
}
