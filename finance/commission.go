package finance

import (
	"pontocom/models"

	"github.com/shopspring/decimal"
)

// CommissionSummary é o resultado da agregação de comissão sobre uma janela de datas.
type CommissionSummary struct {
	Revenue              decimal.Decimal `json:"revenue"`
	Cost                 decimal.Decimal `json:"cost"`
	CommissionableProfit decimal.Decimal `json:"commissionableProfit"`
	Commission           decimal.Decimal `json:"commission"`
	OrderCount           int             `json:"orderCount"`
}

// AggregateCommission percorre os pedidos da janela e fecha receita, custo, lucro
// comissionável e comissão.
//
// `counts` deve vir de CountZeroCacheSiblings sobre o conjunto COMPLETO de pedidos
// dos locutores-mês envolvidos (não só a janela), para que o rateio do cachê
// mensalista não mude conforme a janela consultada.
//
// Regras:
//   - receita conta apenas VENDA; PEDIDO contribui só para o custo;
//   - lucro comissionável soma (venda - cachê efetivo) das VENDAs elegíveis
//     (pedidos recorrentes só entram com o override HasCommission);
//   - lucro agregado negativo trava a comissão em zero, nunca paga negativo.
func AggregateCommission(orders []models.Order, locutores map[string]models.Locutor, counts map[string]int, config models.FinancialConfig) CommissionSummary {
	summary := CommissionSummary{
		Revenue:              decimal.Zero,
		Cost:                 decimal.Zero,
		CommissionableProfit: decimal.Zero,
		Commission:           decimal.Zero,
	}

	for _, order := range orders {
		cost := EffectiveCache(order, locutores, counts)
		summary.Cost = summary.Cost.Add(cost)
		summary.OrderCount++

		if order.Status != models.ORDER_STATUS_VENDA {
			continue
		}
		summary.Revenue = summary.Revenue.Add(order.VendaValor)

		if order.CommissionEligible() {
			summary.CommissionableProfit = summary.CommissionableProfit.Add(order.VendaValor.Sub(cost))
		}
	}

	if summary.CommissionableProfit.IsPositive() {
		summary.Commission = summary.CommissionableProfit.Mul(config.CommissionRate)
	}
	return summary
}

// Rounded devolve uma cópia com os totais arredondados para exibição.
func (s CommissionSummary) Rounded() CommissionSummary {
	s.Revenue = Round2(s.Revenue)
	s.Cost = Round2(s.Cost)
	s.CommissionableProfit = Round2(s.CommissionableProfit)
	s.Commission = Round2(s.Commission)
	return s
}
