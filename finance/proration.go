package finance

import (
	"time"

	"pontocom/models"

	"github.com/shopspring/decimal"
)

// MonthKey agrupa pedidos de um locutor dentro do mesmo mês-calendário
// (chave "locutorId_YYYY-MM", igual à usada nos relatórios antigos).
func MonthKey(locutorID string, date time.Time) string {
	return locutorID + "_" + date.Format("2006-01")
}

// CountZeroCacheSiblings conta, por locutor-mês, os pedidos de locutores
// mensalistas com cachê armazenado zero, o denominador do rateio. Pedidos com
// cachê manual (> 0) são "extras já precificados" e ficam fora da contagem.
//
// O resultado vale apenas para o conjunto recebido e deve ser recalculado a cada
// agregação: a contagem muda conforme pedidos entram e saem do mês.
func CountZeroCacheSiblings(orders []models.Order, locutores map[string]models.Locutor) map[string]int {
	counts := make(map[string]int)
	for _, order := range orders {
		if order.LocutorID == nil || !order.CacheValor.IsZero() {
			continue
		}
		locutor, ok := locutores[*order.LocutorID]
		if !ok || !locutor.HasFixedMonthlyFee() {
			continue
		}
		counts[MonthKey(*order.LocutorID, order.Date)]++
	}
	return counts
}

// EffectiveCache resolve o custo efetivo de um pedido para fins de margem/comissão:
//
//   - locutor mensalista + cachê armazenado zero → valor fixo mensal dividido pelo
//     número de pedidos zero-cachê do mesmo locutor no mesmo mês;
//   - qualquer outro caso → o cachê armazenado, sem ajuste.
//
// O denominador nunca fica abaixo de 1 (o próprio pedido é membro do conjunto).
func EffectiveCache(order models.Order, locutores map[string]models.Locutor, counts map[string]int) decimal.Decimal {
	if order.LocutorID == nil || !order.CacheValor.IsZero() {
		return order.CacheValor
	}
	locutor, ok := locutores[*order.LocutorID]
	if !ok || !locutor.HasFixedMonthlyFee() {
		return order.CacheValor
	}
	count := counts[MonthKey(*order.LocutorID, order.Date)]
	if count < 1 {
		count = 1
	}
	return locutor.ValorFixoMensal.Div(decimal.NewFromInt(int64(count)))
}
