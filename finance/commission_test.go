package finance

import (
	"testing"
	"time"

	"pontocom/models"
)

func testConfig() models.FinancialConfig {
	return models.FinancialConfig{TaxRate: dec("0.10"), CommissionRate: dec("0.04")}
}

func venda(locutorID *string, cache, valor string, date time.Time) models.Order {
	return models.Order{
		LocutorID:  locutorID,
		CacheValor: dec(cache),
		VendaValor: dec(valor),
		Status:     models.ORDER_STATUS_VENDA,
		Date:       date,
	}
}

func TestAggregateCommissionBasic(t *testing.T) {
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	orders := []models.Order{
		venda(nil, "300", "1000", jan),
		venda(nil, "100", "500", jan),
	}

	summary := AggregateCommission(orders, nil, nil, testConfig())

	if !summary.Revenue.Equal(dec("1500")) {
		t.Fatalf("receita esperada 1500, veio %s", summary.Revenue)
	}
	if !summary.Cost.Equal(dec("400")) {
		t.Fatalf("custo esperado 400, veio %s", summary.Cost)
	}
	if !summary.CommissionableProfit.Equal(dec("1100")) {
		t.Fatalf("lucro esperado 1100, veio %s", summary.CommissionableProfit)
	}
	if !summary.Commission.Equal(dec("44")) {
		t.Fatalf("comissão esperada 44, veio %s", summary.Commission)
	}
	if summary.OrderCount != 2 {
		t.Fatalf("contagem esperada 2, veio %d", summary.OrderCount)
	}
}

func TestAggregateCommissionPedidoOnlyCountsCost(t *testing.T) {
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	pedido := models.Order{CacheValor: dec("200"), VendaValor: dec("800"), Status: models.ORDER_STATUS_PEDIDO, Date: jan}

	summary := AggregateCommission([]models.Order{pedido}, nil, nil, testConfig())

	if !summary.Revenue.IsZero() {
		t.Fatalf("PEDIDO não gera receita: %s", summary.Revenue)
	}
	if !summary.Cost.Equal(dec("200")) {
		t.Fatalf("PEDIDO gera custo: %s", summary.Cost)
	}
	if !summary.Commission.IsZero() {
		t.Fatalf("sem venda não há comissão: %s", summary.Commission)
	}
}

func TestAggregateCommissionRecurringExcluded(t *testing.T) {
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	recorrente := venda(nil, "0", "1000", jan)
	recorrente.IsRecurring = true

	summary := AggregateCommission([]models.Order{recorrente}, nil, nil, testConfig())

	if !summary.Revenue.Equal(dec("1000")) {
		t.Fatalf("recorrente ainda é receita: %s", summary.Revenue)
	}
	if !summary.Commission.IsZero() {
		t.Fatalf("recorrente sem override fica fora da comissão: %s", summary.Commission)
	}
}

func TestAggregateCommissionRecurringOverride(t *testing.T) {
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	recorrente := venda(nil, "0", "1000", jan)
	recorrente.IsRecurring = true
	recorrente.HasCommission = true

	summary := AggregateCommission([]models.Order{recorrente}, nil, nil, testConfig())

	if !summary.Commission.Equal(dec("40")) {
		t.Fatalf("override deveria comissionar 40: %s", summary.Commission)
	}
}

func TestAggregateCommissionFloorsAtZero(t *testing.T) {
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	prejuizo := venda(nil, "2000", "500", jan)

	summary := AggregateCommission([]models.Order{prejuizo}, nil, nil, testConfig())

	if !summary.CommissionableProfit.Equal(dec("-1500")) {
		t.Fatalf("lucro negativo esperado -1500: %s", summary.CommissionableProfit)
	}
	if !summary.Commission.IsZero() {
		t.Fatalf("comissão nunca fica negativa: %s", summary.Commission)
	}
}

func TestAggregateCommissionWithProration(t *testing.T) {
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	locutorID := "m1"
	locutores := map[string]models.Locutor{locutorID: mensalista(locutorID, "2000")}
	orders := []models.Order{
		venda(&locutorID, "0", "1500", jan),
		venda(&locutorID, "0", "1500", jan),
	}
	counts := CountZeroCacheSiblings(orders, locutores)

	summary := AggregateCommission(orders, locutores, counts, testConfig())

	if !summary.Cost.Equal(dec("2000")) {
		t.Fatalf("custo rateado deveria fechar no fixo mensal: %s", summary.Cost)
	}
	// lucro = (1500-1000)*2 = 1000; comissão = 40
	if !summary.Commission.Equal(dec("40")) {
		t.Fatalf("comissão esperada 40: %s", summary.Commission)
	}
}
