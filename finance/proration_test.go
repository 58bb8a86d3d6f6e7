package finance

import (
	"testing"
	"time"

	"pontocom/models"
)

func mensalista(id, valor string) models.Locutor {
	return models.Locutor{ID: id, Name: "Locutor " + id, ValorFixoMensal: dec(valor)}
}

func avulso(id string) models.Locutor {
	return models.Locutor{ID: id, Name: "Locutor " + id}
}

func pedido(locutorID string, cache string, date time.Time) models.Order {
	return models.Order{LocutorID: &locutorID, CacheValor: dec(cache), Date: date}
}

func TestMonthKey(t *testing.T) {
	date := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	if got := MonthKey("abc", date); got != "abc_2026-03" {
		t.Fatalf("chave inesperada: %s", got)
	}
}

func TestEffectiveCacheProratesAcrossMonth(t *testing.T) {
	jan := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	locutores := map[string]models.Locutor{"m1": mensalista("m1", "3000")}
	orders := []models.Order{
		pedido("m1", "0", jan),
		pedido("m1", "0", jan.AddDate(0, 0, 3)),
		pedido("m1", "0", jan.AddDate(0, 0, 10)),
	}
	counts := CountZeroCacheSiblings(orders, locutores)

	for _, order := range orders {
		got := EffectiveCache(order, locutores, counts)
		if !got.Equal(dec("1000")) {
			t.Fatalf("custo efetivo esperado 1000, veio %s", got)
		}
	}
}

func TestEffectiveCacheSeparatesMonths(t *testing.T) {
	jan := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC)
	locutores := map[string]models.Locutor{"m1": mensalista("m1", "3000")}
	orders := []models.Order{
		pedido("m1", "0", jan),
		pedido("m1", "0", jan),
		pedido("m1", "0", feb),
	}
	counts := CountZeroCacheSiblings(orders, locutores)

	if got := EffectiveCache(orders[0], locutores, counts); !got.Equal(dec("1500")) {
		t.Fatalf("janeiro deveria ratear por 2: %s", got)
	}
	if got := EffectiveCache(orders[2], locutores, counts); !got.Equal(dec("3000")) {
		t.Fatalf("fevereiro deveria ratear por 1: %s", got)
	}
}

func TestEffectiveCacheManualCacheExcluded(t *testing.T) {
	jan := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	locutores := map[string]models.Locutor{"m1": mensalista("m1", "3000")}
	orders := []models.Order{
		pedido("m1", "0", jan),
		pedido("m1", "500", jan), // extra já precificado, fora do rateio
	}
	counts := CountZeroCacheSiblings(orders, locutores)

	if got := EffectiveCache(orders[0], locutores, counts); !got.Equal(dec("3000")) {
		t.Fatalf("pedido zero-cachê deveria absorver o fixo inteiro: %s", got)
	}
	if got := EffectiveCache(orders[1], locutores, counts); !got.Equal(dec("500")) {
		t.Fatalf("cachê manual deveria passar intacto: %s", got)
	}
}

func TestEffectiveCacheNonMensalista(t *testing.T) {
	jan := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	locutores := map[string]models.Locutor{"a1": avulso("a1")}
	order := pedido("a1", "250", jan)
	counts := CountZeroCacheSiblings([]models.Order{order}, locutores)

	if got := EffectiveCache(order, locutores, counts); !got.Equal(dec("250")) {
		t.Fatalf("locutor avulso usa o cachê armazenado: %s", got)
	}
}

func TestEffectiveCacheMinDenominator(t *testing.T) {
	jan := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	locutores := map[string]models.Locutor{"m1": mensalista("m1", "3000")}
	order := pedido("m1", "0", jan)

	// contagem vazia (pedido ainda não persistido): denominador cai para 1
	got := EffectiveCache(order, locutores, map[string]int{})
	if !got.Equal(dec("3000")) {
		t.Fatalf("denominador mínimo 1: %s", got)
	}
}

func TestEffectiveCacheNoLocutor(t *testing.T) {
	order := models.Order{CacheValor: dec("0"), Date: time.Now()}
	got := EffectiveCache(order, map[string]models.Locutor{}, map[string]int{})
	if !got.IsZero() {
		t.Fatalf("pedido sem locutor não tem custo: %s", got)
	}
}
