package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func limitedPackage(limit, used int, extraFee int64) ClientPackage {
	return ClientPackage{
		Type:          PACKAGE_TYPE_FIXO_COM_LIMITE,
		AudioLimit:    limit,
		UsedAudios:    used,
		ExtraAudioFee: decimal.NewFromInt(extraFee),
	}
}

func TestOverageValueWithinLimit(t *testing.T) {
	pkg := limitedPackage(10, 3, 30)
	if got := pkg.OverageValue(2); !got.IsZero() {
		t.Fatalf("dentro da franquia não há excedente: %s", got)
	}
}

func TestOverageValuePartialOverflow(t *testing.T) {
	// 9 usados, limite 10, consumindo 3: só 2 estouram
	pkg := limitedPackage(10, 9, 30)
	if got := pkg.OverageValue(3); !got.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("excedente parcial esperado 60, veio %s", got)
	}
}

func TestOverageValueAlreadyOverLimit(t *testing.T) {
	// franquia já estourada: todo consumo novo é excedente
	pkg := limitedPackage(10, 12, 30)
	if got := pkg.OverageValue(2); !got.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("esperado 60, veio %s", got)
	}
}

func TestOverageValueUnlimited(t *testing.T) {
	pkg := ClientPackage{Type: PACKAGE_TYPE_FIXO_ILIMITADO, UsedAudios: 100}
	if got := pkg.OverageValue(50); !got.IsZero() {
		t.Fatalf("pacote ilimitado nunca cobra excedente: %s", got)
	}
}

func TestWithinValidity(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	pkg := ClientPackage{StartDate: start, EndDate: end}

	if !pkg.WithinValidity(start) || !pkg.WithinValidity(end) {
		t.Fatal("bordas da vigência contam como dentro")
	}
	if pkg.WithinValidity(start.AddDate(0, 0, -1)) {
		t.Fatal("antes do início é fora")
	}
	if pkg.WithinValidity(end.AddDate(0, 0, 1)) {
		t.Fatal("depois do fim é fora")
	}
}

func TestCommissionEligible(t *testing.T) {
	normal := Order{}
	if !normal.CommissionEligible() {
		t.Fatal("pedido comum entra na base de comissão")
	}
	recorrente := Order{IsRecurring: true}
	if recorrente.CommissionEligible() {
		t.Fatal("recorrente sem override fica fora")
	}
	override := Order{IsRecurring: true, HasCommission: true}
	if !override.CommissionEligible() {
		t.Fatal("override devolve o recorrente à base")
	}
}
