package finance

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTax(t *testing.T) {
	got := Tax(dec("1000"), dec("0.10"))
	if !got.Equal(dec("100")) {
		t.Fatalf("imposto esperado 100, veio %s", got)
	}
}

func TestCommissionOverGrossMargin(t *testing.T) {
	// comissão incide sobre (venda - custo), não sobre a venda
	got := Commission(dec("1000"), dec("300"), dec("0.04"))
	if !got.Equal(dec("28")) {
		t.Fatalf("comissão esperada 28, veio %s", got)
	}
}

func TestMargin(t *testing.T) {
	// 1000 - 300 - 100 (imposto) - 28 (comissão) = 572
	got := Margin(dec("1000"), dec("300"), dec("0.10"), dec("0.04"))
	if !got.Equal(dec("572")) {
		t.Fatalf("margem esperada 572, veio %s", got)
	}
}

func TestMarginPercent(t *testing.T) {
	got := MarginPercent(dec("1000"), dec("300"), dec("0.10"), dec("0.04"))
	if !got.Equal(dec("57.2")) {
		t.Fatalf("margem %% esperada 57.2, veio %s", got)
	}
}

func TestMarginPercentZeroRevenue(t *testing.T) {
	got := MarginPercent(dec("0"), dec("300"), dec("0.10"), dec("0.04"))
	if !got.IsZero() {
		t.Fatalf("margem %% sem venda deveria ser 0, veio %s", got)
	}
}

func TestRound2(t *testing.T) {
	got := Round2(dec("33.335"))
	if !got.Equal(dec("33.34")) {
		t.Fatalf("esperado 33.34, veio %s", got)
	}
}
