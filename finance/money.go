// Package finance concentra a aritmética financeira do CRM: imposto, comissão,
// margem, rateio de cachê mensalista e agregação de relatórios. Tudo aqui é função
// pura sobre decimal.Decimal: nenhum acesso a banco, nenhum estado.
//
// Arredondamento para 2 casas só acontece na borda de apresentação (Round2);
// agregações internas acumulam com precisão total para não compor erro.
package finance

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Tax calcula o imposto sobre o valor de venda.
func Tax(vendaValor, taxRate decimal.Decimal) decimal.Decimal {
	return vendaValor.Mul(taxRate)
}

// Commission calcula a comissão sobre a margem bruta ANTES do imposto
// (venda - custo), não sobre o valor de venda.
func Commission(vendaValor, custoValor, commissionRate decimal.Decimal) decimal.Decimal {
	return vendaValor.Sub(custoValor).Mul(commissionRate)
}

// Margin é o que sobra da venda depois de custo, imposto e comissão.
func Margin(vendaValor, custoValor, taxRate, commissionRate decimal.Decimal) decimal.Decimal {
	return vendaValor.
		Sub(custoValor).
		Sub(Tax(vendaValor, taxRate)).
		Sub(Commission(vendaValor, custoValor, commissionRate))
}

// MarginPercent retorna a margem como percentual da venda (0 quando não há venda).
func MarginPercent(vendaValor, custoValor, taxRate, commissionRate decimal.Decimal) decimal.Decimal {
	if !vendaValor.IsPositive() {
		return decimal.Zero
	}
	return Margin(vendaValor, custoValor, taxRate, commissionRate).Div(vendaValor).Mul(hundred)
}

// Round2 arredonda para 2 casas decimais (borda de apresentação).
func Round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}
