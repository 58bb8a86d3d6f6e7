package models

import (
	"time"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

const FINANCIAL_CONFIG_ID = "default"

// FinancialConfig é a configuração financeira global (linha única "default").
// Lida sob demanda pelos relatórios e nunca cacheada entre requisições.
type FinancialConfig struct {
	ID             string          `gorm:"primary_key" json:"id"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(6,4)" json:"taxRate" form:"taxRate"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(6,4)" json:"commissionRate" form:"commissionRate"`
	CreatedAt      *time.Time      `json:"created_at"`
	UpdatedAt      *time.Time      `json:"updated_at"`
}

// DefaultFinancialConfig retorna os valores padrão: 10% de imposto, 4% de comissão.
func DefaultFinancialConfig() FinancialConfig {
	return FinancialConfig{
		ID:             FINANCIAL_CONFIG_ID,
		TaxRate:        decimal.NewFromFloat(0.10),
		CommissionRate: decimal.NewFromFloat(0.04),
	}
}

// GetOrCreateFinancialConfig busca a configuração, criando a linha padrão na
// primeira leitura.
func GetOrCreateFinancialConfig(db *gorm.DB) (FinancialConfig, error) {
	var config FinancialConfig
	err := db.Where("id = ?", FINANCIAL_CONFIG_ID).First(&config).Error
	if err == nil {
		return config, nil
	}
	if !gorm.IsRecordNotFoundError(err) {
		return config, err
	}
	config = DefaultFinancialConfig()
	if err := db.Create(&config).Error; err != nil {
		return config, err
	}
	return config, nil
}
