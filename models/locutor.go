package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

/************************************************
/**** MARK: LOCUTOR STATUS ****/
/************************************************/
const LOCUTOR_STATUS_AVAILABLE = "DISPONIVEL"
const LOCUTOR_STATUS_UNAVAILABLE = "INDISPONIVEL"

// Locutor representa um locutor (talento de voz). Pode ser pago por pedido
// (PriceOff/PriceProduzido) ou por um valor fixo mensal: quando ValorFixoMensal > 0
// o custo real de cada pedido é rateado dinamicamente (ver finance.EffectiveCache).
type Locutor struct {
	ID              string          `gorm:"primary_key" json:"id"`
	Name            string          `gorm:"not null;index" json:"name" form:"name"`
	RealName        string          `gorm:"default:''" json:"realName" form:"realName"`
	Email           string          `gorm:"default:''" json:"email" form:"email"`
	Phone           string          `gorm:"default:''" json:"phone" form:"phone"`
	Status          string          `gorm:"not null;default:'DISPONIVEL'" json:"status" form:"status"`
	PriceOff        decimal.Decimal `gorm:"type:decimal(10,2)" json:"priceOff" form:"priceOff"`
	PriceProduzido  decimal.Decimal `gorm:"type:decimal(10,2)" json:"priceProduzido" form:"priceProduzido"`
	ValorFixoMensal decimal.Decimal `gorm:"type:decimal(10,2)" json:"valorFixoMensal" form:"valorFixoMensal"`
	ChavePix        string          `gorm:"default:''" json:"chavePix" form:"chavePix"`
	Banco           string          `gorm:"default:''" json:"banco" form:"banco"`
	Description     string          `gorm:"type:text" json:"description" form:"description"`
	CreatedAt       *time.Time      `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at"`
}

func (locutor *Locutor) BeforeCreate(scope *gorm.Scope) error {
	if locutor.ID == "" {
		return scope.SetColumn("ID", uuid.New().String())
	}
	return nil
}

// HasFixedMonthlyFee indica que o locutor é "mensalista".
func (locutor Locutor) HasFixedMonthlyFee() bool {
	return locutor.ValorFixoMensal.IsPositive()
}

func (locutor Locutor) MissingFields() string {
	if locutor.Name == "" {
		return "name"
	}
	return ""
}
