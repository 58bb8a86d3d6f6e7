package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

/************************************************
/**** MARK: RECURRENCE ****/
/************************************************/
const RECURRENCE_WEEKLY = "WEEKLY"
const RECURRENCE_BIWEEKLY = "BIWEEKLY"
const RECURRENCE_MONTHLY = "MONTHLY"
const RECURRENCE_BIMONTHLY = "BIMONTHLY"
const RECURRENCE_QUARTERLY = "QUARTERLY"
const RECURRENCE_SEMIANNUAL = "SEMIANNUAL"
const RECURRENCE_ANNUAL = "ANNUAL"

/************************************************
/**** MARK: EXECUTION LOG STATUS ****/
/************************************************/
const RECURRING_LOG_SUCCESS = "SUCCESS"
const RECURRING_LOG_FAILED = "FAILED"

// RecurringService é o contrato de lançamento recorrente: um template de pedido que
// o agendador materializa a cada vencimento de NextExecution.
type RecurringService struct {
	ID       string `gorm:"primary_key" json:"id"`
	ClientID string `gorm:"not null;index" json:"clientId" form:"clientId"`
	Name     string `gorm:"not null" json:"name" form:"name"`

	Value      decimal.Decimal `gorm:"type:decimal(10,2)" json:"value" form:"value"`
	Recurrence string          `gorm:"not null;default:'MONTHLY'" json:"recurrence" form:"recurrence"`

	// IsAutomatic habilita o processamento pelo worker; serviços manuais só executam
	// pelo endpoint de execução.
	IsAutomatic bool `gorm:"not null;default:true" json:"isAutomatic" form:"isAutomatic"`
	// HasCommission vira o override de comissão dos pedidos gerados.
	HasCommission bool `gorm:"not null;default:false" json:"hasCommission" form:"hasCommission"`
	// AutoBilling gera o pedido já marcado como faturado.
	AutoBilling bool `gorm:"not null;default:false" json:"autoBilling" form:"autoBilling"`

	StartDate     time.Time  `gorm:"not null" json:"startDate"`
	NextExecution time.Time  `gorm:"not null;index" json:"nextExecution"`
	LastExecution *time.Time `json:"lastExecution"`
	Active        bool       `gorm:"not null;default:true;index" json:"active"`

	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`

	Client *Client `gorm:"foreignkey:ClientID" json:"client,omitempty"`
}

func (service *RecurringService) BeforeCreate(scope *gorm.Scope) error {
	if service.ID == "" {
		return scope.SetColumn("ID", uuid.New().String())
	}
	return nil
}

func (service RecurringService) MissingFields() string {
	if service.Name == "" {
		return "name"
	} else if service.ClientID == "" {
		return "clientId"
	} else if !service.Value.IsPositive() {
		return "value"
	} else if service.Recurrence == "" {
		return "recurrence"
	}
	return ""
}

// RecurringServiceLog é a trilha de auditoria das execuções (append-only).
// Entradas podem ser apagadas individualmente, opcionalmente em cascata com o
// pedido gerado.
type RecurringServiceLog struct {
	ID               string    `gorm:"primary_key" json:"id"`
	ServiceID        string    `gorm:"not null;index" json:"serviceId"`
	ExecutionDate    time.Time `gorm:"not null" json:"executionDate"`
	Status           string    `gorm:"not null" json:"status"`
	Message          string    `gorm:"type:text" json:"message"`
	GeneratedOrderID *string   `json:"generatedOrderId"`

	CreatedAt *time.Time `json:"created_at"`

	Service *RecurringService `gorm:"foreignkey:ServiceID" json:"service,omitempty"`
}

func (log *RecurringServiceLog) BeforeCreate(scope *gorm.Scope) error {
	if log.ID == "" {
		return scope.SetColumn("ID", uuid.New().String())
	}
	return nil
}
