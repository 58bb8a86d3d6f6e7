package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

/************************************************
/**** MARK: ORDER STATUS ****/
/************************************************/
const ORDER_STATUS_PEDIDO = "PEDIDO"
const ORDER_STATUS_VENDA = "VENDA"

/************************************************
/**** MARK: ORDER TIPO ****/
/************************************************/
const ORDER_TIPO_OFF = "OFF"
const ORDER_TIPO_PRODUZIDO = "PRODUZIDO"

// Primeiro número de venda gerado é NUMERO_VENDA_BASE+1 (herdado da numeração
// da planilha que o sistema substituiu).
const NUMERO_VENDA_BASE = 42531

/************************************************
/**** MARK: SERVICE TYPE LABELS ****/
/************************************************/
const SERVICE_TYPE_RECORRENTE = "SERVIÇO RECORRENTE"
const SERVICE_TYPE_PLANO_MENSAL = "PLANO MENSAL"

// Order representa um pedido/venda de áudio. O ciclo de vida tem dois estados
// físicos (PEDIDO e VENDA) cruzados pelas flags Entregue/Faturado/Pago.
//
// CacheValor é o custo pago ao locutor. Fica 0 quando o locutor é mensalista e o
// pedido não tem cobrança extra; nesse caso o custo efetivo é rateado na leitura
// e nunca persistido (finance.EffectiveCache).
type Order struct {
	ID        string  `gorm:"primary_key" json:"id"`
	ClientID  string  `gorm:"not null;index" json:"clientId" form:"clientId"`
	LocutorID *string `gorm:"index" json:"locutorId" form:"locutorId"`
	Title     string  `gorm:"not null" json:"title" form:"title"`
	Tipo      string  `gorm:"not null;default:'OFF'" json:"tipo" form:"tipo"`

	CacheValor decimal.Decimal `gorm:"type:decimal(10,2)" json:"cacheValor" form:"cacheValor"`
	VendaValor decimal.Decimal `gorm:"type:decimal(10,2)" json:"vendaValor" form:"vendaValor"`

	Status   string `gorm:"not null;default:'PEDIDO';index" json:"status" form:"status"`
	Entregue bool   `gorm:"not null;default:false" json:"entregue" form:"entregue"`
	Faturado bool   `gorm:"not null;default:false;index" json:"faturado" form:"faturado"`
	Pago     bool   `gorm:"not null;default:false" json:"pago" form:"pago"`

	PendenciaFinanceiro bool   `gorm:"not null;default:false" json:"pendenciaFinanceiro" form:"pendenciaFinanceiro"`
	PendenciaMotivo     string `gorm:"default:''" json:"pendenciaMotivo" form:"pendenciaMotivo"`

	NumeroVenda *int    `gorm:"unique_index" json:"numeroVenda" form:"numeroVenda"`
	ServiceType *string `json:"serviceType" form:"serviceType"`

	// IsRecurring marca pedidos gerados pelo agendador de serviços recorrentes.
	// Esses pedidos só entram na base de comissão quando HasCommission = true.
	IsRecurring   bool `gorm:"not null;default:false" json:"isRecurring"`
	HasCommission bool `gorm:"not null;default:false" json:"hasCommission" form:"hasCommission"`

	// PackageID vincula o pedido a um pacote mensal (consumo de crédito, venda 0).
	PackageID       *string `gorm:"index" json:"packageId" form:"packageId"`
	CreditsConsumed int     `gorm:"not null;default:0" json:"creditsConsumed" form:"creditsConsumed"`
	IsBonus         bool    `gorm:"not null;default:false" json:"isBonus" form:"isBonus"`

	Comentarios string `gorm:"type:text" json:"comentarios" form:"comentarios"`

	Date        time.Time  `gorm:"not null;index" json:"date"`
	DataFaturar *time.Time `json:"dataFaturar"`
	Vencimento  *time.Time `json:"vencimento"`

	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`

	Client  *Client  `gorm:"foreignkey:ClientID" json:"client,omitempty"`
	Locutor *Locutor `gorm:"foreignkey:LocutorID" json:"locutor,omitempty"`
}

func (order *Order) BeforeCreate(scope *gorm.Scope) error {
	if order.ID == "" {
		return scope.SetColumn("ID", uuid.New().String())
	}
	return nil
}

// NextNumeroVenda gera o próximo número sequencial de venda. A sequência começa
// em NUMERO_VENDA_BASE+1 e nunca reaproveita buracos.
func NextNumeroVenda(tx *gorm.DB) (int, error) {
	var result struct{ Max int }
	err := tx.Model(&Order{}).
		Select("COALESCE(MAX(numero_venda), ?) as max", NUMERO_VENDA_BASE).
		Scan(&result).Error
	if err != nil {
		return 0, err
	}
	return result.Max + 1, nil
}

// IsPackageConsumption indica que o pedido debita crédito de pacote
// (vinculado a pacote e com valor de venda zero, sem ser bonificação).
func (order Order) IsPackageConsumption() bool {
	return order.PackageID != nil && order.VendaValor.IsZero() && !order.IsBonus
}

// CommissionEligible aplica a regra de elegibilidade: pedidos recorrentes ficam
// fora da base de comissão, salvo override explícito.
func (order Order) CommissionEligible() bool {
	return !order.IsRecurring || order.HasCommission
}

func (order Order) MissingFields() string {
	if order.ClientID == "" {
		return "clientId"
	} else if order.Title == "" {
		return "title"
	}
	return ""
}
