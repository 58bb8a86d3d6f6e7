package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

/************************************************
/**** MARK: PACKAGE TYPES ****/
/************************************************/
const PACKAGE_TYPE_FIXO_ILIMITADO = "FIXO_ILIMITADO"
const PACKAGE_TYPE_FIXO_COM_LIMITE = "FIXO_COM_LIMITE"
const PACKAGE_TYPE_FIXO_COM_LIMITE_VENCIMENTO = "FIXO_COM_LIMITE_VENCIMENTO"
const PACKAGE_TYPE_FIXO_SOB_DEMANDA = "FIXO_SOB_DEMANDA"
const PACKAGE_TYPE_SOB_DEMANDA_AVULSO = "SOB_DEMANDA_AVULSO"

// ClientPackage é o contrato mensal de um cliente. Invariante: no máximo UM pacote
// ativo por cliente; a ativação desativa os irmãos na mesma transação
// (controllers.activateClientPackage).
type ClientPackage struct {
	ID       string `gorm:"primary_key" json:"id"`
	ClientID string `gorm:"not null;index" json:"clientId" form:"clientId"`
	Name     string `gorm:"not null" json:"name" form:"name"`
	Type     string `gorm:"not null" json:"type" form:"type"`

	FixedFee      decimal.Decimal `gorm:"type:decimal(10,2)" json:"fixedFee" form:"fixedFee"`
	ExtraAudioFee decimal.Decimal `gorm:"type:decimal(10,2)" json:"extraAudioFee" form:"extraAudioFee"`

	// AudioLimit 0 significa "sem limite".
	AudioLimit int `gorm:"not null;default:0" json:"audioLimit" form:"audioLimit"`
	UsedAudios int `gorm:"not null;default:0" json:"usedAudios"`

	StartDate time.Time `gorm:"not null" json:"startDate"`
	EndDate   time.Time `gorm:"not null" json:"endDate"`
	Active    bool      `gorm:"not null;default:true;index" json:"active"`

	// BillingOrderID aponta para a VENDA gerada automaticamente com a mensalidade fixa.
	BillingOrderID *string `json:"billingOrderId"`

	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`

	Client *Client `gorm:"foreignkey:ClientID" json:"client,omitempty"`
}

func (pkg *ClientPackage) BeforeCreate(scope *gorm.Scope) error {
	if pkg.ID == "" {
		return scope.SetColumn("ID", uuid.New().String())
	}
	return nil
}

// HasFiniteLimit indica que o pacote tem franquia de áudios.
func (pkg ClientPackage) HasFiniteLimit() bool {
	return pkg.AudioLimit > 0 && pkg.Type != PACKAGE_TYPE_FIXO_ILIMITADO
}

// WithinValidity verifica a janela de vigência do pacote.
func (pkg ClientPackage) WithinValidity(at time.Time) bool {
	return !at.Before(pkg.StartDate) && !at.After(pkg.EndDate)
}

// OverageValue calcula o valor cobrado pelos áudios que estouram a franquia ao
// consumir `credits` créditos. Pacotes degradam para cobrança de excedente em vez
// de bloquear a criação do pedido: só as unidades além do limite são cobradas, a
// ExtraAudioFee cada.
func (pkg ClientPackage) OverageValue(credits int) decimal.Decimal {
	if !pkg.HasFiniteLimit() || credits <= 0 {
		return decimal.Zero
	}
	usageAfter := pkg.UsedAudios + credits
	if usageAfter <= pkg.AudioLimit {
		return decimal.Zero
	}
	base := pkg.AudioLimit
	if pkg.UsedAudios > base {
		base = pkg.UsedAudios
	}
	extras := usageAfter - base
	return pkg.ExtraAudioFee.Mul(decimal.NewFromInt(int64(extras)))
}

func (pkg ClientPackage) MissingFields() string {
	if pkg.ClientID == "" {
		return "clientId"
	} else if pkg.Name == "" {
		return "name"
	} else if pkg.Type == "" {
		return "type"
	}
	return ""
}
