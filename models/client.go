package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

/************************************************
/**** MARK: CLIENT STATUS ****/
/************************************************/
const CLIENT_STATUS_ACTIVE = "ativado"
const CLIENT_STATUS_INACTIVE = "desativado"

// Client representa um cliente da produtora. A exclusão é sempre lógica
// (Status vira "desativado") porque os pedidos históricos continuam apontando pra ele.
type Client struct {
	ID          string     `gorm:"primary_key" json:"id"`
	Name        string     `gorm:"not null;index" json:"name" form:"name"`
	RazaoSocial string     `gorm:"default:''" json:"razaoSocial" form:"razaoSocial"`
	CnpjCpf     string     `gorm:"column:cnpj_cpf;default:''" json:"cnpj_cpf" form:"cnpj_cpf"`
	Email       string     `gorm:"default:''" json:"email" form:"email"`
	Phone       string     `gorm:"default:''" json:"phone" form:"phone"`
	City        string     `gorm:"default:''" json:"city" form:"city"`
	State       string     `gorm:"default:''" json:"state" form:"state"`
	Comentarios string     `gorm:"type:text" json:"comentarios" form:"comentarios"`
	Status      string     `gorm:"not null;default:'ativado';index" json:"status" form:"status"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

func (client *Client) BeforeCreate(scope *gorm.Scope) error {
	if client.ID == "" {
		return scope.SetColumn("ID", uuid.New().String())
	}
	return nil
}

func (client Client) MissingFields() string {
	if client.Name == "" {
		return "name"
	}
	return ""
}
