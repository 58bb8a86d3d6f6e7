package controllers

import (
	"net/http"

	dbpkg "pontocom/db"
	"pontocom/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type FinancialConfigRequest struct {
	TaxRate        decimal.Decimal `json:"taxRate" form:"taxRate"`
	CommissionRate decimal.Decimal `json:"commissionRate" form:"commissionRate"`
}

// GET /api/config/financial
func GetFinancialConfig(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	config, err := models.GetOrCreateFinancialConfig(db)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"config": config})
}

// PUT /api/config/financial
// As taxas são frações (0.10 = 10%), nunca percentuais inteiros.
func UpdateFinancialConfig(c *gin.Context) {
	var req FinancialConfigRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	one := decimal.NewFromInt(1)
	if req.TaxRate.IsNegative() || req.TaxRate.GreaterThanOrEqual(one) {
		RespondError(c, "taxRate deve estar entre 0 e 1", http.StatusBadRequest)
		return
	}
	if req.CommissionRate.IsNegative() || req.CommissionRate.GreaterThanOrEqual(one) {
		RespondError(c, "commissionRate deve estar entre 0 e 1", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	config, err := models.GetOrCreateFinancialConfig(db)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	config.TaxRate = req.TaxRate
	config.CommissionRate = req.CommissionRate
	if err := db.Save(&config).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"config": config})
}
