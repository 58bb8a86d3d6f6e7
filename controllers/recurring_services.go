package controllers

import (
	"net/http"
	"time"

	dbpkg "pontocom/db"
	"pontocom/finance"
	"pontocom/models"
	"pontocom/workers"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type RecurringServiceRequest struct {
	ClientID   string          `json:"clientId" form:"clientId"`
	Name       string          `json:"name" form:"name"`
	Value      decimal.Decimal `json:"value" form:"value"`
	Recurrence string          `json:"recurrence" form:"recurrence"`

	IsAutomatic   *bool `json:"isAutomatic" form:"isAutomatic"`
	HasCommission bool  `json:"hasCommission" form:"hasCommission"`
	AutoBilling   bool  `json:"autoBilling" form:"autoBilling"`
	Active        *bool `json:"active" form:"active"`

	StartDate string `json:"startDate" form:"startDate"`
}

// GET /api/recurring
func GetRecurringServices(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	query := db.Preload("Client").Order("next_execution asc")
	if clientID := c.Query("clientId"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if v := c.Query("active"); v != "" {
		query = query.Where("active = ?", v == "true")
	}

	var services []models.RecurringService
	if err := query.Find(&services).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"services": services})
}

// GET /api/recurring/:id
func GetRecurringServiceByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var service models.RecurringService
	if err := db.Preload("Client").Where("id = ?", id).First(&service).Error; err != nil {
		RespondError(c, "serviço não encontrado", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"service": service})
}

// POST /api/recurring
func CreateRecurringService(c *gin.Context) {
	var req RecurringServiceRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	service := models.RecurringService{
		ClientID:      req.ClientID,
		Name:          req.Name,
		Value:         req.Value,
		Recurrence:    req.Recurrence,
		IsAutomatic:   true,
		HasCommission: req.HasCommission,
		AutoBilling:   req.AutoBilling,
		Active:        true,
	}
	if req.IsAutomatic != nil {
		service.IsAutomatic = *req.IsAutomatic
	}
	if service.Recurrence == "" {
		service.Recurrence = models.RECURRENCE_MONTHLY
	}
	if missing := service.MissingFields(); missing != "" {
		RespondError(c, missing+" é obrigatório", http.StatusBadRequest)
		return
	}
	if !finance.ValidRecurrence(service.Recurrence) {
		RespondError(c, "recurrence inválida", http.StatusBadRequest)
		return
	}

	service.StartDate = time.Now()
	if req.StartDate != "" {
		start, err := ParseDate(req.StartDate)
		if err != nil {
			RespondError(c, "startDate inválido (use yyyy-mm-dd)", http.StatusBadRequest)
			return
		}
		service.StartDate = start
	}
	// A primeira execução acontece na própria data de início.
	service.NextExecution = service.StartDate

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var client models.Client
	if err := db.Where("id = ?", service.ClientID).First(&client).Error; err != nil {
		RespondError(c, "cliente não encontrado", http.StatusNotFound)
		return
	}

	if err := db.Create(&service).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"service": service})
}

// PUT /api/recurring/:id
func UpdateRecurringService(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var req RecurringServiceRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var service models.RecurringService
	if err := db.Where("id = ?", id).First(&service).Error; err != nil {
		RespondError(c, "serviço não encontrado", http.StatusNotFound)
		return
	}

	if req.Name != "" {
		service.Name = req.Name
	}
	if req.Value.IsPositive() {
		service.Value = req.Value
	}
	if req.Recurrence != "" && req.Recurrence != service.Recurrence {
		if !finance.ValidRecurrence(req.Recurrence) {
			RespondError(c, "recurrence inválida", http.StatusBadRequest)
			return
		}
		service.Recurrence = req.Recurrence
		// Cadência nova reprograma o próximo vencimento a partir da última
		// execução; serviço nunca executado continua vencendo na data de início.
		if service.LastExecution != nil {
			service.NextExecution = finance.NextExecution(*service.LastExecution, service.Recurrence)
		}
	}
	if req.IsAutomatic != nil {
		service.IsAutomatic = *req.IsAutomatic
	}
	service.HasCommission = req.HasCommission
	service.AutoBilling = req.AutoBilling
	if req.Active != nil {
		service.Active = *req.Active
	}
	if req.StartDate != "" {
		start, err := ParseDate(req.StartDate)
		if err != nil {
			RespondError(c, "startDate inválido (use yyyy-mm-dd)", http.StatusBadRequest)
			return
		}
		service.StartDate = start
		// Reprogramar a data de início rearma o agendamento.
		if service.LastExecution == nil {
			service.NextExecution = start
		}
	}

	if err := db.Save(&service).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"service": service})
}

// DELETE /api/recurring/:id
// Remove o serviço e sua trilha de execuções. Os pedidos já gerados ficam.
func DeleteRecurringService(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var service models.RecurringService
	if err := db.Where("id = ?", id).First(&service).Error; err != nil {
		RespondError(c, "serviço não encontrado", http.StatusNotFound)
		return
	}

	tx := db.Begin()
	if err := tx.Delete(&models.RecurringServiceLog{}, "service_id = ?", id).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Delete(&service).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"status": "deleted"})
}

// POST /api/recurring/:id/execute
// Execução manual: gera a venda do vencimento atual mesmo antes da data.
func ExecuteRecurringService(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var service models.RecurringService
	if err := db.Where("id = ?", id).First(&service).Error; err != nil {
		RespondError(c, "serviço não encontrado", http.StatusNotFound)
		return
	}

	order, err := workers.ExecuteService(db, &service, time.Now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondSuccess(c, gin.H{"order": order, "service": service})
}

// GET /api/recurring/:id/logs
func GetRecurringServiceLogs(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var logs []models.RecurringServiceLog
	if err := db.Where("service_id = ?", id).Order("execution_date desc").Find(&logs).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"logs": logs})
}

// DELETE /api/recurring/logs/:logId?deleteOrder=true
func DeleteRecurringServiceLog(c *gin.Context) {
	logID, ok := ParamID(c, "logId")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var entry models.RecurringServiceLog
	if err := db.Where("id = ?", logID).First(&entry).Error; err != nil {
		RespondError(c, "log não encontrado", http.StatusNotFound)
		return
	}

	tx := db.Begin()
	if c.Query("deleteOrder") == "true" && entry.GeneratedOrderID != nil {
		if err := tx.Delete(&models.Order{}, "id = ?", *entry.GeneratedOrderID).Error; err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := tx.Delete(&entry).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"status": "deleted"})
}
