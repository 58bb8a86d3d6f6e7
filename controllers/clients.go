package controllers

import (
	"net/http"

	dbpkg "pontocom/db"
	"pontocom/models"
	"pontocom/tools"

	"github.com/gin-gonic/gin"
)

// GET /api/clients
// Aceita ?status=ativado|desativado|all (default: só ativos) e ?search= por nome.
func GetClients(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	query := db.Order("name asc")
	status := c.DefaultQuery("status", models.CLIENT_STATUS_ACTIVE)
	if status != "all" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var clients []models.Client
	if err := query.Find(&clients).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"clients": clients})
}

// GET /api/clients/:id
func GetClientByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var client models.Client
	if err := db.Where("id = ?", id).First(&client).Error; err != nil {
		RespondError(c, "cliente não encontrado", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"client": client})
}

// POST /api/clients
func CreateClient(c *gin.Context) {
	var client models.Client
	if err := c.Bind(&client); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if missing := client.MissingFields(); missing != "" {
		RespondError(c, missing+" é obrigatório", http.StatusBadRequest)
		return
	}
	if client.Email != "" && !tools.ValidateEmail(client.Email) {
		RespondError(c, "email inválido", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	client.ID = ""
	client.Status = models.CLIENT_STATUS_ACTIVE
	if err := db.Create(&client).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"client": client})
}

// PUT /api/clients/:id
func UpdateClient(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var body models.Client
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var client models.Client
	if err := db.Where("id = ?", id).First(&client).Error; err != nil {
		RespondError(c, "cliente não encontrado", http.StatusNotFound)
		return
	}

	if body.Name != "" {
		client.Name = body.Name
	}
	client.RazaoSocial = body.RazaoSocial
	client.CnpjCpf = body.CnpjCpf
	if body.Email != "" && !tools.ValidateEmail(body.Email) {
		RespondError(c, "email inválido", http.StatusBadRequest)
		return
	}
	client.Email = body.Email
	client.Phone = body.Phone
	client.City = body.City
	client.State = body.State
	client.Comentarios = body.Comentarios
	if body.Status == models.CLIENT_STATUS_ACTIVE || body.Status == models.CLIENT_STATUS_INACTIVE {
		client.Status = body.Status
	}

	if err := db.Save(&client).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"client": client})
}

// DELETE /api/clients/:id
// Exclusão lógica: o cliente vira "desativado" e some das listagens padrão.
func DeleteClient(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var client models.Client
	if err := db.Where("id = ?", id).First(&client).Error; err != nil {
		RespondError(c, "cliente não encontrado", http.StatusNotFound)
		return
	}

	client.Status = models.CLIENT_STATUS_INACTIVE
	if err := db.Save(&client).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"status": "deleted"})
}
