package controllers

import (
	"net/http"

	dbpkg "pontocom/db"
	"pontocom/models"

	"github.com/gin-gonic/gin"
)

// GET /api/locutores
func GetLocutores(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	query := db.Order("name asc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var locutores []models.Locutor
	if err := query.Find(&locutores).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"locutores": locutores})
}

// GET /api/locutores/:id
func GetLocutorByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var locutor models.Locutor
	if err := db.Where("id = ?", id).First(&locutor).Error; err != nil {
		RespondError(c, "locutor não encontrado", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"locutor": locutor})
}

// POST /api/locutores
func CreateLocutor(c *gin.Context) {
	var locutor models.Locutor
	if err := c.Bind(&locutor); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if missing := locutor.MissingFields(); missing != "" {
		RespondError(c, missing+" é obrigatório", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	locutor.ID = ""
	if locutor.Status == "" {
		locutor.Status = models.LOCUTOR_STATUS_AVAILABLE
	}
	if err := db.Create(&locutor).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"locutor": locutor})
}

// PUT /api/locutores/:id
func UpdateLocutor(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var body models.Locutor
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var locutor models.Locutor
	if err := db.Where("id = ?", id).First(&locutor).Error; err != nil {
		RespondError(c, "locutor não encontrado", http.StatusNotFound)
		return
	}

	if body.Name != "" {
		locutor.Name = body.Name
	}
	locutor.RealName = body.RealName
	locutor.Email = body.Email
	locutor.Phone = body.Phone
	if body.Status == models.LOCUTOR_STATUS_AVAILABLE || body.Status == models.LOCUTOR_STATUS_UNAVAILABLE {
		locutor.Status = body.Status
	}
	locutor.PriceOff = body.PriceOff
	locutor.PriceProduzido = body.PriceProduzido
	locutor.ValorFixoMensal = body.ValorFixoMensal
	locutor.ChavePix = body.ChavePix
	locutor.Banco = body.Banco
	locutor.Description = body.Description

	if err := db.Save(&locutor).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"locutor": locutor})
}

// DELETE /api/locutores/:id
// Bloqueia a exclusão quando existem pedidos apontando para o locutor.
func DeleteLocutor(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var locutor models.Locutor
	if err := db.Where("id = ?", id).First(&locutor).Error; err != nil {
		RespondError(c, "locutor não encontrado", http.StatusNotFound)
		return
	}

	var count int
	if err := db.Model(&models.Order{}).Where("locutor_id = ?", id).Count(&count).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if count > 0 {
		RespondError(c, "locutor possui pedidos vinculados; marque como indisponível", http.StatusBadRequest)
		return
	}

	if err := db.Delete(&locutor).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"status": "deleted"})
}
