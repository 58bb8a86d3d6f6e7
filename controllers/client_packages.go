package controllers

import (
	"net/http"
	"time"

	dbpkg "pontocom/db"
	"pontocom/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type PackageRequest struct {
	ClientID string `json:"clientId" form:"clientId"`
	Name     string `json:"name" form:"name"`
	Type     string `json:"type" form:"type"`

	FixedFee      decimal.Decimal `json:"fixedFee" form:"fixedFee"`
	ExtraAudioFee decimal.Decimal `json:"extraAudioFee" form:"extraAudioFee"`
	AudioLimit    int             `json:"audioLimit" form:"audioLimit"`

	StartDate string `json:"startDate" form:"startDate"`
	EndDate   string `json:"endDate" form:"endDate"`

	Force bool `json:"force" form:"force"`
}

// GET /api/packages?clientId=&active=
func GetClientPackages(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	query := db.Preload("Client").Order("created_at desc")
	if clientID := c.Query("clientId"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if v := c.Query("active"); v != "" {
		query = query.Where("active = ?", v == "true")
	}

	var packages []models.ClientPackage
	if err := query.Find(&packages).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"packages": packages})
}

// GET /api/packages/:id
func GetClientPackageByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var pkg models.ClientPackage
	if err := db.Preload("Client").Where("id = ?", id).First(&pkg).Error; err != nil {
		RespondError(c, "pacote não encontrado", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"package": pkg})
}

// POST /api/packages
func CreateClientPackage(c *gin.Context) {
	var req PackageRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	pkg, err := createClientPackage(db, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondSuccess(c, gin.H{"package": pkg})
}

// PUT /api/packages/:id
func UpdateClientPackage(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var req PackageRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	pkg, err := updateClientPackage(db, id, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondSuccess(c, gin.H{"package": pkg})
}

// POST /api/packages/:id/activate
func ActivateClientPackage(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var pkg models.ClientPackage
	if err := db.Where("id = ?", id).First(&pkg).Error; err != nil {
		RespondError(c, "pacote não encontrado", http.StatusNotFound)
		return
	}

	tx := db.Begin()
	if err := activateClientPackage(tx, &pkg); err != nil {
		tx.Rollback()
		RespondDomainError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"package": pkg})
}

// DELETE /api/packages/:id?force=true
func DeleteClientPackage(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	if err := deleteClientPackage(db, id, c.Query("force") == "true"); err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondSuccess(c, gin.H{"status": "deleted"})
}

/************************************************
/**** MARK: CORE ****/
/************************************************/

func validPackageType(t string) bool {
	switch t {
	case models.PACKAGE_TYPE_FIXO_ILIMITADO,
		models.PACKAGE_TYPE_FIXO_COM_LIMITE,
		models.PACKAGE_TYPE_FIXO_COM_LIMITE_VENCIMENTO,
		models.PACKAGE_TYPE_FIXO_SOB_DEMANDA,
		models.PACKAGE_TYPE_SOB_DEMANDA_AVULSO:
		return true
	}
	return false
}

// createClientPackage cria o pacote já ativo, desativando qualquer irmão ativo
// do mesmo cliente na mesma transação. Mensalidade fixa > 0 gera a VENDA de
// cobrança automaticamente.
func createClientPackage(db *gorm.DB, req PackageRequest) (*models.ClientPackage, error) {
	pkg := models.ClientPackage{
		ClientID:      req.ClientID,
		Name:          req.Name,
		Type:          req.Type,
		FixedFee:      req.FixedFee,
		ExtraAudioFee: req.ExtraAudioFee,
		AudioLimit:    req.AudioLimit,
		Active:        true,
	}
	if missing := pkg.MissingFields(); missing != "" {
		return nil, models.NewValidationError(missing + " é obrigatório")
	}
	if !validPackageType(pkg.Type) {
		return nil, models.NewValidationError("type inválido")
	}
	if pkg.FixedFee.IsNegative() || pkg.ExtraAudioFee.IsNegative() {
		return nil, models.NewValidationError("valores não podem ser negativos")
	}
	if pkg.AudioLimit < 0 {
		return nil, models.NewValidationError("audioLimit não pode ser negativo")
	}

	if req.StartDate == "" {
		pkg.StartDate = time.Now()
	} else {
		start, err := ParseDate(req.StartDate)
		if err != nil {
			return nil, models.NewValidationError("startDate inválido (use yyyy-mm-dd)")
		}
		pkg.StartDate = start
	}
	if req.EndDate == "" {
		pkg.EndDate = pkg.StartDate.AddDate(0, 1, 0)
	} else {
		end, err := ParseDate(req.EndDate)
		if err != nil {
			return nil, models.NewValidationError("endDate inválido (use yyyy-mm-dd)")
		}
		pkg.EndDate = end
	}
	if pkg.EndDate.Before(pkg.StartDate) {
		return nil, models.NewValidationError("endDate anterior a startDate")
	}

	var client models.Client
	if err := db.Where("id = ?", pkg.ClientID).First(&client).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, models.NewNotFoundError("cliente não encontrado")
		}
		return nil, err
	}

	tx := db.Begin()

	if err := deactivateSiblingPackages(tx, pkg.ClientID, ""); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Create(&pkg).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if pkg.FixedFee.IsPositive() {
		billing, err := createBillingOrder(tx, pkg)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		pkg.BillingOrderID = &billing.ID
		if err := tx.Save(&pkg).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return &pkg, nil
}

// updateClientPackage atualiza o contrato e mantém a VENDA de cobrança em
// sincronia com a mensalidade. Cobrança já faturada só muda com force.
func updateClientPackage(db *gorm.DB, id string, req PackageRequest) (*models.ClientPackage, error) {
	var pkg models.ClientPackage
	if err := db.Where("id = ?", id).First(&pkg).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, models.NewNotFoundError("pacote não encontrado")
		}
		return nil, err
	}

	feeChanged := !pkg.FixedFee.Equal(req.FixedFee)
	resetInvoiced := false
	if feeChanged && pkg.BillingOrderID != nil {
		var billing models.Order
		err := db.Where("id = ?", *pkg.BillingOrderID).First(&billing).Error
		if err == nil && billing.Faturado {
			if !req.Force {
				return nil, models.NewAlreadyInvoicedError("cobrança do pacote já faturada; repita com force=true para alterar")
			}
			// Alterar uma cobrança já faturada com force desfaz o faturamento:
			// o valor mudou, a fatura emitida não vale mais.
			resetInvoiced = true
		}
		if err != nil && !gorm.IsRecordNotFoundError(err) {
			return nil, err
		}
	}

	if req.Name != "" {
		pkg.Name = req.Name
	}
	if req.Type != "" {
		if !validPackageType(req.Type) {
			return nil, models.NewValidationError("type inválido")
		}
		pkg.Type = req.Type
	}
	if req.FixedFee.IsNegative() || req.ExtraAudioFee.IsNegative() {
		return nil, models.NewValidationError("valores não podem ser negativos")
	}
	pkg.FixedFee = req.FixedFee
	pkg.ExtraAudioFee = req.ExtraAudioFee
	if req.AudioLimit >= 0 {
		pkg.AudioLimit = req.AudioLimit
	}
	if req.StartDate != "" {
		start, err := ParseDate(req.StartDate)
		if err != nil {
			return nil, models.NewValidationError("startDate inválido (use yyyy-mm-dd)")
		}
		pkg.StartDate = start
	}
	if req.EndDate != "" {
		end, err := ParseDate(req.EndDate)
		if err != nil {
			return nil, models.NewValidationError("endDate inválido (use yyyy-mm-dd)")
		}
		pkg.EndDate = end
	}
	if pkg.EndDate.Before(pkg.StartDate) {
		return nil, models.NewValidationError("endDate anterior a startDate")
	}

	tx := db.Begin()

	if err := tx.Save(&pkg).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if feeChanged {
		if err := syncBillingOrder(tx, &pkg); err != nil {
			tx.Rollback()
			return nil, err
		}
		if resetInvoiced && pkg.BillingOrderID != nil {
			err := tx.Model(&models.Order{}).Where("id = ?", *pkg.BillingOrderID).
				Updates(map[string]interface{}{"faturado": false, "data_faturar": nil, "pago": false}).Error
			if err != nil {
				tx.Rollback()
				return nil, err
			}
		}
		if err := tx.Save(&pkg).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return &pkg, nil
}

// deleteClientPackage remove o pacote e a VENDA de cobrança vinculada. Cobrança
// já faturada exige force.
func deleteClientPackage(db *gorm.DB, id string, force bool) error {
	var pkg models.ClientPackage
	if err := db.Where("id = ?", id).First(&pkg).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return models.NewNotFoundError("pacote não encontrado")
		}
		return err
	}

	var billing *models.Order
	if pkg.BillingOrderID != nil {
		var order models.Order
		err := db.Where("id = ?", *pkg.BillingOrderID).First(&order).Error
		if err == nil {
			if order.Faturado && !force {
				return models.NewAlreadyInvoicedError("cobrança do pacote já faturada; repita com force=true para excluir")
			}
			billing = &order
		} else if !gorm.IsRecordNotFoundError(err) {
			return err
		}
	}

	tx := db.Begin()

	// Pedidos de consumo viram pedidos soltos: o histórico fica, o vínculo sai.
	if err := tx.Model(&models.Order{}).Where("package_id = ?", pkg.ID).
		Updates(map[string]interface{}{"package_id": nil, "credits_consumed": 0}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if billing != nil {
		if err := tx.Delete(billing).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Delete(&pkg).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// activateClientPackage ativa o pacote garantindo o invariante de no máximo um
// pacote ativo por cliente.
func activateClientPackage(tx *gorm.DB, pkg *models.ClientPackage) error {
	if err := deactivateSiblingPackages(tx, pkg.ClientID, pkg.ID); err != nil {
		return err
	}
	pkg.Active = true
	return tx.Save(pkg).Error
}

func deactivateSiblingPackages(tx *gorm.DB, clientID, exceptID string) error {
	query := tx.Model(&models.ClientPackage{}).Where("client_id = ? AND active = ?", clientID, true)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	return query.Update("active", false).Error
}

// createBillingOrder materializa a mensalidade fixa do pacote como VENDA já
// numerada. A venda nasce recorrente (fora da base de comissão) e sem locutor.
func createBillingOrder(tx *gorm.DB, pkg models.ClientPackage) (*models.Order, error) {
	numero, err := models.NextNumeroVenda(tx)
	if err != nil {
		return nil, err
	}
	serviceType := models.SERVICE_TYPE_PLANO_MENSAL
	billing := models.Order{
		ClientID:    pkg.ClientID,
		Title:       "PACOTE: " + pkg.Name,
		Tipo:        models.ORDER_TIPO_OFF,
		VendaValor:  pkg.FixedFee,
		Status:      models.ORDER_STATUS_VENDA,
		Entregue:    true,
		NumeroVenda: &numero,
		ServiceType: &serviceType,
		IsRecurring: true,
		Date:        pkg.StartDate,
	}
	if err := tx.Create(&billing).Error; err != nil {
		return nil, err
	}
	return &billing, nil
}

// syncBillingOrder alinha a VENDA de cobrança à mensalidade atual: cria quando a
// mensalidade passa a existir, atualiza o valor quando muda, remove quando zera.
func syncBillingOrder(tx *gorm.DB, pkg *models.ClientPackage) error {
	if pkg.BillingOrderID == nil {
		if !pkg.FixedFee.IsPositive() {
			return nil
		}
		billing, err := createBillingOrder(tx, *pkg)
		if err != nil {
			return err
		}
		pkg.BillingOrderID = &billing.ID
		return nil
	}

	var billing models.Order
	if err := tx.Where("id = ?", *pkg.BillingOrderID).First(&billing).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			pkg.BillingOrderID = nil
			return nil
		}
		return err
	}

	if !pkg.FixedFee.IsPositive() {
		if err := tx.Delete(&billing).Error; err != nil {
			return err
		}
		pkg.BillingOrderID = nil
		return nil
	}

	billing.VendaValor = pkg.FixedFee
	billing.Title = "PACOTE: " + pkg.Name
	return tx.Save(&billing).Error
}
