package controllers

import (
	"net/http"
	"time"

	dbpkg "pontocom/db"
	"pontocom/finance"
	"pontocom/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type OrderRequest struct {
	ClientID  string  `json:"clientId" form:"clientId"`
	LocutorID *string `json:"locutorId" form:"locutorId"`
	Title     string  `json:"title" form:"title"`
	Tipo      string  `json:"tipo" form:"tipo"`

	CacheValor decimal.Decimal `json:"cacheValor" form:"cacheValor"`
	VendaValor decimal.Decimal `json:"vendaValor" form:"vendaValor"`

	// Status permite criar direto como VENDA (com número atribuído na criação).
	Status      string `json:"status" form:"status"`
	NumeroVenda *int   `json:"numeroVenda" form:"numeroVenda"`

	Date        string `json:"date" form:"date"`
	ServiceType string `json:"serviceType" form:"serviceType"`

	HasCommission bool `json:"hasCommission" form:"hasCommission"`

	PackageID       *string `json:"packageId" form:"packageId"`
	CreditsConsumed int     `json:"creditsConsumed" form:"creditsConsumed"`
	IsBonus         bool    `json:"isBonus" form:"isBonus"`

	PendenciaFinanceiro bool   `json:"pendenciaFinanceiro" form:"pendenciaFinanceiro"`
	PendenciaMotivo     string `json:"pendenciaMotivo" form:"pendenciaMotivo"`
	Comentarios         string `json:"comentarios" form:"comentarios"`
}

type ConvertOrderRequest struct {
	NumeroVenda *int `json:"numeroVenda" form:"numeroVenda"`
}

type BulkDeleteRequest struct {
	IDs   []string `json:"ids" form:"ids"`
	Force bool     `json:"force" form:"force"`
}

type FaturadoRequest struct {
	Faturado bool `json:"faturado" form:"faturado"`
}

// OrderView decora o pedido com o custo efetivo já rateado: a UI nunca vê o
// cachê zero cru de pedido mensalista.
type OrderView struct {
	models.Order
	CacheEfetivo decimal.Decimal `json:"cacheEfetivo"`
}

type OrderListStats struct {
	Count      int             `json:"count"`
	TotalVenda decimal.Decimal `json:"totalVenda"`
	TotalCache decimal.Decimal `json:"totalCache"`
}

// GET /api/orders
// Filtros: status, clientId, locutorId, faturado, pago, entregue, search,
// startDate/endDate. As estatísticas cobrem o conjunto filtrado inteiro, não só
// a página retornada.
func GetOrders(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	query := db.Preload("Client").Preload("Locutor").Order("date desc, created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID := c.Query("clientId"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if locutorID := c.Query("locutorId"); locutorID != "" {
		query = query.Where("locutor_id = ?", locutorID)
	}
	if v := c.Query("faturado"); v != "" {
		query = query.Where("faturado = ?", v == "true")
	}
	if v := c.Query("pago"); v != "" {
		query = query.Where("pago = ?", v == "true")
	}
	if v := c.Query("entregue"); v != "" {
		query = query.Where("entregue = ?", v == "true")
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}
	start, end, ok := QueryWindow(c)
	if !ok {
		return
	}
	if start != nil {
		query = query.Where("date >= ?", *start)
	}
	if end != nil {
		query = query.Where("date <= ?", *end)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	locutores, counts, err := loadProrationContext(db, orders)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	stats := OrderListStats{TotalVenda: decimal.Zero, TotalCache: decimal.Zero}
	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		cache := finance.EffectiveCache(order, locutores, counts)
		stats.Count++
		stats.TotalCache = stats.TotalCache.Add(cache)
		if order.Status == models.ORDER_STATUS_VENDA {
			stats.TotalVenda = stats.TotalVenda.Add(order.VendaValor)
		}
		views = append(views, OrderView{Order: order, CacheEfetivo: finance.Round2(cache)})
	}
	stats.TotalVenda = finance.Round2(stats.TotalVenda)
	stats.TotalCache = finance.Round2(stats.TotalCache)

	page, pageSize := Pagination(c)
	from := (page - 1) * pageSize
	if from > len(views) {
		from = len(views)
	}
	to := from + pageSize
	if to > len(views) {
		to = len(views)
	}

	RespondSuccess(c, gin.H{
		"orders":   views[from:to],
		"stats":    stats,
		"page":     page,
		"pageSize": pageSize,
	})
}

// GET /api/orders/:id
func GetOrderByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var order models.Order
	if err := db.Preload("Client").Preload("Locutor").Where("id = ?", id).First(&order).Error; err != nil {
		RespondError(c, "pedido não encontrado", http.StatusNotFound)
		return
	}

	locutores, counts, err := loadProrationContext(db, []models.Order{order})
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	cache := finance.Round2(finance.EffectiveCache(order, locutores, counts))

	RespondSuccess(c, gin.H{"order": OrderView{Order: order, CacheEfetivo: cache}})
}

// POST /api/orders
func CreateOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	order, err := createOrder(db, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondSuccess(c, gin.H{"order": order})
}

// PUT /api/orders/:id
// Mudança de status não passa por aqui: use os endpoints de convert/revert.
func UpdateOrder(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	order, err := updateOrder(db, id, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondSuccess(c, gin.H{"order": order})
}

// POST /api/orders/:id/convert
func ConvertOrder(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var req ConvertOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	order, err := convertOrder(db, id, req.NumeroVenda)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondSuccess(c, gin.H{"order": order})
}

// POST /api/orders/:id/revert
func RevertOrder(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	order, err := revertOrder(db, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondSuccess(c, gin.H{"order": order})
}

// POST /api/orders/:id/clone
func CloneOrder(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	order, err := cloneOrder(db, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondSuccess(c, gin.H{"order": order})
}

// PUT /api/orders/:id/faturado
func SetOrderFaturado(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var req FaturadoRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var order models.Order
	if err := db.Where("id = ?", id).First(&order).Error; err != nil {
		RespondError(c, "pedido não encontrado", http.StatusNotFound)
		return
	}

	order.Faturado = req.Faturado
	if req.Faturado {
		now := time.Now()
		order.DataFaturar = &now
	} else {
		order.DataFaturar = nil
		order.Pago = false
	}

	if err := db.Save(&order).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"order": order})
}

// DELETE /api/orders/:id?force=true
func DeleteOrder(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	if err := deleteOrder(db, id, c.Query("force") == "true"); err != nil {
		RespondDomainError(c, err)
		return
	}

	RespondSuccess(c, gin.H{"status": "deleted"})
}

// POST /api/orders/bulk-delete
func BulkDeleteOrders(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.IDs) == 0 {
		RespondError(c, "ids é obrigatório", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	deleted := 0
	for _, id := range req.IDs {
		if err := deleteOrder(db, id, req.Force); err != nil {
			RespondDomainError(c, err)
			return
		}
		deleted++
	}

	RespondSuccess(c, gin.H{"deleted": deleted})
}

/************************************************
/**** MARK: CORE ****/
/************************************************/

// claimNumeroVenda resolve o número da venda: o explícito (checando duplicidade)
// ou o próximo da sequência.
func claimNumeroVenda(tx *gorm.DB, explicit *int) (int, error) {
	if explicit == nil {
		return models.NextNumeroVenda(tx)
	}
	var count int
	if err := tx.Model(&models.Order{}).Where("numero_venda = ?", *explicit).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, &models.DomainError{
			Kind:    models.ERROR_DUPLICATE_SALE_NUMBER,
			Message: "número de venda já utilizado",
		}
	}
	return *explicit, nil
}

func createOrder(db *gorm.DB, req OrderRequest) (*models.Order, error) {
	order := models.Order{
		ClientID:            req.ClientID,
		LocutorID:           req.LocutorID,
		Title:               req.Title,
		Tipo:                req.Tipo,
		CacheValor:          req.CacheValor,
		VendaValor:          req.VendaValor,
		Status:              models.ORDER_STATUS_PEDIDO,
		HasCommission:       req.HasCommission,
		PackageID:           req.PackageID,
		CreditsConsumed:     req.CreditsConsumed,
		IsBonus:             req.IsBonus,
		PendenciaFinanceiro: req.PendenciaFinanceiro,
		PendenciaMotivo:     req.PendenciaMotivo,
		Comentarios:         req.Comentarios,
		Date:                time.Now(),
	}
	if req.ServiceType != "" {
		serviceType := req.ServiceType
		order.ServiceType = &serviceType
	}
	if req.Date != "" {
		date, err := ParseDate(req.Date)
		if err != nil {
			return nil, models.NewValidationError("date inválido (use yyyy-mm-dd)")
		}
		order.Date = date
	}
	if order.Tipo == "" {
		order.Tipo = models.ORDER_TIPO_OFF
	}
	if order.Tipo != models.ORDER_TIPO_OFF && order.Tipo != models.ORDER_TIPO_PRODUZIDO {
		return nil, models.NewValidationError("tipo deve ser OFF ou PRODUZIDO")
	}
	if req.Status != "" && req.Status != models.ORDER_STATUS_PEDIDO && req.Status != models.ORDER_STATUS_VENDA {
		return nil, models.NewValidationError("status deve ser PEDIDO ou VENDA")
	}
	if missing := order.MissingFields(); missing != "" {
		return nil, models.NewValidationError(missing + " é obrigatório")
	}
	if order.CacheValor.IsNegative() || order.VendaValor.IsNegative() {
		return nil, models.NewValidationError("valores não podem ser negativos")
	}
	if !order.VendaValor.IsPositive() && order.PackageID == nil && !order.IsBonus {
		return nil, models.NewValidationError("vendaValor deve ser maior que zero")
	}

	var client models.Client
	if err := db.Where("id = ?", order.ClientID).First(&client).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, models.NewNotFoundError("cliente não encontrado")
		}
		return nil, err
	}

	if order.LocutorID != nil {
		var locutor models.Locutor
		if err := db.Where("id = ?", *order.LocutorID).First(&locutor).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return nil, models.NewNotFoundError("locutor não encontrado")
			}
			return nil, err
		}
		// Cachê em branco assume a tabela do locutor; mensalista fica em zero e o
		// custo sai do rateio na leitura.
		if order.CacheValor.IsZero() && !locutor.HasFixedMonthlyFee() {
			if order.Tipo == models.ORDER_TIPO_PRODUZIDO {
				order.CacheValor = locutor.PriceProduzido
			} else {
				order.CacheValor = locutor.PriceOff
			}
		}
	}

	tx := db.Begin()

	if order.PackageID != nil {
		var pkg models.ClientPackage
		if err := tx.Where("id = ?", *order.PackageID).First(&pkg).Error; err != nil {
			tx.Rollback()
			if gorm.IsRecordNotFoundError(err) {
				return nil, models.NewNotFoundError("pacote não encontrado")
			}
			return nil, err
		}
		if pkg.ClientID != order.ClientID {
			tx.Rollback()
			return nil, models.NewValidationError("pacote não pertence ao cliente do pedido")
		}
		if !pkg.Active {
			tx.Rollback()
			return nil, models.NewValidationError("pacote não está ativo")
		}
		if !pkg.WithinValidity(order.Date) {
			tx.Rollback()
			return nil, &models.DomainError{
				Kind:    models.ERROR_PACKAGE_EXPIRED,
				Message: "pacote fora da vigência",
			}
		}

		if !order.IsBonus {
			if order.CreditsConsumed <= 0 {
				order.CreditsConsumed = 1
			}
			// Excedente de franquia vira cobrança em vez de bloqueio: o pedido
			// nasce com venda = extras * taxa de áudio extra.
			if overage := pkg.OverageValue(order.CreditsConsumed); overage.IsPositive() {
				order.VendaValor = overage
			} else {
				order.VendaValor = decimal.Zero
			}
			pkg.UsedAudios += order.CreditsConsumed
			if err := tx.Save(&pkg).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		} else {
			order.CreditsConsumed = 0
			order.VendaValor = decimal.Zero
		}
	}

	// Criação direta como VENDA já sai numerada e entregue.
	if req.Status == models.ORDER_STATUS_VENDA {
		if !order.VendaValor.IsPositive() && order.PackageID == nil && !order.IsBonus {
			tx.Rollback()
			return nil, models.NewValidationError("vendaValor deve ser maior que zero")
		}
		numero, err := claimNumeroVenda(tx, req.NumeroVenda)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		order.Status = models.ORDER_STATUS_VENDA
		order.NumeroVenda = &numero
		order.Entregue = true
	}

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return &order, nil
}

func updateOrder(db *gorm.DB, id string, req OrderRequest) (*models.Order, error) {
	var order models.Order
	if err := db.Where("id = ?", id).First(&order).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, models.NewNotFoundError("pedido não encontrado")
		}
		return nil, err
	}

	tx := db.Begin()

	// Troca de vínculo com pacote: devolve crédito do vínculo antigo e debita o
	// novo, na mesma transação.
	oldPackageID := order.PackageID
	newPackageID := req.PackageID
	packageChanged := (oldPackageID == nil) != (newPackageID == nil) ||
		(oldPackageID != nil && newPackageID != nil && *oldPackageID != *newPackageID)

	if packageChanged {
		if oldPackageID != nil && order.CreditsConsumed > 0 {
			if err := refundPackageCredits(tx, *oldPackageID, order.CreditsConsumed); err != nil {
				tx.Rollback()
				return nil, err
			}
			order.CreditsConsumed = 0
		}
		order.PackageID = newPackageID
		if newPackageID != nil {
			var pkg models.ClientPackage
			if err := tx.Where("id = ?", *newPackageID).First(&pkg).Error; err != nil {
				tx.Rollback()
				if gorm.IsRecordNotFoundError(err) {
					return nil, models.NewNotFoundError("pacote não encontrado")
				}
				return nil, err
			}
			if !pkg.WithinValidity(order.Date) {
				tx.Rollback()
				return nil, &models.DomainError{
					Kind:    models.ERROR_PACKAGE_EXPIRED,
					Message: "pacote fora da vigência",
				}
			}
			if req.IsBonus {
				// Bonificação não debita crédito nem carrega o preço avulso antigo.
				order.CreditsConsumed = 0
				order.VendaValor = decimal.Zero
			} else {
				credits := req.CreditsConsumed
				if credits <= 0 {
					credits = 1
				}
				if overage := pkg.OverageValue(credits); overage.IsPositive() {
					order.VendaValor = overage
				} else {
					order.VendaValor = decimal.Zero
				}
				pkg.UsedAudios += credits
				order.CreditsConsumed = credits
				if err := tx.Save(&pkg).Error; err != nil {
					tx.Rollback()
					return nil, err
				}
			}
		}
	}

	if req.ClientID != "" {
		order.ClientID = req.ClientID
	}
	if req.Title != "" {
		order.Title = req.Title
	}
	if req.Tipo == models.ORDER_TIPO_OFF || req.Tipo == models.ORDER_TIPO_PRODUZIDO {
		order.Tipo = req.Tipo
	}
	order.LocutorID = req.LocutorID
	order.CacheValor = req.CacheValor
	if order.PackageID == nil {
		order.VendaValor = req.VendaValor
	}
	order.HasCommission = req.HasCommission
	order.IsBonus = req.IsBonus
	order.PendenciaFinanceiro = req.PendenciaFinanceiro
	order.PendenciaMotivo = req.PendenciaMotivo
	order.Comentarios = req.Comentarios
	if req.ServiceType != "" {
		serviceType := req.ServiceType
		order.ServiceType = &serviceType
	}
	if req.Date != "" {
		date, err := ParseDate(req.Date)
		if err != nil {
			tx.Rollback()
			return nil, models.NewValidationError("date inválido (use yyyy-mm-dd)")
		}
		order.Date = date
	}

	if order.CacheValor.IsNegative() || order.VendaValor.IsNegative() {
		tx.Rollback()
		return nil, models.NewValidationError("valores não podem ser negativos")
	}
	if !order.VendaValor.IsPositive() && order.PackageID == nil && !order.IsBonus {
		tx.Rollback()
		return nil, models.NewValidationError("vendaValor deve ser maior que zero")
	}
	if missing := order.MissingFields(); missing != "" {
		tx.Rollback()
		return nil, models.NewValidationError(missing + " é obrigatório")
	}

	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return &order, nil
}

// convertOrder promove PEDIDO a VENDA, atribuindo o número sequencial de venda.
// Sem número explícito, usa o próximo da sequência.
func convertOrder(db *gorm.DB, id string, numeroVenda *int) (*models.Order, error) {
	var order models.Order
	if err := db.Where("id = ?", id).First(&order).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, models.NewNotFoundError("pedido não encontrado")
		}
		return nil, err
	}
	if order.Status != models.ORDER_STATUS_PEDIDO {
		return nil, models.NewInvalidTransitionError("somente PEDIDO pode virar VENDA")
	}

	tx := db.Begin()

	numero, err := claimNumeroVenda(tx, numeroVenda)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	order.Status = models.ORDER_STATUS_VENDA
	order.NumeroVenda = &numero
	order.Entregue = true

	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return &order, nil
}

// revertOrder volta VENDA para PEDIDO. O número de venda é liberado e a entrega
// desfeita; Faturado/Pago ficam como estão, servindo de rastro do que já foi
// cobrado.
func revertOrder(db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	if err := db.Where("id = ?", id).First(&order).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, models.NewNotFoundError("pedido não encontrado")
		}
		return nil, err
	}
	if order.Status != models.ORDER_STATUS_VENDA {
		return nil, models.NewInvalidTransitionError("somente VENDA pode voltar a PEDIDO")
	}

	order.Status = models.ORDER_STATUS_PEDIDO
	order.NumeroVenda = nil
	order.Entregue = false

	if err := db.Save(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// cloneOrder duplica um pedido como novo PEDIDO de hoje. Vínculo com pacote não
// é clonado: débito de crédito só acontece em criação deliberada.
func cloneOrder(db *gorm.DB, id string) (*models.Order, error) {
	var source models.Order
	if err := db.Where("id = ?", id).First(&source).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, models.NewNotFoundError("pedido não encontrado")
		}
		return nil, err
	}

	clone := models.Order{
		ClientID:      source.ClientID,
		LocutorID:     source.LocutorID,
		Title:         source.Title,
		Tipo:          source.Tipo,
		CacheValor:    source.CacheValor,
		VendaValor:    source.VendaValor,
		Status:        models.ORDER_STATUS_PEDIDO,
		ServiceType:   source.ServiceType,
		HasCommission: source.HasCommission,
		Comentarios:   source.Comentarios,
		Date:          time.Now(),
	}

	if err := db.Create(&clone).Error; err != nil {
		return nil, err
	}
	return &clone, nil
}

// deleteOrder remove o pedido. Pedido faturado exige force (protocolo de
// confirmação em duas etapas); consumo de pacote devolve os créditos.
func deleteOrder(db *gorm.DB, id string, force bool) error {
	var order models.Order
	if err := db.Where("id = ?", id).First(&order).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return models.NewNotFoundError("pedido não encontrado")
		}
		return err
	}
	if order.Faturado && !force {
		return models.NewAlreadyInvoicedError("pedido já faturado; repita com force=true para excluir")
	}

	tx := db.Begin()

	if order.PackageID != nil && order.CreditsConsumed > 0 {
		if err := refundPackageCredits(tx, *order.PackageID, order.CreditsConsumed); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Delete(&order).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// refundPackageCredits devolve créditos consumidos ao pacote, sem deixar o
// contador negativo. Pacote já removido não é erro: o crédito simplesmente não
// tem mais onde voltar.
func refundPackageCredits(tx *gorm.DB, packageID string, credits int) error {
	if credits <= 0 {
		return nil
	}
	var pkg models.ClientPackage
	if err := tx.Where("id = ?", packageID).First(&pkg).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil
		}
		return err
	}
	pkg.UsedAudios -= credits
	if pkg.UsedAudios < 0 {
		pkg.UsedAudios = 0
	}
	return tx.Save(&pkg).Error
}

// loadProrationContext monta os mapas que o rateio de cachê mensalista precisa.
// A contagem de irmãos considera TODOS os pedidos zero-cachê dos locutores
// mensalistas envolvidos, não só os pedidos recebidos. Assim o custo efetivo de
// um pedido não muda conforme o filtro da listagem.
func loadProrationContext(db *gorm.DB, orders []models.Order) (map[string]models.Locutor, map[string]int, error) {
	ids := make([]string, 0)
	seen := make(map[string]bool)
	for _, order := range orders {
		if order.LocutorID == nil || seen[*order.LocutorID] {
			continue
		}
		seen[*order.LocutorID] = true
		ids = append(ids, *order.LocutorID)
	}

	locutores := make(map[string]models.Locutor)
	if len(ids) == 0 {
		return locutores, map[string]int{}, nil
	}

	var rows []models.Locutor
	if err := db.Where("id IN (?)", ids).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	mensalistas := make([]string, 0)
	for _, locutor := range rows {
		locutores[locutor.ID] = locutor
		if locutor.HasFixedMonthlyFee() {
			mensalistas = append(mensalistas, locutor.ID)
		}
	}
	if len(mensalistas) == 0 {
		return locutores, map[string]int{}, nil
	}

	var siblings []models.Order
	if err := db.Where("locutor_id IN (?)", mensalistas).Find(&siblings).Error; err != nil {
		return nil, nil, err
	}
	return locutores, finance.CountZeroCacheSiblings(siblings, locutores), nil
}
