package workers

import (
	"time"

	"pontocom/finance"
	"pontocom/models"

	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"
)

// StartRecurringProcessor dispara o processamento dos serviços recorrentes em
// intervalos fixos. Roda uma varredura imediata na subida e depois a cada tick.
func StartRecurringProcessor(db *gorm.DB, interval time.Duration) {
	go func() {
		log.WithField("interval", interval.String()).Info("worker de serviços recorrentes iniciado")
		ProcessDueServices(db, time.Now())
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for now := range ticker.C {
			ProcessDueServices(db, now)
		}
	}()
}

// ProcessDueServices executa todos os serviços automáticos vencidos. Falha em um
// serviço não interrompe os demais.
func ProcessDueServices(db *gorm.DB, now time.Time) {
	var services []models.RecurringService
	err := db.Where("active = ? AND is_automatic = ? AND next_execution <= ?", true, true, now).
		Find(&services).Error
	if err != nil {
		log.WithError(err).Error("falha ao buscar serviços recorrentes vencidos")
		return
	}

	for _, service := range services {
		if _, err := ExecuteService(db, &service, now); err != nil {
			log.WithFields(log.Fields{
				"service": service.ID,
				"name":    service.Name,
			}).WithError(err).Error("execução de serviço recorrente falhou")
			continue
		}
		log.WithFields(log.Fields{
			"service": service.ID,
			"name":    service.Name,
		}).Info("serviço recorrente executado")
	}
}

// ExecuteService materializa uma execução do serviço: gera a VENDA, avança o
// agendamento em exatamente um intervalo e grava o log de execução.
//
// A reivindicação da execução é otimista: o avanço de NextExecution é condicionado
// ao valor lido, então duas execuções concorrentes do mesmo vencimento resultam em
// uma única VENDA (a perdedora recebe ERROR_CONCURRENT_EXECUTION).
//
// Falha NÃO avança o agendamento: o log FAILED fica registrado e o serviço volta a
// ser tentado na próxima varredura.
func ExecuteService(db *gorm.DB, service *models.RecurringService, now time.Time) (*models.Order, error) {
	if !service.Active {
		return nil, models.NewValidationError("serviço não está ativo")
	}

	var client models.Client
	if err := db.Where("id = ?", service.ClientID).First(&client).Error; err != nil {
		failErr := err
		if gorm.IsRecordNotFoundError(err) {
			failErr = models.NewNotFoundError("cliente do serviço não encontrado")
		}
		writeExecutionLog(db, service.ID, now, models.RECURRING_LOG_FAILED, failErr.Error(), nil)
		return nil, failErr
	}
	if client.Status != models.CLIENT_STATUS_ACTIVE {
		failErr := models.NewValidationError("cliente do serviço está desativado")
		writeExecutionLog(db, service.ID, now, models.RECURRING_LOG_FAILED, failErr.Error(), nil)
		return nil, failErr
	}

	due := service.NextExecution
	advanced := finance.NextExecution(due, service.Recurrence)

	tx := db.Begin()

	// Claim otimista: só avança quem ainda enxerga o vencimento lido.
	claim := tx.Model(&models.RecurringService{}).
		Where("id = ? AND next_execution = ?", service.ID, due).
		Updates(map[string]interface{}{
			"next_execution": advanced,
			"last_execution": due,
		})
	if claim.Error != nil {
		tx.Rollback()
		writeExecutionLog(db, service.ID, now, models.RECURRING_LOG_FAILED, claim.Error.Error(), nil)
		return nil, claim.Error
	}
	if claim.RowsAffected == 0 {
		tx.Rollback()
		return nil, &models.DomainError{
			Kind:    models.ERROR_CONCURRENT_EXECUTION,
			Message: "serviço já executado por outro processo",
		}
	}

	order, err := createServiceOrder(tx, service, due)
	if err != nil {
		tx.Rollback()
		writeExecutionLog(db, service.ID, now, models.RECURRING_LOG_FAILED, err.Error(), nil)
		return nil, err
	}

	execLog := models.RecurringServiceLog{
		ServiceID:        service.ID,
		ExecutionDate:    now,
		Status:           models.RECURRING_LOG_SUCCESS,
		Message:          "pedido gerado: " + order.Title,
		GeneratedOrderID: &order.ID,
	}
	if err := tx.Create(&execLog).Error; err != nil {
		tx.Rollback()
		writeExecutionLog(db, service.ID, now, models.RECURRING_LOG_FAILED, err.Error(), nil)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		writeExecutionLog(db, service.ID, now, models.RECURRING_LOG_FAILED, err.Error(), nil)
		return nil, err
	}

	service.LastExecution = &due
	service.NextExecution = advanced
	return order, nil
}

func createServiceOrder(tx *gorm.DB, service *models.RecurringService, due time.Time) (*models.Order, error) {
	numero, err := models.NextNumeroVenda(tx)
	if err != nil {
		return nil, err
	}
	serviceType := models.SERVICE_TYPE_RECORRENTE
	order := models.Order{
		ClientID:      service.ClientID,
		Title:         service.Name,
		Tipo:          models.ORDER_TIPO_OFF,
		VendaValor:    service.Value,
		Status:        models.ORDER_STATUS_VENDA,
		Entregue:      true,
		NumeroVenda:   &numero,
		ServiceType:   &serviceType,
		IsRecurring:   true,
		HasCommission: service.HasCommission,
		Date:          due,
	}
	if service.AutoBilling {
		order.Faturado = true
		order.DataFaturar = &due
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// O log FAILED é gravado fora da transação da execução de propósito: o rollback
// da execução não pode engolir a trilha da falha.
func writeExecutionLog(db *gorm.DB, serviceID string, at time.Time, status, message string, orderID *string) {
	entry := models.RecurringServiceLog{
		ServiceID:        serviceID,
		ExecutionDate:    at,
		Status:           status,
		Message:          message,
		GeneratedOrderID: orderID,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.WithError(err).Error("falha ao gravar log de execução recorrente")
	}
}
