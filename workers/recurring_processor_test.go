package workers

import (
	"path/filepath"
	"testing"
	"time"

	dbpkg "pontocom/db"
	"pontocom/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/shopspring/decimal"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("abrindo sqlite de teste: %v", err)
	}
	if err := dbpkg.Migrate(db).Error; err != nil {
		t.Fatalf("migrando schema de teste: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedService(t *testing.T, db *gorm.DB, clientStatus string) models.RecurringService {
	t.Helper()
	client := models.Client{Name: "Rádio Cidade", Status: clientStatus}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("criando cliente: %v", err)
	}
	due := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	service := models.RecurringService{
		ClientID:      client.ID,
		Name:          "Locução semanal",
		Value:         decimal.NewFromInt(400),
		Recurrence:    models.RECURRENCE_MONTHLY,
		IsAutomatic:   true,
		Active:        true,
		StartDate:     due,
		NextExecution: due,
	}
	if err := db.Create(&service).Error; err != nil {
		t.Fatalf("criando serviço: %v", err)
	}
	return service
}

func TestExecuteServiceAdvancesOneInterval(t *testing.T) {
	db := testDB(t)
	service := seedService(t, db, models.CLIENT_STATUS_ACTIVE)
	due := service.NextExecution
	now := due.AddDate(0, 0, 2)

	order, err := ExecuteService(db, &service, now)
	if err != nil {
		t.Fatalf("executando: %v", err)
	}

	if order.Status != models.ORDER_STATUS_VENDA || order.NumeroVenda == nil {
		t.Fatalf("execução gera VENDA numerada: %+v", order)
	}
	if !order.VendaValor.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("valor esperado 400, veio %s", order.VendaValor)
	}
	if !order.IsRecurring {
		t.Fatalf("pedido gerado é recorrente")
	}
	if !order.Date.Equal(due) {
		t.Fatalf("pedido datado no vencimento, veio %s", order.Date)
	}

	var reloaded models.RecurringService
	if err := db.Where("id = ?", service.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("recarregando serviço: %v", err)
	}
	want := due.AddDate(0, 1, 0)
	if !reloaded.NextExecution.Equal(want) {
		t.Fatalf("próxima execução deveria avançar UM intervalo (%s), veio %s", want, reloaded.NextExecution)
	}
	if reloaded.LastExecution == nil || !reloaded.LastExecution.Equal(due) {
		t.Fatalf("última execução deveria registrar o vencimento consumido")
	}

	var logs []models.RecurringServiceLog
	if err := db.Where("service_id = ?", service.ID).Find(&logs).Error; err != nil {
		t.Fatalf("carregando logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != models.RECURRING_LOG_SUCCESS {
		t.Fatalf("esperado um log SUCCESS, veio %+v", logs)
	}
	if logs[0].GeneratedOrderID == nil || *logs[0].GeneratedOrderID != order.ID {
		t.Fatalf("log deveria apontar o pedido gerado")
	}
}

func TestExecuteServiceFailureDoesNotAdvance(t *testing.T) {
	db := testDB(t)
	service := seedService(t, db, models.CLIENT_STATUS_INACTIVE)
	due := service.NextExecution

	_, err := ExecuteService(db, &service, due)
	if err == nil {
		t.Fatalf("cliente desativado deveria falhar")
	}

	var reloaded models.RecurringService
	if err := db.Where("id = ?", service.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("recarregando serviço: %v", err)
	}
	if !reloaded.NextExecution.Equal(due) {
		t.Fatalf("falha não avança o agendamento: %s", reloaded.NextExecution)
	}

	var logs []models.RecurringServiceLog
	if err := db.Where("service_id = ?", service.ID).Find(&logs).Error; err != nil {
		t.Fatalf("carregando logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != models.RECURRING_LOG_FAILED {
		t.Fatalf("esperado log FAILED, veio %+v", logs)
	}

	var orders int
	if err := db.Model(&models.Order{}).Count(&orders).Error; err != nil {
		t.Fatalf("contando pedidos: %v", err)
	}
	if orders != 0 {
		t.Fatalf("falha não gera pedido")
	}
}

func TestExecuteServiceConcurrentClaim(t *testing.T) {
	db := testDB(t)
	service := seedService(t, db, models.CLIENT_STATUS_ACTIVE)
	stale := service

	if _, err := ExecuteService(db, &service, service.NextExecution); err != nil {
		t.Fatalf("primeira execução: %v", err)
	}

	// segunda execução com o agendamento já consumido
	_, err := ExecuteService(db, &stale, stale.NextExecution)
	de, ok := models.IsDomainError(err)
	if !ok || de.Kind != models.ERROR_CONCURRENT_EXECUTION {
		t.Fatalf("esperado CONCURRENT_EXECUTION, veio %v", err)
	}

	var orders int
	if err := db.Model(&models.Order{}).Count(&orders).Error; err != nil {
		t.Fatalf("contando pedidos: %v", err)
	}
	if orders != 1 {
		t.Fatalf("vencimento executa uma única vez, veio %d pedidos", orders)
	}
}

func TestProcessDueServicesSkipsManualAndFuture(t *testing.T) {
	db := testDB(t)
	service := seedService(t, db, models.CLIENT_STATUS_ACTIVE)

	manual := seedService(t, db, models.CLIENT_STATUS_ACTIVE)
	if err := db.Model(&models.RecurringService{}).Where("id = ?", manual.ID).Update("is_automatic", false).Error; err != nil {
		t.Fatalf("marcando manual: %v", err)
	}

	future := seedService(t, db, models.CLIENT_STATUS_ACTIVE)
	if err := db.Model(&models.RecurringService{}).Where("id = ?", future.ID).
		Update("next_execution", service.NextExecution.AddDate(1, 0, 0)).Error; err != nil {
		t.Fatalf("adiando: %v", err)
	}

	ProcessDueServices(db, service.NextExecution.AddDate(0, 0, 1))

	var orders int
	if err := db.Model(&models.Order{}).Count(&orders).Error; err != nil {
		t.Fatalf("contando pedidos: %v", err)
	}
	if orders != 1 {
		t.Fatalf("só o serviço automático vencido executa, veio %d", orders)
	}
}
