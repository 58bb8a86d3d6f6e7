package controllers

import (
	"testing"
	"time"

	"pontocom/models"
)

func packageRequest(clientID string) PackageRequest {
	now := time.Now()
	return PackageRequest{
		ClientID:      clientID,
		Name:          "Plano 20 áudios",
		Type:          models.PACKAGE_TYPE_FIXO_COM_LIMITE,
		FixedFee:      dec("800"),
		ExtraAudioFee: dec("30"),
		AudioLimit:    20,
		StartDate:     now.Format("2006-01-02"),
		EndDate:       now.AddDate(0, 1, 0).Format("2006-01-02"),
	}
}

func TestCreatePackageGeneratesBillingOrder(t *testing.T) {
	db := testDB(t)
	client := seedClient(t, db)

	pkg, err := createClientPackage(db, packageRequest(client.ID))
	if err != nil {
		t.Fatalf("criando pacote: %v", err)
	}
	if pkg.BillingOrderID == nil {
		t.Fatalf("mensalidade > 0 deveria gerar venda de cobrança")
	}

	var billing models.Order
	if err := db.Where("id = ?", *pkg.BillingOrderID).First(&billing).Error; err != nil {
		t.Fatalf("carregando cobrança: %v", err)
	}
	if billing.Status != models.ORDER_STATUS_VENDA || billing.NumeroVenda == nil {
		t.Fatalf("cobrança nasce como VENDA numerada: %+v", billing)
	}
	if !billing.VendaValor.Equal(dec("800")) {
		t.Fatalf("cobrança esperada 800, veio %s", billing.VendaValor)
	}
	if !billing.IsRecurring {
		t.Fatalf("cobrança de plano fica fora da base de comissão")
	}
}

func TestCreatePackageWithoutFeeSkipsBilling(t *testing.T) {
	db := testDB(t)
	client := seedClient(t, db)

	req := packageRequest(client.ID)
	req.FixedFee = dec("0")
	req.Type = models.PACKAGE_TYPE_SOB_DEMANDA_AVULSO

	pkg, err := createClientPackage(db, req)
	if err != nil {
		t.Fatalf("criando pacote: %v", err)
	}
	if pkg.BillingOrderID != nil {
		t.Fatalf("sem mensalidade não há cobrança")
	}
}

func TestSingleActivePackagePerClient(t *testing.T) {
	db := testDB(t)
	client := seedClient(t, db)

	first, err := createClientPackage(db, packageRequest(client.ID))
	if err != nil {
		t.Fatalf("primeiro pacote: %v", err)
	}
	second, err := createClientPackage(db, packageRequest(client.ID))
	if err != nil {
		t.Fatalf("segundo pacote: %v", err)
	}
	if !second.Active {
		t.Fatalf("pacote novo nasce ativo")
	}

	var reloaded models.ClientPackage
	if err := db.Where("id = ?", first.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("recarregando primeiro: %v", err)
	}
	if reloaded.Active {
		t.Fatalf("irmão deveria ter sido desativado")
	}

	var active int
	if err := db.Model(&models.ClientPackage{}).Where("client_id = ? AND active = ?", client.ID, true).Count(&active).Error; err != nil {
		t.Fatalf("contando ativos: %v", err)
	}
	if active != 1 {
		t.Fatalf("no máximo um pacote ativo, veio %d", active)
	}
}

func TestActivateDeactivatesSiblings(t *testing.T) {
	db := testDB(t)
	client := seedClient(t, db)

	first, err := createClientPackage(db, packageRequest(client.ID))
	if err != nil {
		t.Fatalf("primeiro pacote: %v", err)
	}
	second, err := createClientPackage(db, packageRequest(client.ID))
	if err != nil {
		t.Fatalf("segundo pacote: %v", err)
	}

	var pkg models.ClientPackage
	if err := db.Where("id = ?", first.ID).First(&pkg).Error; err != nil {
		t.Fatalf("carregando primeiro: %v", err)
	}
	tx := db.Begin()
	if err := activateClientPackage(tx, &pkg); err != nil {
		tx.Rollback()
		t.Fatalf("ativando: %v", err)
	}
	if err := tx.Commit().Error; err != nil {
		t.Fatalf("commit: %v", err)
	}

	var reloaded models.ClientPackage
	if err := db.Where("id = ?", second.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("recarregando segundo: %v", err)
	}
	if reloaded.Active {
		t.Fatalf("segundo deveria ter sido desativado")
	}
}

func TestUpdatePackageSyncsBillingOrder(t *testing.T) {
	db := testDB(t)
	client := seedClient(t, db)

	pkg, err := createClientPackage(db, packageRequest(client.ID))
	if err != nil {
		t.Fatalf("criando pacote: %v", err)
	}

	req := packageRequest(client.ID)
	req.FixedFee = dec("950")
	updated, err := updateClientPackage(db, pkg.ID, req)
	if err != nil {
		t.Fatalf("atualizando: %v", err)
	}

	var billing models.Order
	if err := db.Where("id = ?", *updated.BillingOrderID).First(&billing).Error; err != nil {
		t.Fatalf("carregando cobrança: %v", err)
	}
	if !billing.VendaValor.Equal(dec("950")) {
		t.Fatalf("cobrança deveria acompanhar a mensalidade: %s", billing.VendaValor)
	}
}

func TestUpdateInvoicedBillingRequiresForce(t *testing.T) {
	db := testDB(t)
	client := seedClient(t, db)

	pkg, err := createClientPackage(db, packageRequest(client.ID))
	if err != nil {
		t.Fatalf("criando pacote: %v", err)
	}
	if err := db.Model(&models.Order{}).Where("id = ?", *pkg.BillingOrderID).Update("faturado", true).Error; err != nil {
		t.Fatalf("faturando cobrança: %v", err)
	}

	req := packageRequest(client.ID)
	req.FixedFee = dec("950")
	_, err = updateClientPackage(db, pkg.ID, req)
	de, ok := models.IsDomainError(err)
	if !ok || de.Kind != models.ERROR_ALREADY_INVOICED || !de.RequiresConfirmation {
		t.Fatalf("esperado BILLING_ALREADY_INVOICED com confirmação, veio %v", err)
	}

	req.Force = true
	updated, err := updateClientPackage(db, pkg.ID, req)
	if err != nil {
		t.Fatalf("force deveria atualizar: %v", err)
	}

	var billing models.Order
	if err := db.Where("id = ?", *updated.BillingOrderID).First(&billing).Error; err != nil {
		t.Fatalf("carregando cobrança: %v", err)
	}
	if billing.Faturado {
		t.Fatalf("force desfaz o faturamento da cobrança alterada")
	}
	if !billing.VendaValor.Equal(dec("950")) {
		t.Fatalf("cobrança deveria acompanhar a mensalidade: %s", billing.VendaValor)
	}
}

func TestDeletePackageRemovesBillingAndUnlinksOrders(t *testing.T) {
	db := testDB(t)
	client := seedClient(t, db)

	pkg, err := createClientPackage(db, packageRequest(client.ID))
	if err != nil {
		t.Fatalf("criando pacote: %v", err)
	}
	billingID := *pkg.BillingOrderID

	consumption := mustCreateOrder(t, db, OrderRequest{
		ClientID:  client.ID,
		Title:     "Spot do pacote",
		PackageID: &pkg.ID,
	})

	if err := deleteClientPackage(db, pkg.ID, false); err != nil {
		t.Fatalf("excluindo pacote: %v", err)
	}

	var count int
	if err := db.Model(&models.Order{}).Where("id = ?", billingID).Count(&count).Error; err != nil {
		t.Fatalf("contando cobrança: %v", err)
	}
	if count != 0 {
		t.Fatalf("cobrança deveria sumir junto")
	}

	var reloaded models.Order
	if err := db.Where("id = ?", consumption.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("recarregando consumo: %v", err)
	}
	if reloaded.PackageID != nil {
		t.Fatalf("pedido de consumo deveria perder o vínculo")
	}
}

func TestDeletePackageInvoicedRequiresForce(t *testing.T) {
	db := testDB(t)
	client := seedClient(t, db)

	pkg, err := createClientPackage(db, packageRequest(client.ID))
	if err != nil {
		t.Fatalf("criando pacote: %v", err)
	}
	if err := db.Model(&models.Order{}).Where("id = ?", *pkg.BillingOrderID).Update("faturado", true).Error; err != nil {
		t.Fatalf("faturando cobrança: %v", err)
	}

	err = deleteClientPackage(db, pkg.ID, false)
	de, ok := models.IsDomainError(err)
	if !ok || de.Kind != models.ERROR_ALREADY_INVOICED {
		t.Fatalf("esperado BILLING_ALREADY_INVOICED, veio %v", err)
	}

	if err := deleteClientPackage(db, pkg.ID, true); err != nil {
		t.Fatalf("force deveria excluir: %v", err)
	}
}
