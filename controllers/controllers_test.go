package controllers

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

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedClient(t *testing.T, db *gorm.DB) models.Client {
	t.Helper()
	client := models.Client{Name: "Rádio Cidade"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("criando cliente: %v", err)
	}
	return client
}

func seedLocutor(t *testing.T, db *gorm.DB, valorFixo string) models.Locutor {
	t.Helper()
	locutor := models.Locutor{
		Name:            "Locutor Teste",
		PriceOff:        dec("50"),
		PriceProduzido:  dec("80"),
		ValorFixoMensal: dec(valorFixo),
	}
	if err := db.Create(&locutor).Error; err != nil {
		t.Fatalf("criando locutor: %v", err)
	}
	return locutor
}

func seedPackage(t *testing.T, db *gorm.DB, clientID string, limit int, extraFee string) models.ClientPackage {
	t.Helper()
	now := time.Now()
	pkg := models.ClientPackage{
		ClientID:      clientID,
		Name:          "Pacote Teste",
		Type:          models.PACKAGE_TYPE_FIXO_COM_LIMITE,
		ExtraAudioFee: dec(extraFee),
		AudioLimit:    limit,
		StartDate:     now.AddDate(0, 0, -1),
		EndDate:       now.AddDate(0, 1, 0),
		Active:        true,
	}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("criando pacote: %v", err)
	}
	return pkg
}

func mustCreateOrder(t *testing.T, db *gorm.DB, req OrderRequest) *models.Order {
	t.Helper()
	order, err := createOrder(db, req)
	if err != nil {
		t.Fatalf("criando pedido: %v", err)
	}
	return order
}
