package router

import (
	"net/http"

	"pontocom/config"
	"pontocom/controllers"
	"pontocom/middleware"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Initialize amarra todas as rotas e middlewares da API.
func Initialize(r *gin.Engine, cfg config.Configuration) {
	_ = cfg

	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Clientes
	api.GET("/clients", Logger(), controllers.GetClients)
	api.GET("/clients/:id", Logger(), controllers.GetClientByID)
	api.POST("/clients", Logger(), controllers.CreateClient)
	api.PUT("/clients/:id", Logger(), controllers.UpdateClient)
	api.DELETE("/clients/:id", Logger(), controllers.DeleteClient)

	// Locutores
	api.GET("/locutores", Logger(), controllers.GetLocutores)
	api.GET("/locutores/:id", Logger(), controllers.GetLocutorByID)
	api.POST("/locutores", Logger(), controllers.CreateLocutor)
	api.PUT("/locutores/:id", Logger(), controllers.UpdateLocutor)
	api.DELETE("/locutores/:id", Logger(), controllers.DeleteLocutor)

	// Pedidos / Vendas
	api.GET("/orders", Logger(), controllers.GetOrders)
	api.GET("/orders/:id", Logger(), controllers.GetOrderByID)
	api.POST("/orders", Logger(), controllers.CreateOrder)
	api.PUT("/orders/:id", Logger(), controllers.UpdateOrder)
	api.POST("/orders/:id/convert", Logger(), controllers.ConvertOrder)
	api.POST("/orders/:id/revert", Logger(), controllers.RevertOrder)
	api.POST("/orders/:id/clone", Logger(), controllers.CloneOrder)
	api.PUT("/orders/:id/faturado", Logger(), controllers.SetOrderFaturado)
	api.DELETE("/orders/:id", Logger(), controllers.DeleteOrder)
	api.POST("/orders/bulk-delete", Logger(), controllers.BulkDeleteOrders)

	// Pacotes mensais
	api.GET("/packages", Logger(), controllers.GetClientPackages)
	api.GET("/packages/:id", Logger(), controllers.GetClientPackageByID)
	api.POST("/packages", Logger(), controllers.CreateClientPackage)
	api.PUT("/packages/:id", Logger(), controllers.UpdateClientPackage)
	api.POST("/packages/:id/activate", Logger(), controllers.ActivateClientPackage)
	api.DELETE("/packages/:id", Logger(), controllers.DeleteClientPackage)

	// Serviços recorrentes
	api.GET("/recurring", Logger(), controllers.GetRecurringServices)
	api.GET("/recurring/:id", Logger(), controllers.GetRecurringServiceByID)
	api.POST("/recurring", Logger(), controllers.CreateRecurringService)
	api.PUT("/recurring/:id", Logger(), controllers.UpdateRecurringService)
	api.DELETE("/recurring/:id", Logger(), controllers.DeleteRecurringService)
	api.POST("/recurring/:id/execute", Logger(), controllers.ExecuteRecurringService)
	api.GET("/recurring/:id/logs", Logger(), controllers.GetRecurringServiceLogs)
	api.DELETE("/recurring-logs/:logId", Logger(), controllers.DeleteRecurringServiceLog)

	// Relatórios
	api.GET("/reports/commission", Logger(), controllers.GetCommissionReport)
	api.GET("/reports/financial-summary", Logger(), controllers.GetFinancialSummary)

	// Configuração financeira
	api.GET("/config/financial", Logger(), controllers.GetFinancialConfig)
	api.PUT("/config/financial", Logger(), controllers.UpdateFinancialConfig)

	log.Info("Routes initialized")
}
