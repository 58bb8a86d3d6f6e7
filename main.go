package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"pontocom/config"
	dbpkg "pontocom/db"
	"pontocom/router"
	"pontocom/workers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// .env é opcional: em produção as variáveis vêm do ambiente.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg := config.Get(configPath)

	setupLogging(cfg.LogPath)

	dbpkg.SetConfigurations(cfg)
	database, err := dbpkg.Connect()
	if err != nil {
		log.WithError(err).Fatal("falha ao conectar no banco")
	}
	defer database.Close()

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(database))
	router.Initialize(r, cfg)

	if cfg.Recurring.Enabled {
		interval := time.Duration(cfg.Recurring.IntervalMinutes) * time.Minute
		workers.StartRecurringProcessor(database, interval)
	}

	log.WithField("port", cfg.ApiPort).Info("Pontocom CRM no ar")
	if err := r.Run(":" + cfg.ApiPort); err != nil {
		log.WithError(err).Fatal("servidor encerrou com erro")
	}
}

func setupLogging(logPath string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if logPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		log.WithError(err).Warn("não foi possível criar o diretório de logs")
		return
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.WithError(err).Warn("não foi possível abrir o arquivo de log")
		return
	}
	log.SetOutput(io.MultiWriter(os.Stdout, file))
}
