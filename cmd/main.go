package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/wizlab/line-ai-bridge/internal/admin"
	"github.com/wizlab/line-ai-bridge/internal/config"
	"github.com/wizlab/line-ai-bridge/internal/lineapi"
	"github.com/wizlab/line-ai-bridge/internal/logging"
	"github.com/wizlab/line-ai-bridge/internal/makkaizou"
	"github.com/wizlab/line-ai-bridge/internal/store"
	"github.com/wizlab/line-ai-bridge/internal/talk"
	"github.com/wizlab/line-ai-bridge/internal/webhook"
)

func main() {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	// --- DB ---
	db, err := store.Open(dsn)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	// --- Router ---
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Line-Signature"},
	}))

	// --- Module wiring ---
	cfg := config.NewRepo(db)
	logger := logging.New(logging.NewRepo(db), cfg)

	talkManager := talk.NewManager(talk.NewRepo(db), logger)
	lineClient := lineapi.NewClient(cfg, logger)
	aiClient := makkaizou.NewClient(cfg, logger)

	webhookService := webhook.NewService(cfg, talkManager, aiClient, lineClient, logger)
	webhookHandler := webhook.NewHandler(webhookService, cfg, logger)
	webhook.RegisterRoutes(r, webhookHandler)

	adminHandler := admin.NewHandler(cfg, lineClient, aiClient, talkManager)
	admin.RegisterRoutes(r, adminHandler)

	// --- health ---
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	log.Printf("listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
