package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lukev/elpres/internal/config"
	"github.com/lukev/elpres/internal/coordinator"
	"github.com/lukev/elpres/internal/httpapi"
	"github.com/lukev/elpres/internal/persistence"
	"github.com/lukev/elpres/internal/transport"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	store := persistence.New(cfg.DataDir)
	registry := coordinator.NewRegistry(store, cfg.Timing)

	hub := transport.NewHub()
	go hub.Run()

	joinHandler := httpapi.NewJoinHandler(registry, cfg.StaticDir)

	router := mux.NewRouter()
	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		transport.ServeWs(hub, registry, w, r)
	})
	joinHandler.RegisterRoutes(router)
	router.Use(corsMiddleware)

	log.Printf("elpres server starting on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
