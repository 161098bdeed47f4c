package handler

import (
	"context"

	"github.com/redis/go-redis/v9"

	"tunemate/backend/internal/catalog"
	"tunemate/backend/internal/config"
	"tunemate/backend/internal/matchhub"
	"tunemate/backend/internal/storage"
)

// Handler carries the HTTP surface's dependencies: the match hub for
// WebSocket clients, the store for profiles and matches, the catalog client
// with its Redis response cache.
type Handler struct {
	Hub     *matchhub.ManagerService
	Storage storage.Storage
	Catalog *catalog.Client
	Cache   *redis.Client
	Config  config.Config

	ctx context.Context
}

func NewHandler(hub *matchhub.ManagerService, s storage.Storage, cat *catalog.Client, cache *redis.Client, cfg config.Config) *Handler {
	return &Handler{
		Hub:     hub,
		Storage: s,
		Catalog: cat,
		Cache:   cache,
		Config:  cfg,
		ctx:     context.Background(),
	}
}
