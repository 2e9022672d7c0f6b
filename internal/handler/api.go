package handler

import (
	"time"

	"gorm.io/gorm"

	"github.com/draftlog/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db     *gorm.DB
	drafts *service.DraftService
	auth   *service.AuthService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, tokenTTL time.Duration) *API {
	return &API{
		db:     gdb,
		drafts: service.NewDraftService(gdb),
		auth:   service.NewAuthService(gdb, tokenTTL),
	}
}

// Auth exposes the auth service for middleware wiring.
func (a *API) Auth() *service.AuthService {
	return a.auth
}
