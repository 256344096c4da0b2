package middleware

import (
	"shopadmin_server/structs"

	"github.com/MonkyMars/gecho"
)

type Middleware struct {
	cfg     *structs.Config
	logger  *gecho.Logger
	clients *visitorStore
}

func NewMiddleware(cfg *structs.Config, logger *gecho.Logger) *Middleware {
	return &Middleware{
		cfg:     cfg,
		logger:  logger,
		clients: newVisitorStore(cfg.RateLimit.RPS, cfg.RateLimit.Burst, visitorTTL),
	}
}
