package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"LowesMerge/internal/config"
	"LowesMerge/internal/logger"
)

type GatewayService struct {
	config   map[string]interface{}
	handlers *Handlers
	server   *http.Server
}

func NewGatewayService(cfg map[string]interface{}, h *Handlers) *GatewayService {
	if h.MaxUploadBytes == 0 {
		mb := logger.ToInt(cfg["max_upload_mb"])
		if mb <= 0 {
			mb = config.DefaultMaxUploadMB
		}
		h.MaxUploadBytes = int64(mb) << 20
	}
	return &GatewayService{config: cfg, handlers: h}
}

func (s *GatewayService) Name() string {
	return "gateway"
}

// Port is the configured listen port.
func (s *GatewayService) Port() int {
	if p := logger.ToInt(s.config["port"]); p > 0 {
		return p
	}
	return config.DefaultGatewayPort
}

func (s *GatewayService) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port()),
		Handler:           NewRouter(s.handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("API Gateway started on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Gateway server failed: %v", err)
		}
	}()
	return nil
}

func (s *GatewayService) Stop() error {
	if s.handlers.Progress != nil {
		s.handlers.Progress.Stop()
	}
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
