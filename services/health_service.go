package services

import (
	"context"
	"runtime"
	"time"

	"github.com/MonkyMars/gecho"
)

var uptimeStart time.Time

func init() {
	uptimeStart = time.Now()
}

type serverHealthStatus struct {
	Uptime       float64   `json:"uptime"`        // in seconds
	CurrentTime  time.Time `json:"current_time"`  // server current time
	ServiceAlive bool      `json:"service_alive"` // always true if service is running
	RamStats     *RamStats `json:"ram_stats"`
}

type RamStats struct {
	TotalMB     uint64 `json:"total_mb"`
	UsedMB      uint64 `json:"used_mb"`
	FreeMB      uint64 `json:"free_mb"`
	UsedPercent uint64 `json:"used_percent"`
}

type backendHealthStatus struct {
	Reachable      bool      `json:"reachable"`
	LastChecked    time.Time `json:"last_checked"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	OrdersLoaded   bool      `json:"orders_loaded"`
	CatalogLoaded  bool      `json:"catalog_loaded"`
}

type HealthService struct {
	logger  *gecho.Logger
	backend Pinger
	catalog *CatalogService
	orders  *OrderService
	status  serverHealthStatus
}

func NewHealthService(logger *gecho.Logger, backend Pinger, catalog *CatalogService, orders *OrderService) *HealthService {
	return &HealthService{
		logger:  logger,
		backend: backend,
		catalog: catalog,
		orders:  orders,
		status: serverHealthStatus{
			Uptime:       0,
			CurrentTime:  time.Now(),
			ServiceAlive: true,
			RamStats:     getRamStats(),
		},
	}
}

func getRamStats() *RamStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	totalMB := m.Sys / 1024 / 1024
	usedMB := m.Alloc / 1024 / 1024
	freeMB := totalMB - usedMB
	usedPercent := uint64(0)
	if totalMB > 0 {
		usedPercent = (usedMB * 100) / totalMB
	}

	return &RamStats{
		TotalMB:     totalMB,
		UsedMB:      usedMB,
		FreeMB:      freeMB,
		UsedPercent: usedPercent,
	}
}

func (hs *HealthService) GetServerHealthStatus() serverHealthStatus {
	hs.status.Uptime = time.Since(uptimeStart).Seconds()
	hs.status.CurrentTime = time.Now()
	hs.status.RamStats = getRamStats()
	return hs.status
}

func (hs *HealthService) GetBackendHealthStatus(ctx context.Context) (backendHealthStatus, error) {
	elapsed, err := hs.backend.Ping(ctx)

	status := backendHealthStatus{
		Reachable:      err == nil,
		LastChecked:    time.Now(),
		ResponseTimeMs: elapsed.Milliseconds(),
	}
	if hs.catalog != nil {
		status.CatalogLoaded = hs.catalog.Loaded()
	}
	if hs.orders != nil {
		status.OrdersLoaded = hs.orders.Loaded()
	}

	if err != nil {
		hs.logger.Error("Backend health check failed", gecho.Field("error", err))
	}
	return status, err
}
