// Package health is the Health Dispatcher (spec.md §4.6): a periodic task
// that probes every downstream host and writes liveness back through the
// Registry it shares by reference with the Gateway Router.
package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/config"
	"github.com/lepista-tech/mycelium/gateway/registry"
	"github.com/lepista-tech/mycelium/identity/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RegistryWriter is the subset of *registry.Registry the dispatcher needs,
// narrowed so it can be faked in tests.
type RegistryWriter interface {
	AllServiceHosts() []registry.ServiceHost
	Service(id uuid.UUID) (*models.Service, bool)
	UpdateHostHealth(serviceID uuid.UUID, hostIndex int, health models.HealthStatus) error
}

// Dispatcher periodically probes every (service, host) pair. max_instances
// (spec.md §5, Open Question #2) bounds the number of probes in flight at
// once across the whole fleet, not per service — a semaphore-sized worker
// pool over the flattened host list, rather than one goroutine per
// service.
type Dispatcher struct {
	registry RegistryWriter
	client   *http.Client
	cfg      config.GatewayConfig
	logger   *zap.Logger
	limiter  *rate.Limiter
}

// NewDispatcher builds a Health Dispatcher bound to reg.
func NewDispatcher(reg RegistryWriter, cfg config.GatewayConfig, logger *zap.Logger) *Dispatcher {
	rps := cfg.ProbeRatePerSecond
	if rps <= 0 {
		rps = 10
	}
	return &Dispatcher{
		registry: reg,
		client:   &http.Client{Timeout: cfg.HealthCheckTimeout},
		cfg:      cfg,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Run blocks, issuing one probe round every HealthCheckInterval until ctx
// is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	interval := d.cfg.HealthCheckInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.probeRound(ctx)
		}
	}
}

// probeRound runs one pass over every (service, host) pair, capping
// outstanding concurrent probes at MaxInstances.
func (d *Dispatcher) probeRound(ctx context.Context) {
	targets := d.registry.AllServiceHosts()
	if len(targets) == 0 {
		return
	}

	maxInstances := d.cfg.MaxInstances
	if maxInstances <= 0 {
		maxInstances = 8
	}
	sem := make(chan struct{}, maxInstances)
	var wg sync.WaitGroup

	for _, target := range targets {
		select {
		case <-ctx.Done():
			return
		default:
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(t registry.ServiceHost) {
			defer wg.Done()
			defer func() { <-sem }()
			d.probeOne(ctx, t)
		}(target)
	}
	wg.Wait()
}

// probeOne issues a single GET and writes the resulting health status
// through the Registry. The writer lock is only ever held inside
// UpdateHostHealth, never across the HTTP round trip.
func (d *Dispatcher) probeOne(ctx context.Context, target registry.ServiceHost) {
	svc, ok := d.registry.Service(target.ServiceID)
	if !ok || target.HostIndex >= len(svc.Hosts) {
		return
	}
	host := svc.Hosts[target.HostIndex]

	if err := d.limiter.Wait(ctx); err != nil {
		return
	}

	ok, reason := d.probe(ctx, svc, host)

	next := nextHealthStatus(host.Health, ok, reason, d.maxRetryCount())
	if next.Kind == host.Health.Kind && next.ConsecutiveFailures == host.Health.ConsecutiveFailures {
		return
	}
	if err := d.registry.UpdateHostHealth(target.ServiceID, target.HostIndex, next); err != nil && d.logger != nil {
		d.logger.Warn("health dispatcher: failed to write health status", zap.Error(err))
	}
	if d.logger != nil && next.Kind != host.Health.Kind {
		d.logger.Info("health status changed",
			zap.String("service", svc.Name),
			zap.String("host", host.Address),
			zap.String("status", string(next.Kind)),
		)
	}
}

func (d *Dispatcher) maxRetryCount() int {
	if d.cfg.MaxRetryCount <= 0 {
		return 3
	}
	return d.cfg.MaxRetryCount
}

// probe issues the GET protocol://host/health-check-path request.
func (d *Dispatcher) probe(ctx context.Context, svc *models.Service, host models.Host) (bool, string) {
	url := fmt.Sprintf("%s://%s%s", svc.Protocol, host.Address, svc.HealthCheckPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err.Error()
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return false, err.Error()
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return true, ""
	}
	return false, fmt.Sprintf("unhealthy status %d", resp.StatusCode)
}

// nextHealthStatus applies the flip rules: first success clears failures
// and flips to Healthy; a failure increments the counter and only flips
// to Unhealthy once maxRetryCount consecutive failures are reached.
func nextHealthStatus(current models.HealthStatus, success bool, reason string, maxRetryCount int) models.HealthStatus {
	now := time.Now()
	if success {
		return models.HealthStatus{Kind: models.HealthHealthy, Since: &now, ConsecutiveFailures: 0}
	}

	failures := current.ConsecutiveFailures + 1
	if failures >= maxRetryCount {
		return models.HealthStatus{Kind: models.HealthUnhealthy, Since: &now, Reason: reason, ConsecutiveFailures: failures}
	}
	// Not enough consecutive failures yet to flip; keep the prior Kind but
	// record the growing failure streak.
	return models.HealthStatus{Kind: current.Kind, Since: current.Since, Reason: reason, ConsecutiveFailures: failures}
}
