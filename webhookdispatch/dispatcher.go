// Package webhookdispatch converts persisted domain-event artifacts into
// at-least-once, signed outbound HTTP deliveries to every active webhook
// subscribed to the artifact's trigger.
package webhookdispatch

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/config"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/identity/webhook"
	"github.com/lepista-tech/mycelium/storage/interfaces"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// retryableStatus reports whether an HTTP status code should be retried
// rather than treated as a terminal per-subscriber failure.
func retryableStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooEarly || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500
}

// Dispatcher runs a bounded worker pool that polls for due artifacts,
// fans each out to its subscribers, and records the outcome.
type Dispatcher struct {
	artifacts     interfaces.ArtifactRepository
	hookResponses interfaces.HookResponseRepository
	webhooks      webhook.ServiceInterface
	httpClient    *http.Client
	cfg           config.WebhookConfig
	logger        *zap.Logger

	limitersMu sync.Mutex
	limiters   map[uuid.UUID]*rate.Limiter
}

// NewDispatcher creates a new webhook dispatcher.
func NewDispatcher(
	artifacts interfaces.ArtifactRepository,
	hookResponses interfaces.HookResponseRepository,
	webhooks webhook.ServiceInterface,
	cfg config.WebhookConfig,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		artifacts:     artifacts,
		hookResponses: hookResponses,
		webhooks:      webhooks,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		cfg:           cfg,
		logger:        logger,
		limiters:      make(map[uuid.UUID]*rate.Limiter),
	}
}

// RegisterExecutionEvent persists a pending artifact and returns its
// correspondence id. The background worker pool drains it asynchronously.
func (d *Dispatcher) RegisterExecutionEvent(ctx context.Context, trigger models.Trigger, body []byte) (uuid.UUID, error) {
	artifact := &models.WebHookPayloadArtifact{
		ID:            uuid.New(),
		Trigger:       trigger,
		Body:          body,
		Status:        models.ArtifactStatus{Kind: models.ArtifactPending},
		NextAttemptAt: time.Now(),
		CreatedAt:     time.Now(),
	}
	if err := d.artifacts.Create(ctx, artifact); err != nil {
		return uuid.Nil, fmt.Errorf("failed to register execution event: %w", err)
	}
	return artifact.ID, nil
}

// Run starts the worker pool and blocks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	workers := d.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			d.workerLoop(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (d *Dispatcher) workerLoop(ctx context.Context, workerID int) {
	poll := d.cfg.PollInterval
	if poll <= 0 {
		poll = 2 * time.Second
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.drainOnce(ctx, workerID)
		}
	}
}

func (d *Dispatcher) drainOnce(ctx context.Context, workerID int) {
	lease := d.cfg.LeaseDuration
	if lease <= 0 {
		lease = time.Minute
	}

	claimed, err := d.artifacts.ClaimDue(ctx, time.Now(), lease, 1)
	if err != nil {
		d.logger.Error("failed to claim due artifacts", zap.Int("worker", workerID), zap.Error(err))
		return
	}

	for _, artifact := range claimed {
		d.processArtifact(ctx, artifact)
	}
}

// processArtifact delivers one artifact to every active subscriber of its
// trigger, then settles its terminal status.
func (d *Dispatcher) processArtifact(ctx context.Context, artifact *models.WebHookPayloadArtifact) {
	subscribers, err := d.webhooks.List(ctx, &interfaces.WebhookFilters{
		Trigger:  &artifact.Trigger,
		IsActive: boolPtr(true),
		Page:     1,
		PageSize: 100,
	})
	if err != nil {
		d.logger.Error("failed to list webhook subscribers", zap.Error(err))
		d.rescheduleOrFail(ctx, artifact, "failed to list subscribers: "+err.Error())
		return
	}

	if len(subscribers) == 0 {
		artifact.Status = models.ArtifactStatus{Kind: models.ArtifactSucceeded}
		_ = d.artifacts.Update(ctx, artifact)
		return
	}

	allSucceeded := true
	var lastReason string
	var lastStatus *int

	for _, subscriber := range subscribers {
		succeeded, statusCode, reason := d.deliverOne(ctx, artifact, subscriber)
		if !succeeded {
			allSucceeded = false
			lastReason = reason
			lastStatus = statusCode
		}
	}

	if allSucceeded {
		artifact.Status = models.ArtifactStatus{Kind: models.ArtifactSucceeded}
		_ = d.artifacts.Update(ctx, artifact)
		return
	}

	d.rescheduleOrFailWithStatus(ctx, artifact, lastReason, lastStatus)
}

// deliverOne sends one HTTP POST to one subscriber and records the
// outcome as a HookResponse. It returns whether this attempt succeeded.
func (d *Dispatcher) deliverOne(ctx context.Context, artifact *models.WebHookPayloadArtifact, subscriber *models.WebHook) (bool, *int, string) {
	d.limiterFor(subscriber.ID).Wait(ctx)

	resp := &models.HookResponse{
		ID:            uuid.New(),
		ArtifactID:    artifact.ID,
		WebHookID:     subscriber.ID,
		AttemptNumber: artifact.Attempts + 1,
		AttemptedAt:   time.Now(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, subscriber.TargetURL, bytes.NewReader(artifact.Body))
	if err != nil {
		resp.Error = err.Error()
		_ = d.hookResponses.Create(ctx, resp)
		return false, nil, err.Error()
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-mycelium-correspondence-id", artifact.ID.String())
	req.Header.Set("x-mycelium-trigger", string(artifact.Trigger))

	if subscriber.HasSecret() {
		secret, err := d.webhooks.RevealSecret(ctx, subscriber)
		if err == nil {
			req.Header.Set("x-mycelium-signature", sign(artifact.Body, secret))
		}
	}

	httpResp, err := d.httpClient.Do(req)
	if err != nil {
		resp.Error = err.Error()
		_ = d.hookResponses.Create(ctx, resp)
		return false, nil, err.Error()
	}
	defer httpResp.Body.Close()
	_, _ = io.Copy(io.Discard, httpResp.Body)

	resp.StatusCode = &httpResp.StatusCode
	resp.Succeeded = httpResp.StatusCode >= 200 && httpResp.StatusCode < 300
	_ = d.hookResponses.Create(ctx, resp)

	if resp.Succeeded {
		return true, &httpResp.StatusCode, ""
	}
	if !retryableStatus(httpResp.StatusCode) {
		// terminal per-subscriber failure: reported but not retried further
		return false, &httpResp.StatusCode, fmt.Sprintf("subscriber %s rejected with terminal status %d", subscriber.ID, httpResp.StatusCode)
	}
	return false, &httpResp.StatusCode, fmt.Sprintf("subscriber %s returned retryable status %d", subscriber.ID, httpResp.StatusCode)
}

// rescheduleOrFail retries without a known HTTP status (e.g. a listing error).
func (d *Dispatcher) rescheduleOrFail(ctx context.Context, artifact *models.WebHookPayloadArtifact, reason string) {
	d.rescheduleOrFailWithStatus(ctx, artifact, reason, nil)
}

func (d *Dispatcher) rescheduleOrFailWithStatus(ctx context.Context, artifact *models.WebHookPayloadArtifact, reason string, lastStatus *int) {
	artifact.Attempts++
	maxAttempts := d.cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 10
	}

	if artifact.Attempts >= maxAttempts {
		artifact.Status = models.ArtifactStatus{Kind: models.ArtifactFailed, LastStatus: lastStatus, LastReason: reason}
		artifact.LeaseExpiresAt = nil
		_ = d.artifacts.Update(ctx, artifact)
		return
	}

	artifact.Status = models.ArtifactStatus{Kind: models.ArtifactPending}
	artifact.NextAttemptAt = time.Now().Add(d.backoff(artifact.Attempts))
	artifact.LeaseExpiresAt = nil
	_ = d.artifacts.Update(ctx, artifact)
}

// backoff computes the exponential-with-jitter retry delay:
// delay = min(cap, base * 2^attempts) * (0.5 + rand*0.5).
func (d *Dispatcher) backoff(attempts int) time.Duration {
	base := d.cfg.BaseBackoff
	if base <= 0 {
		base = time.Second
	}
	cap := d.cfg.CapBackoff
	if cap <= 0 {
		cap = 5 * time.Minute
	}

	delay := base * time.Duration(1<<uint(attempts))
	if delay > cap || delay <= 0 {
		delay = cap
	}

	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(float64(delay) * jitter)
}

// limiterFor returns (creating if needed) a per-subscriber token bucket
// guarding outbound send rate.
func (d *Dispatcher) limiterFor(webhookID uuid.UUID) *rate.Limiter {
	d.limitersMu.Lock()
	defer d.limitersMu.Unlock()

	if l, ok := d.limiters[webhookID]; ok {
		return l
	}

	rps := d.cfg.SendRateLimit
	if rps <= 0 {
		rps = 5
	}
	l := rate.NewLimiter(rate.Limit(rps), 1)
	d.limiters[webhookID] = l
	return l
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func boolPtr(b bool) *bool { return &b }
