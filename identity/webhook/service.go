package webhook

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/security/encryption"
	"github.com/lepista-tech/mycelium/storage/interfaces"
)

// Service provides webhook subscriber CRUD, encrypting the signing secret
// at rest with an AEAD encryptor.
type Service struct {
	repo      interfaces.WebhookRepository
	encryptor *encryption.Encryptor
}

// NewService creates a new webhook service.
func NewService(repo interfaces.WebhookRepository, encryptor *encryption.Encryptor) *Service {
	return &Service{repo: repo, encryptor: encryptor}
}

// Create registers a new webhook subscriber.
func (s *Service) Create(ctx context.Context, req *CreateWebhookRequest) (*models.WebHook, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}
	if req.TargetURL == "" {
		return nil, fmt.Errorf("target_url cannot be empty")
	}

	encryptedSecret, err := s.encryptor.EncryptBytes(req.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt secret: %w", err)
	}

	w := &models.WebHook{
		ID:              uuid.New(),
		Name:            name,
		Description:     req.Description,
		TargetURL:       req.TargetURL,
		Trigger:         req.Trigger,
		IsActive:        req.IsActive,
		EncryptedSecret: encryptedSecret,
	}

	if err := s.repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to create webhook: %w", err)
	}

	return w, nil
}

// GetByID retrieves a webhook by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.WebHook, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("webhook not found: %w", err)
	}
	return w, nil
}

// Update updates a webhook subscriber's fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateWebhookRequest) (*models.WebHook, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("webhook not found: %w", err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		w.Name = name
	}
	if req.Description != nil {
		w.Description = req.Description
	}
	if req.TargetURL != nil {
		w.TargetURL = *req.TargetURL
	}
	if req.Trigger != nil {
		w.Trigger = *req.Trigger
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}
	if req.Secret != nil {
		encryptedSecret, err := s.encryptor.EncryptBytes(*req.Secret)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt secret: %w", err)
		}
		w.EncryptedSecret = encryptedSecret
	}

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to update webhook: %w", err)
	}
	return w, nil
}

// Delete removes a webhook subscriber.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// List retrieves webhook subscribers with filters.
func (s *Service) List(ctx context.Context, filters *interfaces.WebhookFilters) ([]*models.WebHook, error) {
	webhooks, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	return webhooks, nil
}

// RevealSecret decrypts the webhook's signing secret for the dispatcher's
// outbound HMAC signature. Every other caller should read
// models.RedactedSecret instead of invoking this.
func (s *Service) RevealSecret(ctx context.Context, w *models.WebHook) (string, error) {
	if !w.HasSecret() {
		return "", fmt.Errorf("webhook %s has no signing secret", w.ID)
	}
	return s.encryptor.DecryptBytes(w.EncryptedSecret)
}
