package apikey

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/apikey"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Actor is the admin performing an operation on a key
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  identity.AdminRole
	IP    string
}

// Service manages encrypted third-party API keys
type Service struct {
	repo           apikey.Repository
	encrypter      apikey.Encrypter
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	audit          *zap.Logger
}

// NewService creates a new API key service
func NewService(repo apikey.Repository, encrypter apikey.Encrypter, eventPublisher shared.EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:           repo,
		encrypter:      encrypter,
		eventPublisher: eventPublisher,
		logger:         logger,
		audit:          logger.Named("audit"),
	}
}

// Create encrypts and stores a new key
func (s *Service) Create(ctx context.Context, actor Actor, req CreateAPIKeyRequest) (*APIKeyResponse, error) {
	createdBy := actor.ID
	key, err := apikey.NewAPIKey(s.encrypter, req.Name, apikey.Provider(req.Provider),
		apikey.Environment(req.Environment), req.Value, req.Description, &createdBy)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, key); err != nil {
		return nil, err
	}
	s.publish(ctx, key)
	s.audit.Info("api key created", auditFields(actor, key)...)

	response := ToAPIKeyResponse(key)
	return &response, nil
}

// List returns a page of keys with masked values
func (s *Service) List(ctx context.Context, filter APIKeyListFilter) (*shared.Paginated[APIKeyResponse], error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}.Normalize(100)
	if filter.Provider != "" {
		domainFilter.Filters["provider"] = filter.Provider
	}
	if filter.Environment != "" {
		domainFilter.Filters["environment"] = filter.Environment
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	keys, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]APIKeyResponse, len(keys))
	for i := range keys {
		items[i] = ToAPIKeyResponse(&keys[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Get retrieves a key with its masked value
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*APIKeyResponse, error) {
	key, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToAPIKeyResponse(key)
	return &response, nil
}

// Update changes name, description or environment
func (s *Service) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateAPIKeyRequest) (*APIKeyResponse, error) {
	key, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name, description := key.Name, key.Description
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	var env apikey.Environment
	if req.Environment != nil {
		env = apikey.Environment(*req.Environment)
	}
	if err := key.UpdateMetadata(name, description, env); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, key); err != nil {
		return nil, err
	}
	s.audit.Info("api key updated", auditFields(actor, key)...)

	response := ToAPIKeyResponse(key)
	return &response, nil
}

// Rotate replaces the secret value. Owner and admin only.
func (s *Service) Rotate(ctx context.Context, actor Actor, id uuid.UUID, req RotateAPIKeyRequest) (*APIKeyResponse, error) {
	if err := authorizeSecrets(actor); err != nil {
		return nil, err
	}
	key, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := key.Rotate(s.encrypter, req.Value); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, key); err != nil {
		return nil, err
	}
	s.publish(ctx, key)
	s.audit.Info("api key rotated", auditFields(actor, key)...)

	response := ToAPIKeyResponse(key)
	return &response, nil
}

// Reveal decrypts the secret. Owner and admin only; every call is audit-logged.
func (s *Service) Reveal(ctx context.Context, actor Actor, id uuid.UUID) (*RevealResponse, error) {
	if err := authorizeSecrets(actor); err != nil {
		s.audit.Warn("api key reveal denied", zap.String("key_id", id.String()),
			zap.String("actor_id", actor.ID.String()), zap.String("actor_role", string(actor.Role)))
		return nil, err
	}
	key, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	value, err := key.Reveal(s.encrypter)
	if err != nil {
		s.logger.Error("Failed to decrypt API key", zap.String("key_id", id.String()), zap.Error(err))
		return nil, shared.NewDomainError("DECRYPTION_FAILED", "Stored secret could not be decrypted")
	}
	s.audit.Info("api key revealed", auditFields(actor, key)...)
	return &RevealResponse{ID: key.ID, Value: value}, nil
}

// Activate enables a key
func (s *Service) Activate(ctx context.Context, actor Actor, id uuid.UUID) (*APIKeyResponse, error) {
	return s.toggle(ctx, actor, id, (*apikey.APIKey).Activate, "api key activated")
}

// Deactivate disables a key
func (s *Service) Deactivate(ctx context.Context, actor Actor, id uuid.UUID) (*APIKeyResponse, error) {
	return s.toggle(ctx, actor, id, (*apikey.APIKey).Deactivate, "api key deactivated")
}

// Delete removes a key
func (s *Service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	key, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Info("api key deleted", auditFields(actor, key)...)
	return nil
}

// SecretFor returns the decrypted value of the active key for provider and
// environment. It is meant for internal integrations, never for responses.
func (s *Service) SecretFor(ctx context.Context, provider apikey.Provider, env apikey.Environment) (string, error) {
	key, err := s.repo.FindActive(ctx, provider, env)
	if err != nil {
		return "", err
	}
	value, err := key.Reveal(s.encrypter)
	if err != nil {
		return "", err
	}
	key.MarkUsed()
	if err := s.repo.MarkUsed(ctx, key.ID, *key.LastUsedAt); err != nil {
		s.logger.Warn("Failed to record API key use", zap.String("key_id", key.ID.String()), zap.Error(err))
	}
	return value, nil
}

func (s *Service) toggle(ctx context.Context, actor Actor, id uuid.UUID, change func(*apikey.APIKey) error, msg string) (*APIKeyResponse, error) {
	key, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(key); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, key); err != nil {
		return nil, err
	}
	s.audit.Info(msg, auditFields(actor, key)...)
	response := ToAPIKeyResponse(key)
	return &response, nil
}

func (s *Service) publish(ctx context.Context, key *apikey.APIKey) {
	events := key.GetDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish API key events", zap.Error(err))
		}
	}
	key.ClearDomainEvents()
}

func authorizeSecrets(actor Actor) error {
	if !actor.Role.CanManageSecrets() {
		return shared.NewDomainError("FORBIDDEN", "Only owners and admins can access secret values")
	}
	return nil
}

func auditFields(actor Actor, key *apikey.APIKey) []zap.Field {
	return []zap.Field{
		zap.String("key_id", key.ID.String()),
		zap.String("key_name", key.Name),
		zap.String("provider", string(key.Provider)),
		zap.String("environment", string(key.Environment)),
		zap.String("actor_id", actor.ID.String()),
		zap.String("actor_email", actor.Email),
		zap.String("ip", actor.IP),
	}
}
