package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// CustomerService handles storefront accounts and their tokens
type CustomerService struct {
	customerRepo   identity.CustomerRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCustomerService creates a new CustomerService. blacklist and eventPublisher may be nil.
func NewCustomerService(
	customerRepo identity.CustomerRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo:   customerRepo,
		jwtService:     jwtService,
		blacklist:      blacklist,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Register creates an account and signs the customer in
func (s *CustomerService) Register(ctx context.Context, req RegisterCustomerRequest) (*CustomerLoginResult, error) {
	email := identity.NormalizeEmail(req.Email)
	exists, err := s.customerRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	customer, err := identity.NewCustomer(email, req.Name, req.Password)
	if err != nil {
		return nil, err
	}
	customer.RecordLogin()
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, customer.GetDomainEvents()...); err != nil {
			s.logger.Warn("Failed to publish customer events", zap.Error(err))
		}
	}
	customer.ClearDomainEvents()

	s.logger.Info("Customer registered", zap.String("customer_id", customer.ID.String()))
	return s.issue(customer)
}

// Login authenticates a customer
func (s *CustomerService) Login(ctx context.Context, input LoginInput) (*CustomerLoginResult, error) {
	customer, err := s.customerRepo.FindByEmail(ctx, identity.NormalizeEmail(input.Email))
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, err
	}
	if !customer.VerifyPassword(input.Password) {
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !customer.Active {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	customer.RecordLogin()
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		s.logger.Error("Failed to record customer login", zap.Error(err))
	}
	return s.issue(customer)
}

// RefreshToken rotates a customer refresh token
func (s *CustomerService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*TokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}
	if !claims.HasScope(auth.ScopeCustomer) {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	if err := checkNotRevoked(ctx, s.blacklist, claims); err != nil {
		return nil, err
	}

	id, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !customer.Active {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	pair, _, err := s.jwtService.RefreshTokenPair(input.RefreshToken, "")
	if err != nil {
		return nil, mapTokenError(err)
	}
	revokeRefreshToken(ctx, s.blacklist, claims, s.logger)

	result := toTokenResult(pair)
	return &result, nil
}

// Logout blacklists the presented access token
func (s *CustomerService) Logout(ctx context.Context, input LogoutInput) error {
	if s.blacklist == nil || input.TokenJTI == "" {
		return nil
	}
	return s.blacklist.Revoke(ctx, input.TokenJTI, input.ExpiresIn)
}

// Me returns the customer's profile
func (s *CustomerService) Me(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// UpdateProfile changes name and phone
func (s *CustomerService) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := customer.UpdateProfile(req.Name, req.Phone); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

func (s *CustomerService) issue(customer *identity.Customer) (*CustomerLoginResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: customer.ID,
		Email:  customer.Email,
		Scope:  auth.ScopeCustomer,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return &CustomerLoginResult{
		TokenResult: toTokenResult(pair),
		Customer:    ToCustomerResponse(customer),
	}, nil
}
