package i18n

import (
	"context"

	"github.com/shopfront/backend/internal/domain/i18n"
)

// TransactionScope runs language changes that touch several rows atomically.
// If fn returns an error the transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories bound to the
// current transaction.
type TransactionalRepositories interface {
	Languages() i18n.LanguageRepository
	Translations() i18n.TranslationRepository
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
type NoOpTransactionScope struct {
	languages    i18n.LanguageRepository
	translations i18n.TranslationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(languages i18n.LanguageRepository, translations i18n.TranslationRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{languages: languages, translations: translations}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Languages returns the language repository
func (s *NoOpTransactionScope) Languages() i18n.LanguageRepository {
	return s.languages
}

// Translations returns the translation repository
func (s *NoOpTransactionScope) Translations() i18n.TranslationRepository {
	return s.translations
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
