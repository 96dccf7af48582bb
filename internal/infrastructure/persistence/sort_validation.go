package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a safe ORDER BY clause from a filter's sort options
func orderClause(orderBy, orderDir string, allowed map[string]bool, defaultField string) string {
	return ValidateSortField(orderBy, allowed, defaultField) + " " + ValidateSortOrder(orderDir)
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"sku":            true,
	"name":           true,
	"price":          true,
	"stock":          true,
	"status":         true,
	"rating_average": true,
	"review_count":   true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"order_number":   true,
	"total":          true,
	"status":         true,
	"payment_status": true,
	"customer_email": true,
}

// AdminUserSortFields contains allowed sort fields for admin users
var AdminUserSortFields = map[string]bool{
	"created_at":    true,
	"email":         true,
	"name":          true,
	"role":          true,
	"last_login_at": true,
}

// APIKeySortFields contains allowed sort fields for API keys
var APIKeySortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"provider":     true,
	"last_used_at": true,
}

// TranslationSortFields contains allowed sort fields for translations
var TranslationSortFields = map[string]bool{
	"key":        true,
	"namespace":  true,
	"updated_at": true,
}

// PageSortFields contains allowed sort fields for CMS pages
var PageSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"title":        true,
	"slug":         true,
	"status":       true,
	"published_at": true,
}

// MediaSortFields contains allowed sort fields for media assets
var MediaSortFields = map[string]bool{
	"created_at": true,
	"file_name":  true,
	"size":       true,
}

// ReviewSortFields contains allowed sort fields for reviews
var ReviewSortFields = map[string]bool{
	"created_at":   true,
	"rating":       true,
	"status":       true,
	"moderated_at": true,
}
