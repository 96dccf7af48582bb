package i18n

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

const DefaultNamespace = "common"

var (
	keyPattern       = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)*$`)
	namespacePattern = regexp.MustCompile(`^[a-z0-9_-]{1,50}$`)
)

// Translation is a single UI string in one language
type Translation struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	LanguageCode string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_translation_key,priority:1"`
	Namespace    string    `gorm:"type:varchar(50);not null;default:'common';uniqueIndex:idx_translation_key,priority:2"`
	Key          string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_translation_key,priority:3"`
	Value        string    `gorm:"type:text;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (Translation) TableName() string {
	return "translations"
}

// NewTranslation validates and builds a translation entry
func NewTranslation(languageCode, namespace, key, value string) (*Translation, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if len(value) > 10000 {
		return nil, shared.NewDomainError("INVALID_VALUE", "Translation value cannot exceed 10000 characters")
	}
	now := time.Now()
	return &Translation{
		ID:           uuid.New(),
		LanguageCode: languageCode,
		Namespace:    namespace,
		Key:          key,
		Value:        value,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateKey checks a dotted translation key such as "checkout.button.pay"
func ValidateKey(key string) error {
	if key == "" || len(key) > 200 || !keyPattern.MatchString(key) {
		return shared.NewDomainError("INVALID_KEY", "Translation key must be dot separated segments of letters, digits, '_' or '-'")
	}
	return nil
}

// ValidateNamespace checks a namespace name
func ValidateNamespace(ns string) error {
	if !namespacePattern.MatchString(ns) {
		return shared.NewDomainError("INVALID_NAMESPACE", "Namespace must be 1-50 lowercase letters, digits, '_' or '-'")
	}
	return nil
}

// Nest turns flat dotted keys into a nested object.
// When a key is both a leaf and a prefix ("a" and "a.b") the nested object wins.
func Nest(flat map[string]string) map[string]interface{} {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	// shorter keys first so deeper keys can replace leaves
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})

	root := map[string]interface{}{}
	for _, k := range keys {
		parts := strings.Split(k, ".")
		node := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]interface{})
			if !ok {
				child = map[string]interface{}{}
				node[p] = child
			}
			node = child
		}
		last := parts[len(parts)-1]
		if _, isObj := node[last].(map[string]interface{}); isObj {
			continue
		}
		node[last] = flat[k]
	}
	return root
}

// Flatten is the inverse of Nest. Non-string leaves are skipped.
func Flatten(nested map[string]interface{}) map[string]string {
	out := map[string]string{}
	var walk func(prefix string, v interface{})
	walk = func(prefix string, v interface{}) {
		switch t := v.(type) {
		case map[string]interface{}:
			for k, child := range t {
				key := k
				if prefix != "" {
					key = prefix + "." + k
				}
				walk(key, child)
			}
		case string:
			if prefix != "" {
				out[prefix] = t
			}
		}
	}
	walk("", nested)
	return out
}
