package i18n

import (
	"strings"
	"time"

	"github.com/shopfront/backend/internal/domain/shared"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Direction is the text direction of a language
type Direction string

const (
	DirectionLTR Direction = "ltr"
	DirectionRTL Direction = "rtl"
)

var rtlBases = map[string]bool{"ar": true, "he": true, "fa": true, "ur": true, "yi": true, "ps": true}

// Language is a locale the storefront can be served in
type Language struct {
	shared.BaseAggregateRoot
	Code       string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name       string    `gorm:"type:varchar(100);not null"`
	NativeName string    `gorm:"type:varchar(100);not null"`
	Direction  Direction `gorm:"type:varchar(3);not null;default:'ltr'"`
	Active     bool      `gorm:"not null;default:true"`
	IsDefault  bool      `gorm:"not null;default:false"`
	SortOrder  int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Language) TableName() string {
	return "languages"
}

// CanonicalCode parses a BCP 47 tag and returns its canonical form ("pt-br" -> "pt-BR")
func CanonicalCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", shared.NewDomainError("INVALID_LANGUAGE", "Language code cannot be empty")
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", shared.NewDomainError("INVALID_LANGUAGE", "Language code is not a valid BCP 47 tag")
	}
	return tag.String(), nil
}

// NewLanguage validates code and derives the missing display attributes from it
func NewLanguage(code, name, nativeName string) (*Language, error) {
	canonical, err := CanonicalCode(code)
	if err != nil {
		return nil, err
	}
	tag := language.MustParse(canonical)

	if strings.TrimSpace(name) == "" {
		name = display.English.Tags().Name(tag)
	}
	if strings.TrimSpace(nativeName) == "" {
		nativeName = display.Self.Name(tag)
	}
	if name == "" {
		name = canonical
	}
	if nativeName == "" {
		nativeName = name
	}
	if len(name) > 100 || len(nativeName) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Language name cannot exceed 100 characters")
	}

	l := &Language{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              canonical,
		Name:              strings.TrimSpace(name),
		NativeName:        strings.TrimSpace(nativeName),
		Direction:         directionOf(tag),
		Active:            true,
	}
	return l, nil
}

// Update changes display attributes
func (l *Language) Update(name, nativeName string, direction Direction, sortOrder int) error {
	if strings.TrimSpace(name) == "" || len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Language name is required and cannot exceed 100 characters")
	}
	if nativeName != "" {
		l.NativeName = strings.TrimSpace(nativeName)
	}
	if direction != "" {
		if direction != DirectionLTR && direction != DirectionRTL {
			return shared.NewDomainError("INVALID_DIRECTION", "Direction must be ltr or rtl")
		}
		l.Direction = direction
	}
	l.Name = strings.TrimSpace(name)
	l.SortOrder = sortOrder
	l.touch()
	return nil
}

// Activate makes the language selectable on the storefront
func (l *Language) Activate() {
	l.Active = true
	l.touch()
}

// Deactivate hides the language. The default language cannot be deactivated.
func (l *Language) Deactivate() error {
	if l.IsDefault {
		return shared.NewDomainError("DEFAULT_LANGUAGE", "The default language cannot be deactivated")
	}
	l.Active = false
	l.touch()
	return nil
}

// MarkDefault flags the language as the store default
func (l *Language) MarkDefault() error {
	if !l.Active {
		return shared.NewDomainError("INVALID_STATE", "Only an active language can become the default")
	}
	l.IsDefault = true
	l.touch()
	return nil
}

// CanDelete reports whether the language may be removed
func (l *Language) CanDelete() error {
	if l.IsDefault {
		return shared.NewDomainError("DEFAULT_LANGUAGE", "The default language cannot be deleted")
	}
	return nil
}

func (l *Language) touch() {
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
}

func directionOf(tag language.Tag) Direction {
	base, _ := tag.Base()
	if rtlBases[base.String()] {
		return DirectionRTL
	}
	return DirectionLTR
}
