package cms

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/tidwall/gjson"
)

// BlockType is the kind of content block rendered on a page
type BlockType string

const (
	BlockHero         BlockType = "hero"
	BlockFeatures     BlockType = "features"
	BlockFAQ          BlockType = "faq"
	BlockTestimonials BlockType = "testimonials"
	BlockCTA          BlockType = "cta"
	BlockText         BlockType = "text"
	BlockGallery      BlockType = "gallery"
	BlockPricing      BlockType = "pricing"
	BlockNewsletter   BlockType = "newsletter"
	BlockProductGrid  BlockType = "product_grid"
)

// MaxBlockContentSize caps the encoded size of a block's content
const MaxBlockContentSize = 64 * 1024

// requiredPaths lists gjson paths that must be present per block type
var requiredPaths = map[BlockType][]string{
	BlockHero:         {"title"},
	BlockFeatures:     {"items"},
	BlockFAQ:          {"items"},
	BlockTestimonials: {"items"},
	BlockCTA:          {"label", "link"},
	BlockText:         {"body"},
	BlockGallery:      {"images"},
	BlockPricing:      {"plans"},
	BlockNewsletter:   {"title"},
	BlockProductGrid:  {"product_ids"},
}

// IsValid reports whether t is a known block type
func (t BlockType) IsValid() bool {
	_, ok := requiredPaths[t]
	return ok
}

// Block is a typed piece of page content
type Block struct {
	shared.BaseEntity
	PageID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Type     BlockType      `gorm:"type:varchar(30);not null"`
	Position int            `gorm:"not null;default:0"`
	Content  shared.JSONMap `gorm:"type:jsonb"`
	Visible  bool           `gorm:"not null;default:true"`
	// SourceBlockID links a translated block to the base page block it was copied from
	SourceBlockID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Block) TableName() string {
	return "cms_blocks"
}

// ValidateBlockContent checks size and the fields each block type needs
func ValidateBlockContent(blockType BlockType, content map[string]interface{}) error {
	if !blockType.IsValid() {
		return shared.NewDomainError("INVALID_BLOCK_TYPE", fmt.Sprintf("Unknown block type '%s'", blockType))
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return shared.NewDomainError("INVALID_CONTENT", "Block content must be a JSON object")
	}
	if len(raw) > MaxBlockContentSize {
		return shared.NewDomainError("INVALID_CONTENT", "Block content cannot exceed 64KB")
	}
	for _, path := range requiredPaths[blockType] {
		if !gjson.GetBytes(raw, path).Exists() {
			return shared.NewDomainError("INVALID_CONTENT",
				fmt.Sprintf("Block of type '%s' requires field '%s'", blockType, path))
		}
	}

	switch blockType {
	case BlockFAQ:
		for _, item := range gjson.GetBytes(raw, "items").Array() {
			if item.Get("question").String() == "" || item.Get("answer").String() == "" {
				return shared.NewDomainError("INVALID_CONTENT", "Every FAQ item needs a question and an answer")
			}
		}
	case BlockProductGrid:
		for _, id := range gjson.GetBytes(raw, "product_ids").Array() {
			if _, err := uuid.Parse(id.String()); err != nil {
				return shared.NewDomainError("INVALID_CONTENT", "product_ids must contain product UUIDs")
			}
		}
	}
	return nil
}

func newBlock(pageID uuid.UUID, blockType BlockType, content map[string]interface{}, position int) *Block {
	return &Block{
		BaseEntity: shared.NewBaseEntity(),
		PageID:     pageID,
		Type:       blockType,
		Position:   position,
		Content:    shared.JSONMap(content).Clone(),
		Visible:    true,
	}
}

// translateTo copies the block onto a translation page, remembering its source
func (b *Block) translateTo(pageID uuid.UUID) Block {
	c := newBlock(pageID, b.Type, b.Content, b.Position)
	c.Visible = b.Visible
	source := b.ID
	c.SourceBlockID = &source
	return *c
}

func (b *Block) touch() {
	b.UpdatedAt = time.Now()
}
