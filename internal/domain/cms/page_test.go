package cms

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPage(t *testing.T) *Page {
	t.Helper()
	p, err := NewPage("About Us", "", "en")
	require.NoError(t, err)
	return p
}

func TestNewPage(t *testing.T) {
	p := newTestPage(t)
	assert.Equal(t, "about-us", p.Slug)
	assert.Equal(t, PageStatusDraft, p.Status)
	assert.False(t, p.IsTranslation())
	assert.Equal(t, p.ID, p.BaseID())

	_, err := NewPage("", "x", "en")
	assert.ErrorContains(t, err, "title cannot be empty")
	_, err = NewPage("Title", "Not Valid", "en")
	assert.ErrorContains(t, err, "Slug")
	_, err = NewPage("Title", "", "")
	assert.ErrorContains(t, err, "Language code")
}

func TestPage_PublishUnpublish(t *testing.T) {
	p := newTestPage(t)
	require.NoError(t, p.Publish())
	assert.True(t, p.IsPublished())
	assert.NotNil(t, p.PublishedAt)
	assert.ErrorContains(t, p.Publish(), "already published")

	require.NoError(t, p.Unpublish())
	assert.ErrorContains(t, p.Unpublish(), "not published")

	events := p.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypePagePublished, events[0].EventType())
	assert.Equal(t, EventTypePageUnpublished, events[1].EventType())
}

func TestPage_Blocks(t *testing.T) {
	p := newTestPage(t)

	hero, err := p.AddBlock(BlockHero, map[string]interface{}{"title": "Welcome"})
	require.NoError(t, err)
	heroID := hero.ID
	text, err := p.AddBlock(BlockText, map[string]interface{}{"body": "Lorem ipsum"})
	require.NoError(t, err)
	textID := text.ID
	cta, err := p.AddBlock(BlockCTA, map[string]interface{}{"label": "Go", "link": "/go"})
	require.NoError(t, err)
	ctaID := cta.ID

	assert.Equal(t, 2, p.Blocks[2].Position)
	assert.Equal(t, p.ID, p.Blocks[0].PageID)

	t.Run("validates content", func(t *testing.T) {
		_, err := p.AddBlock(BlockHero, map[string]interface{}{"subtitle": "x"})
		assert.ErrorContains(t, err, "requires field 'title'")
		_, err = p.AddBlock(BlockType("carousel"), map[string]interface{}{})
		assert.ErrorContains(t, err, "Unknown block type")
	})

	t.Run("reorder", func(t *testing.T) {
		require.NoError(t, p.ReorderBlocks([]uuid.UUID{ctaID, heroID, textID}))
		assert.Equal(t, ctaID, p.Blocks[0].ID)
		assert.Equal(t, 0, p.Blocks[0].Position)
		assert.Equal(t, textID, p.Blocks[2].ID)

		assert.ErrorContains(t, p.ReorderBlocks([]uuid.UUID{ctaID, heroID}), "exactly once")
		assert.ErrorContains(t, p.ReorderBlocks([]uuid.UUID{ctaID, ctaID, heroID}), "more than once")
		assert.ErrorContains(t, p.ReorderBlocks([]uuid.UUID{ctaID, heroID, uuid.New()}), "does not belong")
	})

	t.Run("update and hide", func(t *testing.T) {
		b, err := p.UpdateBlock(textID, map[string]interface{}{"body": "Updated"}, false)
		require.NoError(t, err)
		assert.Equal(t, "Updated", b.Content["body"])
		assert.Len(t, p.VisibleBlocks(), 2)
	})

	t.Run("remove closes gaps", func(t *testing.T) {
		require.NoError(t, p.RemoveBlock(heroID))
		require.Len(t, p.Blocks, 2)
		assert.Equal(t, 0, p.Blocks[0].Position)
		assert.Equal(t, 1, p.Blocks[1].Position)
		assert.ErrorContains(t, p.RemoveBlock(heroID), "not found")
	})
}

func TestValidateBlockContent(t *testing.T) {
	assert.NoError(t, ValidateBlockContent(BlockFAQ, map[string]interface{}{
		"items": []interface{}{map[string]interface{}{"question": "Q", "answer": "A"}},
	}))
	assert.ErrorContains(t, ValidateBlockContent(BlockFAQ, map[string]interface{}{
		"items": []interface{}{map[string]interface{}{"question": "Q"}},
	}), "question and an answer")

	assert.NoError(t, ValidateBlockContent(BlockProductGrid, map[string]interface{}{
		"product_ids": []interface{}{uuid.NewString()},
	}))
	assert.ErrorContains(t, ValidateBlockContent(BlockProductGrid, map[string]interface{}{
		"product_ids": []interface{}{"abc"},
	}), "product UUIDs")
}

func TestPage_Translation(t *testing.T) {
	base := newTestPage(t)
	_, err := base.AddBlock(BlockHero, map[string]interface{}{
		"title": "Welcome",
		"image": "https://cdn.test/a.jpg",
	})
	require.NoError(t, err)

	fr, err := base.NewTranslation("fr", "À propos", "a-propos")
	require.NoError(t, err)
	assert.Equal(t, base.ID, *fr.TranslationOf)
	assert.Equal(t, base.ID, fr.BaseID())
	require.Len(t, fr.Blocks, 1)
	assert.NotEqual(t, base.Blocks[0].ID, fr.Blocks[0].ID)
	assert.Equal(t, fr.ID, fr.Blocks[0].PageID)

	// copies are independent
	fr.Blocks[0].Content["title"] = "changed"
	assert.Equal(t, "Welcome", base.Blocks[0].Content["title"])

	_, err = fr.NewTranslation("de", "", "")
	assert.ErrorContains(t, err, "base page")
	_, err = base.NewTranslation("en", "", "")
	assert.ErrorContains(t, err, "must differ")

	merged, err := fr.MergeTranslatedBlock(fr.Blocks[0].ID, &base.Blocks[0], map[string]interface{}{
		"title": "Bienvenue",
		"image": "https://cdn.test/other.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bienvenue", merged.Content["title"])
	assert.Equal(t, "https://cdn.test/a.jpg", merged.Content["image"])

	_, err = base.MergeTranslatedBlock(base.Blocks[0].ID, &base.Blocks[0], nil)
	assert.ErrorContains(t, err, "not a translation")

	other := newTestPage(t)
	otherBlock, err := other.AddBlock(BlockHero, map[string]interface{}{"title": "x"})
	require.NoError(t, err)
	_, err = fr.MergeTranslatedBlock(fr.Blocks[0].ID, otherBlock, nil)
	assert.ErrorContains(t, err, "does not belong")
}
