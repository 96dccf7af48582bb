package event

import (
	"context"
	"testing"

	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

type stubHandler struct {
	name string
}

func (h *stubHandler) Handle(context.Context, shared.DomainEvent) error { return nil }
func (h *stubHandler) EventTypes() []string                             { return nil }

func TestHandlerRegistry_TypedHandlers(t *testing.T) {
	registry := NewHandlerRegistry()
	projector := &stubHandler{name: "projector"}

	registry.Register(projector, "ReviewModerated", "ReviewDeleted")

	assert.Equal(t, []shared.EventHandler{projector}, registry.HandlersFor("ReviewModerated"))
	assert.Equal(t, []shared.EventHandler{projector}, registry.HandlersFor("ReviewDeleted"))
	assert.Empty(t, registry.HandlersFor("OrderPlaced"))
	assert.Equal(t, []string{"ReviewDeleted", "ReviewModerated"}, registry.EventTypes())
}

func TestHandlerRegistry_CatchAllComesAfterTyped(t *testing.T) {
	registry := NewHandlerRegistry()
	audit := &stubHandler{name: "audit"}
	stats := &stubHandler{name: "stats"}

	registry.Register(audit)
	registry.Register(stats, "OrderPlaced")

	assert.Equal(t, []shared.EventHandler{stats, audit}, registry.HandlersFor("OrderPlaced"))
	assert.Equal(t, []shared.EventHandler{audit}, registry.HandlersFor("OrderPaid"))
}

func TestHandlerRegistry_NoDuplicates(t *testing.T) {
	registry := NewHandlerRegistry()
	h := &stubHandler{name: "h"}

	registry.Register(h, "OrderPlaced")
	registry.Register(h, "OrderPlaced")
	registry.Register(h)

	assert.Len(t, registry.HandlersFor("OrderPlaced"), 1)
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	first := &stubHandler{name: "first"}
	second := &stubHandler{name: "second"}

	registry.Register(first, "OrderPlaced", "OrderPaid")
	registry.Register(second, "OrderPlaced")
	registry.Register(first)

	registry.Unregister(first)

	assert.Equal(t, []shared.EventHandler{second}, registry.HandlersFor("OrderPlaced"))
	assert.Empty(t, registry.HandlersFor("OrderPaid"))
	assert.Equal(t, []string{"OrderPlaced"}, registry.EventTypes())
}
