// Package hooks is the optional curation-collaborator boundary. The core
// never depends on hook return values; implementations are notified and any
// failure stays on their side of the fence.
package hooks

import (
	"context"

	"github.com/curionet/curio/internal/model"
)

// Notifier receives engine lifecycle notifications.
type Notifier interface {
	OnSessionCreated(ctx context.Context, s *model.Session)
	OnReaction(ctx context.Context, s *model.Session, reactor string)
	OnMessage(ctx context.Context, m *model.Message)
	OnSessionSelected(ctx context.Context, res *model.SelectionResult)
}

// Noop is the default notifier; every hook is skipped entirely.
type Noop struct{}

func (Noop) OnSessionCreated(context.Context, *model.Session)          {}
func (Noop) OnReaction(context.Context, *model.Session, string)        {}
func (Noop) OnMessage(context.Context, *model.Message)                 {}
func (Noop) OnSessionSelected(context.Context, *model.SelectionResult) {}
