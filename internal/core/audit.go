package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditIssuanceCreated      AuditAction = "issuance.created"
	AuditIssuanceUpdated      AuditAction = "issuance.updated"
	AuditIssuanceDeleted      AuditAction = "issuance.deleted"
	AuditPaymentStatusChanged AuditAction = "issuance.payment_status_changed"
	AuditItemCreated          AuditAction = "item.created"
	AuditItemStockReceived    AuditAction = "item.stock_received"
	AuditItemDeleted          AuditAction = "item.deleted"
	AuditCustomerCreated      AuditAction = "customer.created"
	AuditCustomerDeleted      AuditAction = "customer.deleted"
)

// AuditEvent records who changed what. Before and After are JSON-serializable
// snapshots; either may be nil.
type AuditEvent struct {
	ID           string      `json:"id"`
	ActorID      string      `json:"actor_id"`
	Action       AuditAction `json:"action"`
	TargetEntity string      `json:"target_entity"`
	TargetID     int64       `json:"target_id"`
	Before       any         `json:"before,omitempty"`
	After        any         `json:"after,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}

// AuditPublisher accepts events after a unit of work has committed.
// Implementations must not block and have no way to fail the caller.
type AuditPublisher interface {
	Publish(ctx context.Context, event AuditEvent)
}

func newAuditEvent(ctx context.Context, clock Clock, action AuditAction, entity string, id int64, before, after any) AuditEvent {
	return AuditEvent{
		ID:           uuid.NewString(),
		ActorID:      ActorFromContext(ctx),
		Action:       action,
		TargetEntity: entity,
		TargetID:     id,
		Before:       before,
		After:        after,
		Timestamp:    clock.Now(),
	}
}

// NopAuditPublisher discards every event.
type NopAuditPublisher struct{}

func (NopAuditPublisher) Publish(context.Context, AuditEvent) {}

type actorKey struct{}

// SystemActor is recorded when no actor is attached to the context.
const SystemActor = "system"

// WithActor attaches the acting user's id to ctx.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext returns the actor set by WithActor, or SystemActor.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok && v != "" {
		return v
	}
	return SystemActor
}
