// Package audit captures registry actions as events. Domain services emit
// through a Publisher; sinks (in-process worker, Kafka) fan out without the
// services knowing where events land.
package audit

import (
	"context"
	"time"
)

// Action names a registry event.
type Action string

const (
	ActionRegistryInitialized Action = "registry_initialized"
	ActionSuffixRegistered    Action = "suffix_registered"
	ActionAliasRegistered     Action = "alias_registered"
	ActionChainMappingAdded   Action = "chain_mapping_added"
	ActionReputationUpdated   Action = "reputation_updated"
)

// Event is emitted from domain logic to record one committed transition.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	SignerKey string    `json:"signer_key"`
	Username  string    `json:"username,omitempty"`
	Suffix    string    `json:"suffix,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Publisher accepts events from domain services. Implementations must not
// block domain operations on sink latency.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists events for a sink.
type Store interface {
	Append(ctx context.Context, event Event) error
}
