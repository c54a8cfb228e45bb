package audit

import "context"

// Store is an append-only sink for audit events. Implementations: in-memory
// (tests, single-process deployments) and Kafka (production fan-out).
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAgreement(ctx context.Context, agreementID string) ([]Event, error)
}
