package service_interfaces

import "context"

// CredentialVerifier is the gate consulted before a balance mutation is
// allowed. It is injected as a capability so the transaction service carries
// no dependency on any particular hashing scheme, and tests can substitute a
// deterministic stub.
type CredentialVerifier interface {
	// Verify returns nil when pin matches the user's stored transaction pin,
	// domain.ErrCredentialRejected on a mismatch.
	Verify(ctx context.Context, userID string, pin string) error
}
