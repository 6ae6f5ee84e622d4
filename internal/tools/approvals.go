package tools

import "sync"

// ApprovalStore records explicit user approvals for confirmation-gated tool
// invocations. The UI layer collects the approval (showing the tool's dry-run
// description) and records it here keyed by invocation id; the orchestrator
// consumes it at execution time. An approval covers exactly one invocation.
type ApprovalStore struct {
	mu       sync.Mutex
	approved map[string]struct{}
}

// NewApprovalStore creates an empty approval store.
func NewApprovalStore() *ApprovalStore {
	return &ApprovalStore{approved: make(map[string]struct{})}
}

// Approve records approval for the invocation with the given id.
func (s *ApprovalStore) Approve(invocationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approved[invocationID] = struct{}{}
}

// Consume removes and returns the approval for the given invocation id.
// A second Consume for the same id returns false: approvals are single-use.
func (s *ApprovalStore) Consume(invocationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.approved[invocationID]
	if ok {
		delete(s.approved, invocationID)
	}
	return ok
}

// Clear drops every recorded approval.
func (s *ApprovalStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approved = make(map[string]struct{})
}
