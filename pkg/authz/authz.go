package authz

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Subject is the caller asking for permission. Capabilities come from the
// verified token; the core never computes them itself.
type Subject struct {
	UserID       uuid.UUID
	TenantID     uuid.UUID
	Capabilities []string
}

// Checker answers permission questions the upstream identity layer already
// decided. Resource/action pairs mirror the route surface, e.g.
// ("orders", "write") or ("expenses", "read").
type Checker interface {
	Allow(subject Subject, resource, action string) bool
}

// Wildcard grants every capability when present in the subject's claims.
const Wildcard = "*"

type capabilityChecker struct{}

// NewCapabilityChecker builds the claim-backed Checker.
func NewCapabilityChecker() Checker {
	return capabilityChecker{}
}

func (capabilityChecker) Allow(subject Subject, resource, action string) bool {
	resource = strings.TrimSpace(resource)
	action = strings.TrimSpace(action)
	if resource == "" || action == "" {
		return false
	}
	want := fmt.Sprintf("%s:%s", resource, action)
	for _, capability := range subject.Capabilities {
		switch capability {
		case Wildcard, want, resource + ":" + Wildcard:
			return true
		}
	}
	return false
}

// AllowAll is a Checker that grants everything; used in dev mode and tests.
type AllowAll struct{}

func (AllowAll) Allow(Subject, string, string) bool { return true }
