// Package stats computes token, tool, activity, and duration statistics over
// unified messages at session, project, and global scope.
package stats

import "fmt"

// Policy selects which records count toward statistics.
type Policy int

const (
	// BillingTotal counts every record type that can carry token cost,
	// sidechain records included.
	BillingTotal Policy = iota
	// ConversationOnly counts only user and assistant records, excluding
	// sidechain-flagged ones.
	ConversationOnly
)

func (p Policy) String() string {
	if p == ConversationOnly {
		return "conversation_only"
	}
	return "billing_total"
}

// ParsePolicy maps a config or flag value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "billing_total", "billing":
		return BillingTotal, nil
	case "conversation_only", "conversation":
		return ConversationOnly, nil
	}
	return BillingTotal, fmt.Errorf("unknown stats policy %q", s)
}

// ShouldInclude is the single inclusion predicate. It is applied identically
// at session, project, and global scope, which is what keeps the three
// scopes numerically reconcilable.
func ShouldInclude(msgType string, isSidechain, hasUsage bool, policy Policy) bool {
	if msgType == "summary" {
		return false
	}
	if policy == ConversationOnly {
		return (msgType == "user" || msgType == "assistant") && !isSidechain
	}
	switch msgType {
	case "user", "assistant", "system":
		return true
	case "progress", "queue-operation", "file-history-snapshot":
		return hasUsage
	default:
		return hasUsage
	}
}
