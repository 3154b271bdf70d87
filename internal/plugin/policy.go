package plugin

import (
	"errors"
	"fmt"
)

// ErrPolicyViolation is returned when a plugin is blacklisted or excluded
// from a non-empty whitelist.
var ErrPolicyViolation = errors.New("plugin policy violation")

// Policy is the plugin security policy. The blacklist always wins over the
// whitelist; an empty whitelist means allow-all.
type Policy struct {
	Whitelist []string
	Blacklist []string
}

// Check returns an ErrPolicyViolation when the named plugin may not load.
func (p Policy) Check(name string) error {
	for _, blocked := range p.Blacklist {
		if blocked == name {
			return fmt.Errorf("plugin '%s' is blacklisted: %w", name, ErrPolicyViolation)
		}
	}
	if len(p.Whitelist) == 0 {
		return nil
	}
	for _, allowed := range p.Whitelist {
		if allowed == name {
			return nil
		}
	}
	return fmt.Errorf("plugin '%s' is not whitelisted: %w", name, ErrPolicyViolation)
}
