package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownEvent is returned by the trigger path for unsupported event types.
	ErrUnknownEvent = errors.New("unknown event type")
	// ErrNoProcessors is returned when an engine is built without rule processors.
	ErrNoProcessors = errors.New("at least one rule processor is required")
)

// DataAccessError wraps a failed read against the data store.
type DataAccessError struct {
	Query    string
	ClientID string
	Err      error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access %s (client=%s): %v", e.Query, e.ClientID, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// TemplateMismatchError reports template placeholders a rule's data does not supply.
type TemplateMismatchError struct {
	RuleID  string
	Missing []string
}

func (e *TemplateMismatchError) Error() string {
	return fmt.Sprintf("rule %s: template references undeclared keys [%s]", e.RuleID, strings.Join(e.Missing, ", "))
}
