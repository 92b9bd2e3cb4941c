package service

import (
	"fmt"

	"balance_checker/internal/models"
)

// SentinelValue marks a failed lookup in the wallet row. It is non-empty
// on purpose: the row stops matching the pending predicate, so a failed
// wallet is not retried until an operator clears its value.
const SentinelValue = "--"

// writeback is what one classified lookup writes to the store and journal.
type writeback struct {
	fields      map[string]any
	eventType   string
	description string
}

// classifyLookup maps a lookup outcome onto the write-back. Success and
// empty-result both persist as ordinary values (an empty result is a zero
// balance plus the remote message, not an error); any error is transient
// and takes the sentinel path.
func classifyLookup(res models.LookupResult, err error) writeback {
	if err != nil {
		return writeback{
			fields: map[string]any{
				"Value":   SentinelValue,
				"Comment": fmt.Sprintf("Error: %v", err),
			},
			eventType:   models.EventCheckFailed,
			description: fmt.Sprintf("Error: %v", err),
		}
	}
	return writeback{
		fields: map[string]any{
			"Value":   res.Amount,
			"Comment": res.Message,
		},
		eventType:   models.EventChecked,
		description: fmt.Sprintf("value %s", res.Amount),
	}
}
