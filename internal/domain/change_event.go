package domain

import "time"

// ChangeOperation describes one journaled arrangement mutation.
type ChangeOperation string

// ChangeOperation values used by the local arrangement journal.
const (
	ChangeOperationMove     ChangeOperation = "move"
	ChangeOperationShow     ChangeOperation = "show"
	ChangeOperationHide     ChangeOperation = "hide"
	ChangeOperationCollapse ChangeOperation = "collapse"
	ChangeOperationExpand   ChangeOperation = "expand"
	ChangeOperationResize   ChangeOperation = "resize"
	ChangeOperationSave     ChangeOperation = "save"
	ChangeOperationReset    ChangeOperation = "reset"
)

// ChangeEvent is a single journal entry for one layout mutation.
type ChangeEvent struct {
	ID         string
	Operation  ChangeOperation
	CardID     string
	Summary    string
	OccurredAt time.Time
}
