package booking

import "strings"

// validTransitions defines the booking state machine.
// Cancellation is only reachable through an approved cancellation request.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// IsValid returns true if the status is a recognized booking status.
func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// ParseStatus normalizes stored or client supplied spellings into a Status.
// Older rows use "ongoing", "in-progress" and mixed case; they all map here, once.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)

	switch norm {
	case "ongoing", "inprogress":
		norm = string(StatusInProgress)
	case "canceled":
		norm = string(StatusCancelled)
	}

	st := Status(norm)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Scan lets pgx decode a status column through ParseStatus.
func (s *Status) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return ErrInvalidStatus
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
