package gate

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView     Action = "view"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionList     Action = "list"
	ActionModerate Action = "moderate"
)

// In reports whether a is one of actions.
func (a Action) In(actions ...Action) bool {
	for _, other := range actions {
		if a == other {
			return true
		}
	}
	return false
}
