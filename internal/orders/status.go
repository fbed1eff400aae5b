package orders

type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusValidating Status = "VALIDATING"
	StatusCommitting Status = "COMMITTING"
	StatusCompleted  Status = "COMPLETED"
	StatusDeleted    Status = "DELETED"
)

// Validating and Committing only exist in memory while a checkout runs;
// storage sees ACTIVE, COMPLETED or DELETED.
var validNext = map[Status]map[Status]bool{
	StatusActive:     {StatusValidating: true, StatusDeleted: true},
	StatusValidating: {StatusActive: true, StatusCommitting: true},
	StatusCommitting: {StatusCompleted: true, StatusActive: true},
	StatusCompleted:  {},
	StatusDeleted:    {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusDeleted
}
