package order

import (
	"database/sql/driver"
	"errors"
	"slices"
)

// Status is the lifecycle state of a persisted order.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusFulfilled Status = "FULFILLED"
	StatusCancelled Status = "CANCELLED"
)

var ErrInvalidStatus = errors.New("invalid order status")

var transitions = map[Status][]Status{
	StatusCreated: {StatusFulfilled, StatusCancelled},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusCreated, StatusFulfilled, StatusCancelled:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}
