package statemachine

import (
	"strings"

	"food-ordering/models"
)

// Transition defines a valid state change
type Transition struct {
	From models.OrderStatus `json:"from"`
	To   models.OrderStatus `json:"to"`
}

// lifecycle is the forward path; canceled is reachable from every non-terminal step.
var lifecycle = []models.OrderStatus{
	models.StatusNew,
	models.StatusPreparing,
	models.StatusAssigned,
	models.StatusOnTheWay,
	models.StatusDelivered,
}

// validTransitions is the authoritative state machine definition. An order may
// move forward any number of steps, or be canceled, until it is terminal.
var validTransitions = func() []Transition {
	var ts []Transition
	for i, from := range lifecycle {
		if IsTerminal(from) {
			continue
		}
		for _, to := range lifecycle[i+1:] {
			ts = append(ts, Transition{From: from, To: to})
		}
		ts = append(ts, Transition{From: from, To: models.StatusCanceled})
	}
	return ts
}()

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From models.OrderStatus
	To   models.OrderStatus
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To}] = true
	}
	return m
}()

func IsTerminal(s models.OrderStatus) bool {
	return s == models.StatusDelivered || s == models.StatusCanceled
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition checks whether an order may move from one state to another.
// Setting the current status again is a no-op and always allowed.
func CanTransition(from, to models.OrderStatus) error {
	if !to.Valid() {
		return &models.TransitionError{From: from, To: to}
	}
	if from == to {
		return nil
	}
	if transitionMap[transitionKey{From: from, To: to}] {
		return nil
	}
	return &models.TransitionError{From: from, To: to}
}

// Describe lists the valid next states for error messages.
func Describe(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
