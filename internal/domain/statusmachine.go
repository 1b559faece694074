package domain

import (
	"fmt"
	"sort"
)

// StatusMachine is a configurable directed graph over reservation statuses.
// It is plain data: hosts supply their own lifecycle without touching engine code.
type StatusMachine struct {
	Statuses         []string
	DefaultStatus    string
	BlockingStatuses []string
	TerminalStatuses []string
	Transitions      map[string][]string
}

// TransitionResult is the outcome of ValidateTransition
type TransitionResult struct {
	Valid  bool
	Reason string
}

// DefaultStatusMachine returns the built-in lifecycle:
// pending → confirmed|cancelled, confirmed → completed|cancelled|no-show.
func DefaultStatusMachine() *StatusMachine {
	return &StatusMachine{
		Statuses:         []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow},
		DefaultStatus:    StatusPending,
		BlockingStatuses: []string{StatusPending, StatusConfirmed},
		TerminalStatuses: []string{StatusCompleted, StatusCancelled, StatusNoShow},
		Transitions: map[string][]string{
			StatusPending:   {StatusConfirmed, StatusCancelled},
			StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
			StatusCompleted: {},
			StatusCancelled: {},
			StatusNoShow:    {},
		},
	}
}

// Validate checks the machine once at startup
func (m *StatusMachine) Validate() error {
	if len(m.Statuses) == 0 {
		return fmt.Errorf("%w: no statuses defined", ErrInvalidStatusMachine)
	}
	if !m.HasStatus(m.DefaultStatus) {
		return fmt.Errorf("%w: default status %q is not in statuses", ErrInvalidStatusMachine, m.DefaultStatus)
	}
	for _, s := range m.BlockingStatuses {
		if !m.HasStatus(s) {
			return fmt.Errorf("%w: blocking status %q is not in statuses", ErrInvalidStatusMachine, s)
		}
	}
	for _, s := range m.TerminalStatuses {
		if !m.HasStatus(s) {
			return fmt.Errorf("%w: terminal status %q is not in statuses", ErrInvalidStatusMachine, s)
		}
		if len(m.Transitions[s]) > 0 {
			return fmt.Errorf("%w: terminal status %q has outgoing transitions", ErrInvalidStatusMachine, s)
		}
	}
	if m.IsTerminal(m.DefaultStatus) {
		return fmt.Errorf("%w: default status %q is terminal", ErrInvalidStatusMachine, m.DefaultStatus)
	}
	for from, targets := range m.Transitions {
		if !m.HasStatus(from) {
			return fmt.Errorf("%w: transition from unknown status %q", ErrInvalidStatusMachine, from)
		}
		for _, to := range targets {
			if !m.HasStatus(to) {
				return fmt.Errorf("%w: transition %q -> unknown status %q", ErrInvalidStatusMachine, from, to)
			}
		}
	}
	return nil
}

func (m *StatusMachine) HasStatus(status string) bool {
	return contains(m.Statuses, status)
}

// IsBlocking reports whether status occupies resource capacity
func (m *StatusMachine) IsBlocking(status string) bool {
	return contains(m.BlockingStatuses, status)
}

func (m *StatusMachine) IsTerminal(status string) bool {
	return contains(m.TerminalStatuses, status)
}

// ValidateTransition checks the edge from → to
func (m *StatusMachine) ValidateTransition(from, to string) TransitionResult {
	allowed, ok := m.Transitions[from]
	if !ok {
		return TransitionResult{Reason: fmt.Sprintf("unknown status: %q", from)}
	}
	if !contains(allowed, to) {
		return TransitionResult{Reason: fmt.Sprintf("cannot transition from %q to %q", from, to)}
	}
	return TransitionResult{Valid: true}
}

// AllowedOnCreate returns the statuses a new reservation may start in.
// Unprivileged actors get only the default status. Privileged actors may
// also use any non-terminal status one hop away from the default.
func (m *StatusMachine) AllowedOnCreate(privileged bool) []string {
	allowed := []string{m.DefaultStatus}
	if !privileged {
		return allowed
	}
	for _, next := range m.Transitions[m.DefaultStatus] {
		if !m.IsTerminal(next) && !contains(allowed, next) {
			allowed = append(allowed, next)
		}
	}
	return allowed
}

// SortedBlockingStatuses returns a copy of BlockingStatuses in stable order
func (m *StatusMachine) SortedBlockingStatuses() []string {
	out := append([]string(nil), m.BlockingStatuses...)
	sort.Strings(out)
	return out
}

// ValidateTransition is the free-function form of StatusMachine.ValidateTransition
func ValidateTransition(from, to string, m *StatusMachine) TransitionResult {
	return m.ValidateTransition(from, to)
}

// IsBlockingStatus is the free-function form of StatusMachine.IsBlocking
func IsBlockingStatus(status string, m *StatusMachine) bool {
	return m.IsBlocking(status)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
