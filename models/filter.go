package models

import (
	"fmt"
	"strings"
)

type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

// ParseStatusFilter maps an empty string to StatusAll.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", StatusAll:
		return StatusAll, nil
	case StatusActive, StatusCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("unknown status filter %q", s)
	}
}

func (f StatusFilter) Match(t Task) bool {
	switch f {
	case StatusActive:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	default:
		return true
	}
}

// PriorityFilter is either PriorityAll or one of the task priorities.
type PriorityFilter string

const PriorityAll PriorityFilter = "all"

func ParsePriorityFilter(s string) (PriorityFilter, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || v == string(PriorityAll) {
		return PriorityAll, nil
	}
	p, err := ParsePriority(v)
	if err != nil {
		return "", err
	}
	return PriorityFilter(p), nil
}

func (f PriorityFilter) Match(t Task) bool {
	if f == "" || f == PriorityAll {
		return true
	}
	return Priority(f) == t.Priority
}

// Stats holds counts over a whole, unfiltered collection.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	High      int `json:"high"`
	Medium    int `json:"medium"`
	Low       int `json:"low"`
}

// Outcome reports what a mutating store operation did.
type Outcome int

const (
	Applied Outcome = iota
	RejectedInvalid
	RejectedNotFound
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case RejectedInvalid:
		return "rejected: invalid input"
	case RejectedNotFound:
		return "rejected: task not found"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}
