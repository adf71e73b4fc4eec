package shared

import (
	"errors"
	"fmt"
	"strings"
)

// Outcome is the structured result every operation reports: a status
// class, a human readable message, and for batch operations a breakdown
// per target.
type Outcome struct {
	Status  ErrorKind      `json:"status,omitempty"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Items   []OutcomeEntry `json:"items,omitempty"`
}

// OutcomeEntry is one target's result inside a batch Outcome
type OutcomeEntry struct {
	Target  string    `json:"target"`
	Name    string    `json:"name"`
	Success bool      `json:"success"`
	Status  ErrorKind `json:"status,omitempty"`
	Message string    `json:"message"`
}

// EntryFromError builds a failed entry from err
func EntryFromError(target, name string, err error) OutcomeEntry {
	msg := err.Error()
	var de *DomainError
	if errors.As(err, &de) {
		msg = de.Message
	}
	return OutcomeEntry{
		Target:  target,
		Name:    name,
		Success: false,
		Status:  KindOf(err),
		Message: msg,
	}
}

// Summarize computes the aggregate status and message from the entries.
func Summarize(action string, entries []OutcomeEntry) Outcome {
	var ok, failed []string
	var firstKind ErrorKind
	for _, e := range entries {
		if e.Success {
			ok = append(ok, e.Name)
			continue
		}
		failed = append(failed, e.Name)
		if firstKind == "" {
			firstKind = e.Status
		}
	}
	out := Outcome{Items: entries, Success: len(failed) == 0}
	switch {
	case len(entries) == 0:
		out.Success = false
		out.Status = KindNotFound
		out.Message = fmt.Sprintf("%s: no branch targeted", action)
	case len(failed) == 0:
		out.Message = fmt.Sprintf("%s succeeded for %s", action, strings.Join(ok, ", "))
	case len(ok) == 0:
		out.Status = firstKind
		out.Message = fmt.Sprintf("%s failed for %s", action, strings.Join(failed, ", "))
	default:
		out.Status = firstKind
		out.Message = fmt.Sprintf("%s succeeded for %s; failed for %s", action, strings.Join(ok, ", "), strings.Join(failed, ", "))
	}
	return out
}
