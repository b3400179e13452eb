package models

import (
	"fmt"
	"strings"
)

// MutationKind identifies the write a [Mutation] performs.
type MutationKind int

const (
	AddLabels MutationKind = iota
	CopyToList
	Archive
	Delete
)

func (k MutationKind) String() string {
	switch k {
	case AddLabels:
		return "add-labels"
	case CopyToList:
		return "copy"
	case Archive:
		return "archive"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("MutationKind(%d)", int(k))
	}
}

// ParseMutationKind maps an action name to a by-label kind. Only archive and delete are accepted.
func ParseMutationKind(s string) (MutationKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "archive":
		return Archive, nil
	case "delete":
		return Delete, nil
	default:
		return 0, fmt.Errorf("unknown action %q (expected archive or delete)", s)
	}
}

// Mutation is the intent computed for a single card.
//
// LabelIDs holds the full label set to write for [AddLabels].
// TargetList and KeepFromSource are set for [CopyToList].
// Before and After are display values for previews.
type Mutation struct {
	Kind           MutationKind
	Card           Card
	LabelIDs       []string
	TargetList     *List
	KeepFromSource []string
	SourceList     string
	Before         []string
	After          []string
}

// Describe renders the one-line preview used for dry runs and plan review.
func (m Mutation) Describe() string {
	switch m.Kind {
	case AddLabels:
		before := "N/A"
		if len(m.Before) > 0 {
			before = strings.Join(m.Before, ", ")
		}
		return fmt.Sprintf("%s | %s -> %s", m.Card.Name, before, strings.Join(m.After, ", "))
	case CopyToList:
		target := ""
		if m.TargetList != nil {
			target = m.TargetList.Name
		}
		return fmt.Sprintf("%s | %s -> %s", m.Card.Name, m.SourceList, target)
	default:
		return fmt.Sprintf("%s %s", m.Kind, m.Card.Name)
	}
}
