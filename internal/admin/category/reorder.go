// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

// MoveInstruction is a drag gesture within one sibling scope.
//
// A nil Destination means the node was dropped outside any list.
type MoveInstruction struct {
	Scope       Scope
	Source      int
	Destination *int

	// Offset is the number of siblings ranked before index 0. It is nonzero
	// only for the roots of a page after the first; the tree sets it.
	Offset int
}

// MoveResult is the outcome of [Move].
type MoveResult struct {
	// Nodes is the scope in its new order.
	Nodes []Node

	// Changed lists the nodes whose position differs from the input, with the
	// new position applied. It is what the coordinator persists.
	Changed []Node
}

// NoOp reports whether nothing needs persisting.
func (r MoveResult) NoOp() bool {
	return len(r.Changed) == 0
}

// Move reorders a sibling list. siblings must be sorted by position.
//
// The element at Source is removed and reinserted at Destination, then every
// element is renumbered to Offset+index+1. Renumbering the whole list keeps
// the scope dense whatever the prior positions were. Indices are clamped to the list bounds;
// an empty list, a nil destination, or source == destination is a no-op.
//
// Move never fails and never modifies siblings.
func Move(siblings []Node, instruction MoveInstruction) MoveResult {
	nodes := make([]Node, len(siblings))
	copy(nodes, siblings)

	if len(nodes) == 0 || instruction.Destination == nil {
		return MoveResult{Nodes: nodes}
	}

	source := clamp(instruction.Source, len(nodes))
	destination := clamp(*instruction.Destination, len(nodes))
	if source == destination {
		return MoveResult{Nodes: nodes}
	}

	moved := nodes[source]
	if source < destination {
		copy(nodes[source:destination], nodes[source+1:destination+1])
	} else {
		copy(nodes[destination+1:source+1], nodes[destination:source])
	}
	nodes[destination] = moved

	offset := max(instruction.Offset, 0)
	var changed []Node
	for index := range nodes {
		if position := offset + index + 1; nodes[index].Position != position {
			nodes[index].Position = position
			changed = append(changed, nodes[index])
		}
	}

	return MoveResult{Nodes: nodes, Changed: changed}
}

func clamp(index, length int) int {
	return max(0, min(index, length-1))
}
