package position

import "github.com/roach88/tabletpos/internal/tablet"

// SiblingGroups lists, per parent ID, the IDs of the children that receive a
// sibling rank, in discourse order. Root-kind nodes are never members.
type SiblingGroups struct {
	children map[string][]string
	rank     map[string]int64
}

// GroupSiblings builds the sibling groups of nodes, which must be in
// discourse order. A discourseUnit is left out of its parent's group even
// when it has a parent, so the ranks under each parent stay 1..n with no
// gaps for the nodes that carry one.
func GroupSiblings(nodes []tablet.DiscourseNode) SiblingGroups {
	g := SiblingGroups{
		children: make(map[string][]string),
		rank:     make(map[string]int64, len(nodes)),
	}
	for _, n := range nodes {
		if n.Kind.IsRoot() {
			continue
		}
		g.children[n.ParentID] = append(g.children[n.ParentID], n.ID)
		g.rank[n.ID] = int64(len(g.children[n.ParentID]))
	}
	return g
}

// Children returns the ranked children of parentID in order.
func (g SiblingGroups) Children(parentID string) []string {
	return g.children[parentID]
}

// Rank returns the 1-based rank of nodeID among its siblings, or null for
// nodes that carry no rank.
func (g SiblingGroups) Rank(nodeID string) tablet.NullInt {
	r, ok := g.rank[nodeID]
	if !ok {
		return tablet.NullInt{}
	}
	return tablet.Int(r)
}

// discourseState carries the running word counter between nodes.
type discourseState struct {
	words int64
}

// step computes the ordinals of the node at index and returns the advanced state.
func (s discourseState) step(index int, n tablet.DiscourseNode, siblings SiblingGroups) (discourseState, tablet.NodeOrdinals) {
	out := tablet.NodeOrdinals{
		ObjectInText: tablet.Int(int64(index + 1)),
		ChildNum:     siblings.Rank(n.ID),
	}
	if n.Kind.CountsAsWord() {
		s.words++
		out.WordOnTablet = tablet.Int(s.words)
	}
	return s, out
}

// NumberDiscourse computes the ordinals of every node, which must be in
// discourse order. The result is parallel to nodes.
func NumberDiscourse(nodes []tablet.DiscourseNode) []tablet.NodeOrdinals {
	siblings := GroupSiblings(nodes)
	out := make([]tablet.NodeOrdinals, len(nodes))
	var state discourseState
	for i, n := range nodes {
		state, out[i] = state.step(i, n, siblings)
	}
	return out
}

// CheckParents verifies that every parent reference resolves to a node of
// the same tablet. It returns an *IntegrityError for the first dangling one.
func CheckParents(tabletID string, nodes []tablet.DiscourseNode) error {
	ids := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = struct{}{}
	}
	for _, n := range nodes {
		if n.ParentID == "" {
			continue
		}
		if _, ok := ids[n.ParentID]; !ok {
			return NewDanglingParentError(tabletID, n.ID, n.ParentID)
		}
	}
	return nil
}
