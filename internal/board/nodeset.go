package board

// NodeSet is an unordered set of nodes keyed by identity.
type NodeSet map[Node]struct{}

// NewNodeSet returns a set holding nodes.
func NewNodeSet(nodes ...Node) NodeSet {
	s := make(NodeSet, len(nodes))
	for _, n := range nodes {
		s.Add(n)
	}
	return s
}

func (s NodeSet) Add(n Node) { s[n] = struct{}{} }

func (s NodeSet) Has(n Node) bool {
	_, ok := s[n]
	return ok
}

func (s NodeSet) Len() int { return len(s) }

// Ordered returns the members of s in the board's insertion order.
func (s NodeSet) Ordered(b *Board) []Node {
	out := make([]Node, 0, len(s))
	for _, n := range b.Nodes() {
		if s.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// Refs returns the external references of the selected object nodes in
// board order.
func (s NodeSet) Refs(b *Board) []ExternalRef {
	var refs []ExternalRef
	for _, n := range s.Ordered(b) {
		if o, ok := n.AsObject(); ok {
			refs = append(refs, o.Ref())
		}
	}
	return refs
}
