package doctree

import (
	"fmt"
	"strings"
)

// Kind classifies a node in the document tree.
type Kind int

const (
	KindRoot    Kind = iota // document root, level 0
	KindHeader              // section heading
	KindContent             // body text under its nearest heading
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindHeader:
		return "header"
	case KindContent:
		return "content"
	}
	return "unknown"
}

// Node is a recursive element of a parsed document.
//
// Header nodes carry their heading label in Title and may own body text of
// their own in Text. Content nodes carry only Text and inherit the level of
// their nearest enclosing header. Parent is a back-reference for header-path
// reconstruction, never an ownership edge — the root owns the whole tree.
type Node struct {
	Kind     Kind
	Level    int    // 0 for root, 1..N for headers; content inherits
	Title    string // heading label (headers only)
	Text     string // text content directly owned by this node
	Parent   *Node
	Children []*Node // document order, never reordered
}

// NewRoot returns an empty document root.
func NewRoot() *Node {
	return &Node{Kind: KindRoot}
}

// AddChild appends child in document order and sets its parent pointer.
func (n *Node) AddChild(child *Node) *Node {
	child.Parent = n
	n.Children = append(n.Children, child)
	return child
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// HeaderPath returns the ancestor header titles in effect at this node,
// outermost first. The walk terminates at the root; the root itself
// contributes nothing.
func (n *Node) HeaderPath() []string {
	var rev []string
	for cur := n; cur != nil && cur.Kind != KindRoot; cur = cur.Parent {
		if cur.Kind == KindHeader && cur.Title != "" {
			rev = append(rev, cur.Title)
		}
	}
	if len(rev) == 0 {
		return nil
	}
	path := make([]string, len(rev))
	for i, t := range rev {
		path[len(rev)-1-i] = t
	}
	return path
}

// StructureError reports a node that violates the tree invariants.
type StructureError struct {
	Node   *Node
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("malformed document tree at %s: %s", describe(e.Node), e.Reason)
}

func describe(n *Node) string {
	if n == nil {
		return "<nil node>"
	}
	label := n.Title
	if label == "" {
		label = snippet(n.Text)
	}
	if label == "" {
		label = "<empty>"
	}
	return fmt.Sprintf("%s node %q (level %d)", n.Kind, label, n.Level)
}

func snippet(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > 40 {
		return text[:40] + "..."
	}
	return text
}

// Validate checks the structural invariants over the whole tree: header
// levels strictly increase downward, content nodes inherit their header's
// level, and parent pointers are consistent. It reports the first violation
// found and never attempts repair.
func Validate(root *Node) error {
	if root == nil {
		return &StructureError{Reason: "nil root"}
	}
	if root.Kind != KindRoot {
		return &StructureError{Node: root, Reason: "root node must have kind root"}
	}
	if root.Level != 0 {
		return &StructureError{Node: root, Reason: "root level must be 0"}
	}
	if root.Parent != nil {
		return &StructureError{Node: root, Reason: "root must not have a parent"}
	}
	return validateChildren(root)
}

func validateChildren(n *Node) error {
	for _, child := range n.Children {
		if child == nil {
			return &StructureError{Node: n, Reason: "nil child"}
		}
		if child.Parent != n {
			return &StructureError{Node: child, Reason: "parent back-reference does not point at actual parent"}
		}
		switch child.Kind {
		case KindRoot:
			return &StructureError{Node: child, Reason: "root kind below the root"}
		case KindHeader:
			if child.Level <= n.Level {
				return &StructureError{
					Node:   child,
					Reason: fmt.Sprintf("header level %d does not exceed parent level %d", child.Level, n.Level),
				}
			}
		case KindContent:
			if child.Level != n.Level {
				return &StructureError{
					Node:   child,
					Reason: fmt.Sprintf("content level %d does not match enclosing level %d", child.Level, n.Level),
				}
			}
		default:
			return &StructureError{Node: child, Reason: "unknown node kind"}
		}
		if err := validateChildren(child); err != nil {
			return err
		}
	}
	return nil
}

// Chunk is a sized text segment with structural context. Chunks are created
// by the builder during traversal and never mutated after emission.
type Chunk struct {
	Text        string   `json:"text"`
	TokenLength int      `json:"token_length"`
	HeaderPath  []string `json:"header_path"`        // outermost to innermost
	Index       int      `json:"index"`              // sequence number within document
	Overflow    bool     `json:"overflow,omitempty"` // single sentence over budget, emitted as-is
}
