/*
Package index builds, persists and loads the reverse-index trie that backs
ingredient autocomplete.

Each trie node maps a single character to a child node; a node whose IDs
list is non-empty marks the end of a complete ingredient token and carries
the identifiers of every recipe containing that token. The index is built
once, optionally persisted as a msgpack snapshot, and is immutable
afterwards: concurrent readers need no locking.
*/
package index

import "time"

// Node is one trie level. Children keys are single-character strings,
// which keeps the in-memory shape identical to the snapshot format.
type Node struct {
	Children map[string]*Node
	IDs      []string
}

// insert walks/creates one child per character of token and appends id to
// the terminal postings. Postings stay deduplicated and keep first
// occurrence order. Reports whether the terminal was empty before.
func (n *Node) insert(token, id string) bool {
	node := n
	for _, r := range token {
		key := string(r)
		child, ok := node.Children[key]
		if !ok {
			if node.Children == nil {
				node.Children = make(map[string]*Node)
			}
			child = &Node{}
			node.Children[key] = child
		}
		node = child
	}
	wasEmpty := len(node.IDs) == 0
	for _, existing := range node.IDs {
		if existing == id {
			return false
		}
	}
	node.IDs = append(node.IDs, id)
	return wasEmpty
}

// walk descends one child per character of token. Returns nil when any
// character has no child.
func (n *Node) walk(token string) *Node {
	node := n
	for _, r := range token {
		child, ok := node.Children[string(r)]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// Index is the root trie plus provenance. Provenance only informs
// staleness decisions and stats output; queries never consult it.
type Index struct {
	Root    *Node
	Source  string
	BuiltAt time.Time
	Tokens  int
	Docs    int
}

// New returns an empty index ready for insertion.
func New() *Index {
	return &Index{Root: &Node{}}
}

// Insert adds one (token, recipe id) pair. The token is expected to be
// normalized already; empty tokens are ignored.
func (ix *Index) Insert(token, id string) {
	if token == "" || id == "" {
		return
	}
	if ix.Root.insert(token, id) {
		ix.Tokens++
	}
}

// Lookup returns the node the token path ends at, or nil.
func (ix *Index) Lookup(token string) *Node {
	if ix.Root == nil {
		return nil
	}
	return ix.Root.walk(token)
}

// Empty reports whether the index holds no tokens at all.
func (ix *Index) Empty() bool {
	return ix.Root == nil || (len(ix.Root.Children) == 0 && len(ix.Root.IDs) == 0)
}
