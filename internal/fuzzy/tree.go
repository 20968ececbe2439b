package fuzzy

import (
	"slices"
	"strings"
)

// Unbounded disables the overflow limit of a tree search.
const Unbounded = -1

// PrefixTree is a rune trie over a lexicon. Each node may carry the set of
// lexicon words ending there. It is immutable once built and safe for
// concurrent reads.
type PrefixTree struct {
	root  *node
	count int
}

type node struct {
	children map[rune]*node
	keys     []rune // sorted child keys
	words    []string
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// NewPrefixTree builds a tree from words. Words are lowercased; duplicate
// spellings collapse into one terminal entry.
func NewPrefixTree(words []string) *PrefixTree {
	t := &PrefixTree{root: newNode()}
	for _, w := range words {
		t.insert(w)
	}
	return t
}

func (t *PrefixTree) insert(word string) {
	word = strings.ToLower(word)
	if word == "" {
		return
	}
	n := t.root
	for _, r := range word {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
			i, _ := slices.BinarySearch(n.keys, r)
			n.keys = slices.Insert(n.keys, i, r)
		}
		n = child
	}
	if !slices.Contains(n.words, word) {
		n.words = append(n.words, word)
		t.count++
	}
}

// Len returns the number of distinct words.
func (t *PrefixTree) Len() int {
	return t.count
}

// Contains reports whether word (lowercased) is a lexicon word.
func (t *PrefixTree) Contains(word string) bool {
	word = strings.ToLower(word)
	n := t.root
	for _, r := range word {
		child, ok := n.children[r]
		if !ok {
			return false
		}
		n = child
	}
	return slices.Contains(n.words, word)
}

// Words returns every word in the tree in lexicographic order.
func (t *PrefixTree) Words() []string {
	var out []string
	t.root.collect(0, Unbounded, &out)
	slices.Sort(out)
	return out
}

// Search walks word down the tree while characters match, then collects
// every word reachable from the deepest matched node. Each edge below that
// node counts as one unit of overflow; words deeper than maxOverflow are
// skipped unless maxOverflow is Unbounded. The overflow phase is refused
// when fewer than minPrefixLen characters were shared. Search returns the
// candidates and the shared prefix length.
func (t *PrefixTree) Search(word string, minPrefixLen, maxOverflow int) ([]string, int) {
	n := t.root
	prefixLen := 0
	for _, r := range word {
		child, ok := n.children[r]
		if !ok {
			break
		}
		n = child
		prefixLen++
	}
	if prefixLen < minPrefixLen {
		return nil, prefixLen
	}
	var out []string
	n.collect(0, maxOverflow, &out)
	return out, prefixLen
}

func (n *node) collect(overflow, maxOverflow int, out *[]string) {
	if maxOverflow != Unbounded && overflow > maxOverflow {
		return
	}
	*out = append(*out, n.words...)
	for _, k := range n.keys {
		n.children[k].collect(overflow+1, maxOverflow, out)
	}
}
