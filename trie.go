package main

import "errors"

// errInvalidWord is returned when a word contains a character outside the
// codec's alphabet.
var errInvalidWord = errors.New("trie: invalid character in word")

// A trie node. edges is allocated lazily on the first child and indexed by
// codec position; children counts the non-nil entries. data is only
// meaningful when isWord is set.
type trieNode struct {
	isWord   bool
	children int
	edges    []*trieNode
	data     interface{}
}

// A trie keyed by codec-encoded words. Insertion, deletion and lookup are
// O(len(word)) with O(1) child access, trading the sparse edge arrays for
// guaranteed time; words that only differ in case or in scandinavian
// equivalents collapse into the same path.
//
// This implementation is reentrant but not thread safe. The same trie cannot
// be fed from different goroutines concurrently; the caller synchronises.
type trie struct {
	root   *trieNode
	cod    codec
	freeFn func(data interface{})
}

// newTrie creates an empty trie over the given alphabet. freeFn may be nil;
// when set, destroy(true) invokes it on every word payload.
func newTrie(cod codec, freeFn func(interface{})) *trie {
	return &trie{
		root:   &trieNode{},
		cod:    cod,
		freeFn: freeFn,
	}
}

// destroy releases every node. When freeData is set, freeFn is invoked on the
// payload of every word node. The trie must not be used afterwards.
func (t *trie) destroy(freeData bool) {
	t.destroyNode(t.root, freeData)
	t.root = nil
}

func (t *trie) destroyNode(n *trieNode, freeData bool) {
	for _, e := range n.edges {
		if e != nil {
			t.destroyNode(e, freeData)
		}
	}
	if freeData && n.isWord && t.freeFn != nil {
		t.freeFn(n.data)
	}
	n.edges = nil
	n.data = nil
}

// insert adds word with the given payload, overwriting the payload of an
// existing word. Returns errInvalidWord if any character falls outside the
// alphabet, in which case the trie is unmodified: the word is validated in
// full before any node is created.
func (t *trie) insert(word string, data interface{}) error {
	for i := 0; i < len(word); i++ {
		if !t.cod.isValid(word[i]) {
			return errInvalidWord
		}
	}
	n := t.root
	for i := 0; i < len(word); i++ {
		p := t.cod.charToPos(word[i])
		if n.edges == nil {
			n.edges = make([]*trieNode, t.cod.edges)
		}
		if n.edges[p] == nil {
			n.edges[p] = &trieNode{}
			n.children++
		}
		n = n.edges[p]
	}
	n.isWord = true
	n.data = data
	return nil
}

// lookup returns the payload stored for word, or nil if the word is not in
// the trie or contains invalid characters.
func (t *trie) lookup(word string) interface{} {
	n := t.findNode(word)
	if n == nil || !n.isWord {
		return nil
	}
	return n.data
}

func (t *trie) findNode(word string) *trieNode {
	n := t.root
	for i := 0; i < len(word); i++ {
		if !t.cod.isValid(word[i]) {
			return nil
		}
		if n.edges == nil {
			return nil
		}
		n = n.edges[t.cod.charToPos(word[i])]
		if n == nil {
			return nil
		}
	}
	return n
}

// remove detaches word from the trie and returns its payload, or nil if no
// such word exists. Nodes left without children and without a word are pruned
// on the way back up, so a trie that becomes empty is again just a root.
func (t *trie) remove(word string) interface{} {
	type step struct {
		node *trieNode
		pos  int
	}
	path := make([]step, 0, len(word))
	n := t.root
	for i := 0; i < len(word); i++ {
		if !t.cod.isValid(word[i]) || n.edges == nil {
			return nil
		}
		p := t.cod.charToPos(word[i])
		if n.edges[p] == nil {
			return nil
		}
		path = append(path, step{n, p})
		n = n.edges[p]
	}
	if !n.isWord {
		return nil
	}
	data := n.data
	n.isWord = false
	n.data = nil
	for i := len(path) - 1; i >= 0; i-- {
		if n.children > 0 || n.isWord {
			break
		}
		parent := path[i].node
		parent.edges[path[i].pos] = nil
		parent.children--
		if parent.children == 0 && !parent.isWord {
			parent.edges = nil
		}
		n = parent
	}
	return data
}

// foreach walks every word node in order and calls fn with its payload.
func (t *trie) foreach(fn func(interface{})) {
	t.foreachNode(t.root, fn)
}

func (t *trie) foreachNode(n *trieNode, fn func(interface{})) {
	if n.isWord {
		fn(n.data)
	}
	for _, e := range n.edges {
		if e != nil {
			t.foreachNode(e, fn)
		}
	}
}

// A frame of a paused prefix enumeration. path[0..depth-1] spells the exact
// canonical characters walked from the root to node; child is the next edge
// position to try when the enumeration resumes, or -1 while the node itself
// has not been reported yet.
type trieFrame struct {
	node  *trieNode
	child int
	depth int
}

// A trieCursor keeps the state of a prefix enumeration between calls to
// prefixNext, so that callers can bound the work done per call. A cursor that
// has not been run to exhaustion must be released with releaseCursor.
type trieCursor struct {
	path   []byte
	prefix string
	depth  int
	stack  []trieFrame
}

// prefixNext finds the next word under prefix, in order. Pass cur == nil to
// start a new enumeration; pass the returned cursor to resume it. Only words
// of at most depth-1 characters are reported. Returns the cursor to resume
// with, the canonical spelling of the word found and its payload; a nil
// cursor means the enumeration is exhausted and has been released.
func (t *trie) prefixNext(cur *trieCursor, prefix string, depth int) (*trieCursor, string, interface{}) {
	if cur == nil {
		if len(prefix) > depth-1 {
			return nil, "", nil
		}
		n := t.findNode(prefix)
		if n == nil {
			return nil, "", nil
		}
		cur = &trieCursor{
			path:   make([]byte, depth),
			prefix: prefix,
			depth:  depth,
			stack:  make([]trieFrame, 0, depth),
		}
		for i := 0; i < len(prefix); i++ {
			cur.path[i] = t.cod.posToChar(t.cod.charToPos(prefix[i]))
		}
		cur.stack = append(cur.stack, trieFrame{node: n, child: -1, depth: len(prefix)})
	}

	for len(cur.stack) > 0 {
		f := &cur.stack[len(cur.stack)-1]
		if f.child == -1 {
			f.child = 0
			if f.node.isWord {
				return cur, string(cur.path[:f.depth]), f.node.data
			}
		}
		if f.depth >= cur.depth-1 {
			// deeper words would not fit the path buffer
			cur.stack = cur.stack[:len(cur.stack)-1]
			continue
		}
		descended := false
		for p := f.child; p < t.cod.edges; p++ {
			if f.node.edges == nil || f.node.edges[p] == nil {
				continue
			}
			f.child = p + 1
			cur.path[f.depth] = t.cod.posToChar(p)
			next := trieFrame{node: f.node.edges[p], child: -1, depth: f.depth + 1}
			cur.stack = append(cur.stack, next)
			descended = true
			break
		}
		if !descended {
			cur.stack = cur.stack[:len(cur.stack)-1]
		}
	}
	t.releaseCursor(cur)
	return nil, "", nil
}

// releaseCursor drops an enumeration that will not be resumed.
func (t *trie) releaseCursor(cur *trieCursor) {
	if cur == nil {
		return
	}
	cur.stack = nil
	cur.path = nil
}
