package bpe

import (
	lru "github.com/hashicorp/golang-lru"
)

// mergeCacheSize mirrors the teacher's BPE_LRU_SZ: large enough to
// memoize the merge result for most fragments seen across a typical
// encode session without growing unbounded.
const mergeCacheSize = 65536

// mergeCache memoizes bytePairMerge results, keyed on the fragment's
// raw bytes. It is safe for concurrent use by multiple goroutines
// sharing one BpeEncoding: golang-lru's ARCCache holds its own mutex.
type mergeCache struct {
	arc *lru.ARCCache
}

func newMergeCache() *mergeCache {
	c, _ := lru.NewARC(mergeCacheSize)
	return &mergeCache{arc: c}
}

func (c *mergeCache) get(fragment string) (Ranks, bool) {
	if c == nil || c.arc == nil {
		return nil, false
	}
	v, ok := c.arc.Get(fragment)
	if !ok {
		return nil, false
	}
	return v.(Ranks), true
}

func (c *mergeCache) put(fragment string, ranks Ranks) {
	if c == nil || c.arc == nil {
		return
	}
	c.arc.Add(fragment, ranks)
}
