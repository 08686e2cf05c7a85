package cache

import (
	"github.com/hyperast-go/hyperast/pkg/gitobj"
	"github.com/hyperast-go/hyperast/pkg/ingest"
)

// CachingTreeReader wraps an ingest.TreeReader, serving Blob reads out
// of an LRUBlobCache before falling back to the underlying reader.
// Entries is never cached — directory listings are cheap and the
// traversal engine already memoizes whole subtrees by hash.
type CachingTreeReader struct {
	inner ingest.TreeReader
	cache *LRUBlobCache
}

// NewCachingTreeReader wraps inner with cache.
func NewCachingTreeReader(inner ingest.TreeReader, cache *LRUBlobCache) *CachingTreeReader {
	return &CachingTreeReader{inner: inner, cache: cache}
}

// Entries delegates directly to the wrapped reader.
func (r *CachingTreeReader) Entries(hash gitobj.Hash) ([]ingest.DirEntry, error) {
	return r.inner.Entries(hash)
}

// Blob returns hash's content from the cache if present, otherwise
// reads it from the wrapped reader and populates the cache before
// returning.
func (r *CachingTreeReader) Blob(hash gitobj.Hash) ([]byte, error) {
	if content := r.cache.Get(hash); content != nil {
		return content, nil
	}

	content, err := r.inner.Blob(hash)
	if err != nil {
		return nil, err
	}

	if putErr := r.cache.Put(hash, content); putErr != nil {
		return content, nil
	}

	return content, nil
}
