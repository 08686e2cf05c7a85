package config

// DefaultMaxRefs matches ingest.DefaultConfig's own MaxRefs value — the
// two are kept in sync by hand since pkg/config must not import
// pkg/ingest just to mirror one constant back (pkg/ingest's Config is
// the thing a campaign is actually built from; this default only seeds
// the CLI's flag/file surface before that translation happens).
const DefaultMaxRefs = 500

// DefaultCacheMaxSizeBytes matches cache.DefaultLRUCacheSize (256 MB).
const DefaultCacheMaxSizeBytes = 256 * 1024 * 1024
