// Package artcache is the content-addressed store for downloaded artwork.
// Entries are keyed by the SHA-256 of their source URL and written whole,
// once; a second request for the same URL never touches the network.
// Stale entries are pruned by age when the cache is opened.
package artcache
