// Package shardkey implements the deterministic mapping from
// (index, keyword, doc-id) to the KV keys that back a keyword's sharded
// posting lists.
package shardkey

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// DefaultNShards is used when the N_SHARDS environment variable is unset.
const DefaultNShards = 48

// IndexPrefix, DocumentInfix, and KeywordInfix are the literal key-schema
// fragments; they are part of the external wire contract and must not change.
const (
	IndexPrefix   = "index:"
	DocumentInfix = "document:"
	KeywordInfix  = "kw:"
)

// Of computes shard(doc-id) = be_u32(sha256(doc-id)[0..4]) mod nShards.
// It is a pure function of docID and nShards.
func Of(docID string, nShards uint32) uint32 {
	sum := sha256.Sum256([]byte(docID))
	h := binary.BigEndian.Uint32(sum[0:4])
	return h % nShards
}

// KeywordShardKey builds the KV key for one shard of one keyword:
// "<index>:kw:<keyword>:<shard>".
func KeywordShardKey(index, keyword string, shard uint32) string {
	return fmt.Sprintf("%s:%s%s:%d", index, KeywordInfix, keyword, shard)
}

// KeywordPrefixKey builds the list-by-prefix key that enumerates every
// physically-existing shard of a keyword: "<index>:kw:<keyword>:".
func KeywordPrefixKey(index, keyword string) string {
	return fmt.Sprintf("%s:%s%s:", index, KeywordInfix, keyword)
}

// DocumentKey builds the KV key for a document: "<index>:document:<doc-id>".
func DocumentKey(index, docID string) string {
	return fmt.Sprintf("%s:%s%s", index, DocumentInfix, docID)
}

// DocumentPrefixKey builds the list-by-prefix key that enumerates every
// document under an index: "<index>:document:".
func DocumentPrefixKey(index string) string {
	return fmt.Sprintf("%s:%s", index, DocumentInfix)
}

// IndexKey builds the KV key for an index descriptor: "index:<name>".
func IndexKey(name string) string {
	return IndexPrefix + name
}
