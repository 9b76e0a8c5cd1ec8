package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// KeyPrefix namespaces every page cache key in Redis.
const KeyPrefix = "healthie:page"

// CacheKey identifies one page of a GraphQL query for one tenant.
type CacheKey struct {
	// Tenant separates credentials and endpoints sharing one Redis. It must be an
	// opaque digest, never a raw API key.
	Tenant string

	// Query is the GraphQL document text.
	Query string

	// Variables are the variables sent with the document (e.g. {"offset": 10}).
	Variables map[string]any
}

// String generates a deterministic cache key string.
// Format: healthie:page:<tenant>:<document digest>:var1=val1:var2=val2
// The tenant segment is omitted when Tenant is empty.
//
// Example:
//
//	healthie:page:9d2e71a0c4b8f613:3f1c0b9a5e7d2c44:offset=10:should_paginate=true
func (k CacheKey) String() string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(k.Query)))
	parts := []string{KeyPrefix}
	if k.Tenant != "" {
		parts = append(parts, k.Tenant)
	}
	parts = append(parts, hex.EncodeToString(sum[:8]))

	// Variables sorted for determinism
	if len(k.Variables) > 0 {
		names := make([]string, 0, len(k.Variables))
		for name := range k.Variables {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%v", name, k.Variables[name]))
		}
	}

	return strings.Join(parts, ":")
}

// Tenant derives the tenant segment for an endpoint and API key: the first 8 bytes
// of sha256(baseURL + "\x00" + apiKey), hex encoded.
func Tenant(baseURL, apiKey string) string {
	sum := sha256.Sum256([]byte(baseURL + "\x00" + apiKey))
	return hex.EncodeToString(sum[:8])
}
