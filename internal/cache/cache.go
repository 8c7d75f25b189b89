// Package cache stores comparable-candidate pools between searches within
// a scan.
package cache

import (
	"context"
	"strings"
)

// Store is a JSON value cache. Get reports false for a missing or expired
// key. Clear drops every entry the store owns.
type Store interface {
	Get(ctx context.Context, key string, target any) (bool, error)
	Put(ctx context.Context, key string, value any) error
	Clear(ctx context.Context) error
	Close() error
}

// BuildKey creates semantic cache keys
func BuildKey(parts ...string) string {
	return strings.Join(parts, "|")
}

// CompsKey identifies a comparable-candidate pool by the card identity it
// was searched for. Absent parts are written as "-".
func CompsKey(player, set, year, number string) string {
	parts := []string{"comps", player, set, year, number}
	for i, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			p = "-"
		}
		parts[i] = p
	}
	return BuildKey(parts...)
}
