package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	TTL       time.Duration   `json:"ttl"`
}

func (e Entry) expired(now time.Time) bool {
	return e.TTL > 0 && now.Sub(e.Timestamp) > e.TTL
}

// Memory is an in-process Store. When path is set every write is mirrored
// to a JSON file so a finished scan's pools can be inspected.
type Memory struct {
	path    string
	ttl     time.Duration
	entries map[string]Entry
	mu      sync.RWMutex
}

// NewMemory creates a memory store. ttl <= 0 keeps entries until Clear.
// An existing file at path is loaded; a corrupt one is ignored.
func NewMemory(path string, ttl time.Duration) (*Memory, error) {
	c := &Memory{
		path:    path,
		ttl:     ttl,
		entries: make(map[string]Entry),
	}
	if path == "" {
		return c, nil
	}

	// Load existing cache if file exists
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read cache: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &c.entries); err != nil {
				// Ignore corrupt cache, start fresh
				c.entries = make(map[string]Entry)
			}
		}
	}

	return c, nil
}

func (c *Memory) Get(_ context.Context, key string, target any) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if entry.expired(time.Now()) {
		c.mu.Lock()
		// Double-check the entry still exists and is expired
		if e, exists := c.entries[key]; exists && e.expired(time.Now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(entry.Data, target); err != nil {
		return false, fmt.Errorf("unmarshal cache entry: %w", err)
	}
	return true, nil
}

func (c *Memory) Put(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	c.mu.Lock()
	c.entries[key] = Entry{
		Data:      data,
		Timestamp: time.Now(),
		TTL:       c.ttl,
	}
	c.mu.Unlock()

	return c.save()
}

// Clear removes all cache entries
func (c *Memory) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
	return c.save()
}

// Remove deletes a specific cache entry
func (c *Memory) Remove(key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return c.save()
}

// Len returns the number of entries, expired ones included.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Memory) Close() error {
	return nil
}

// save mirrors the entries to disk. It takes its own read lock.
func (c *Memory) save() error {
	if c.path == "" {
		return nil
	}

	// Create parent directory if needed
	if dir := filepath.Dir(c.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	return os.WriteFile(c.path, data, 0644)
}
