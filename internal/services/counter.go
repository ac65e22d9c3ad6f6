package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CounterStore hands out strictly increasing listing IDs across runs.
// Next returns the next ID to assign; Commit persists the highest ID
// actually assigned and must only be called after a successful run.
type CounterStore interface {
	Next() int
	Commit(lastID int) error
}

// FileCounter persists the counter as a single integer in a text file.
// A missing or corrupt file reads as zero.
type FileCounter struct {
	path string
	last int
}

// NewFileCounter loads the persisted counter from path
func NewFileCounter(path string) *FileCounter {
	c := &FileCounter{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	if v, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
		c.last = v
	}
	return c
}

// Next returns the next ID in sequence without persisting it
func (c *FileCounter) Next() int {
	c.last++
	return c.last
}

// Commit writes the highest assigned ID back to the counter file
func (c *FileCounter) Commit(lastID int) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating counter directory: %w", err)
	}
	if err := os.WriteFile(c.path, []byte(strconv.Itoa(lastID)), 0o644); err != nil {
		return fmt.Errorf("writing counter file: %w", err)
	}
	c.last = lastID
	return nil
}
