package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// BanList holds the WIDs that never score.
type BanList struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

type banListFile struct {
	Athlets []string `yaml:"athlets"`
}

func NewBanList(ids ...string) *BanList {
	b := &BanList{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		b.ids[id] = struct{}{}
	}
	return b
}

// LoadBanList reads a YAML ban list. A missing file yields an empty list.
func LoadBanList(path string) (*BanList, error) {
	if path == "" {
		return NewBanList(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewBanList(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ban list: %w", err)
	}
	return ParseBanList(data)
}

// ParseBanList accepts either a top-level sequence of WIDs or an "athlets" key.
func ParseBanList(data []byte) (*BanList, error) {
	var ids []string
	if err := yaml.Unmarshal(data, &ids); err == nil {
		return NewBanList(ids...), nil
	}
	var file banListFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse ban list: %w", err)
	}
	return NewBanList(file.Athlets...), nil
}

func (b *BanList) Contains(wid string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.ids[wid]
	return ok
}

func (b *BanList) IDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.ids))
	for id := range b.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
