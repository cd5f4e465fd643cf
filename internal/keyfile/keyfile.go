// Package keyfile gives group/key access to the grouped "key = value" answer
// file. Reads never fall back to a parent group: "node.2" does not inherit
// keys from "node", inheritance is the resolver's job.
package keyfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/ini.v1"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrFileNotFound  = errors.New("answer file not found")
)

var loadOptions = ini.LoadOptions{
	IgnoreInlineComment: true,
	AllowShadows:        false,
}

type KeyFile struct {
	file *ini.File
}

// Groups lists the groups in file order.
func (k *KeyFile) Groups() []string {
	return lo.Filter(k.file.SectionStrings(), func(name string, _ int) bool {
		return name != ini.DefaultSection
	})
}

// PrefixedGroups lists the groups whose name starts with prefix, in file order.
func (k *KeyFile) PrefixedGroups(prefix string) []string {
	return lo.Filter(k.Groups(), func(name string, _ int) bool {
		return strings.HasPrefix(name, prefix)
	})
}

func (k *KeyFile) HasGroup(group string) bool {
	return k.file.HasSection(group)
}

// Group returns a copy of the keys defined directly in group.
func (k *KeyFile) Group(group string) (map[string]string, error) {
	section, err := k.file.GetSection(group)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, group)
	}

	return section.KeysHash(), nil
}

// Get returns the value of key in group and whether it is present.
func (k *KeyFile) Get(group, key string) (string, bool) {
	values, err := k.Group(group)
	if err != nil {
		return "", false
	}

	value, ok := values[key]
	return value, ok
}

// GetOr returns the value of key in group, or fallback when absent.
func (k *KeyFile) GetOr(group, key, fallback string) string {
	if value, ok := k.Get(group, key); ok {
		return value
	}

	return fallback
}

func (k *KeyFile) Set(group, key, value string) error {
	if _, err := k.file.Section(group).NewKey(key, value); err != nil {
		return fmt.Errorf("failed to set %s.%s: %w", group, key, err)
	}

	return nil
}

func (k *KeyFile) WriteTo(w io.Writer) (int64, error) {
	return k.file.WriteTo(w)
}

func (k *KeyFile) Save(path string) error {
	if err := k.file.SaveTo(path); err != nil {
		return fmt.Errorf("failed to save answer file: %w", err)
	}

	return nil
}

func Load(path string) (*KeyFile, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat answer file: %w", err)
	}

	file, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer file: %w", err)
	}

	return &KeyFile{file: file}, nil
}

func Parse(data []byte) (*KeyFile, error) {
	file, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse answer file: %w", err)
	}

	return &KeyFile{file: file}, nil
}

func New() *KeyFile {
	return &KeyFile{file: ini.Empty(loadOptions)}
}
