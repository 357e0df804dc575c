package ocgcore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scripts holds card scripts by file name. Content is NUL-terminated so the
// engine can read it in place.
type Scripts struct {
	byName map[string][]byte
}

// NewScripts returns an empty script store.
func NewScripts() *Scripts {
	return &Scripts{byName: make(map[string][]byte)}
}

// Add stores one script.
func (s *Scripts) Add(name string, content []byte) {
	buf := make([]byte, len(content)+1)
	copy(buf, content)
	s.byName[name] = buf
}

// Len returns the number of scripts.
func (s *Scripts) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byName)
}

// Lookup finds a script the way the engine names it. Engine paths look like
// "./script/c12345.lua"; a store keyed by bare file names is matched by
// retrying after each '/'.
func (s *Scripts) Lookup(name string) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	if b, ok := s.byName[name]; ok {
		return b[:len(b)-1], true
	}
	for i := strings.IndexByte(name, '/'); i >= 0; {
		name = name[i+1:]
		if b, ok := s.byName[name]; ok {
			return b[:len(b)-1], true
		}
		i = strings.IndexByte(name, '/')
	}
	return nil, false
}

// raw returns the stored buffer including the terminating NUL.
func (s *Scripts) raw(name string) ([]byte, bool) {
	b, ok := s.Lookup(name)
	if !ok {
		return nil, false
	}
	return b[:len(b)+1], true
}

// LoadScripts reads every regular file of dir, keyed by file name.
func LoadScripts(dir string) (*Scripts, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read script dir: %w", err)
	}
	s := NewScripts()
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read script %s: %w", entry.Name(), err)
		}
		s.Add(entry.Name(), content)
	}
	return s, nil
}
