package phase

import (
	"fmt"
	"io/fs"
	"sync"
	"text/template"
)

// PromptCache caches parsed prompt templates read from a filesystem.
type PromptCache struct {
	fsys      fs.FS
	mu        sync.RWMutex
	templates map[string]*template.Template
	raw       map[string]string
}

func NewPromptCache(fsys fs.FS) *PromptCache {
	return &PromptCache{
		fsys:      fsys,
		templates: make(map[string]*template.Template),
		raw:       make(map[string]string),
	}
}

// LoadPrompt loads a prompt from the filesystem or cache
func (pc *PromptCache) LoadPrompt(path string) (string, error) {
	pc.mu.RLock()
	if content, ok := pc.raw[path]; ok {
		pc.mu.RUnlock()
		return content, nil
	}
	pc.mu.RUnlock()

	content, err := fs.ReadFile(pc.fsys, path)
	if err != nil {
		return "", fmt.Errorf("reading prompt file: %w", err)
	}

	pc.mu.Lock()
	pc.raw[path] = string(content)
	pc.mu.Unlock()

	return string(content), nil
}

// LoadTemplate loads and parses a template from the filesystem or cache
func (pc *PromptCache) LoadTemplate(path string) (*template.Template, error) {
	pc.mu.RLock()
	if tmpl, ok := pc.templates[path]; ok {
		pc.mu.RUnlock()
		return tmpl, nil
	}
	pc.mu.RUnlock()

	content, err := pc.LoadPrompt(path)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(path).Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", path, err)
	}

	pc.mu.Lock()
	pc.templates[path] = tmpl
	pc.mu.Unlock()

	return tmpl, nil
}

// Preload parses multiple templates into the cache
func (pc *PromptCache) Preload(paths []string) error {
	for _, path := range paths {
		if _, err := pc.LoadTemplate(path); err != nil {
			return fmt.Errorf("preloading %s: %w", path, err)
		}
	}
	return nil
}

// Stats returns cache statistics
func (pc *PromptCache) Stats() (templates int, raw int) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	return len(pc.templates), len(pc.raw)
}
