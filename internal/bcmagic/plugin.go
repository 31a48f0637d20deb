package bcmagic

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrPluginExists is returned when a name is registered twice
var ErrPluginExists = errors.New("plugin already registered")

// ModePlugin answers scans sent with its bcm_mode
type ModePlugin func(keyword, text, mode string) *Response

// Hit is one search result
type Hit struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SearchPlugin looks text up and returns every match
type SearchPlugin func(text string) ([]Hit, error)

// Plugins holds the registered mode and search plugins
type Plugins struct {
	mu       sync.RWMutex
	modes    map[string]ModePlugin
	searches map[string]SearchPlugin
}

// NewPlugins creates an empty registry
func NewPlugins() *Plugins {
	return &Plugins{
		modes:    make(map[string]ModePlugin),
		searches: make(map[string]SearchPlugin),
	}
}

// RegisterMode registers plugin for bcm_mode name
func (p *Plugins) RegisterMode(name string, plugin ModePlugin) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.modes[name]; ok {
		return fmt.Errorf("mode %q: %w", name, ErrPluginExists)
	}
	p.modes[name] = plugin
	return nil
}

// RegisterSearch registers a search function under a group label
func (p *Plugins) RegisterSearch(label string, search SearchPlugin) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.searches[label]; ok {
		return fmt.Errorf("search function for label (%s): %w", label, ErrPluginExists)
	}
	p.searches[label] = search
	return nil
}

// Mode returns the plugin registered for name
func (p *Plugins) Mode(name string) (ModePlugin, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	plugin, ok := p.modes[name]
	return plugin, ok
}

// Modes returns the registered mode names, sorted
func (p *Plugins) Modes() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.modes))
	for name := range p.modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Search runs every search plugin in label order and collects the hits.
// A failing plugin is skipped.
func (p *Plugins) Search(text string) ([]Hit, []error) {
	p.mu.RLock()
	labels := make([]string, 0, len(p.searches))
	for label := range p.searches {
		labels = append(labels, label)
	}
	searches := make(map[string]SearchPlugin, len(p.searches))
	for k, v := range p.searches {
		searches[k] = v
	}
	p.mu.RUnlock()

	sort.Strings(labels)

	var hits []Hit
	var errs []error
	for _, label := range labels {
		result, err := searches[label](text)
		if err != nil {
			errs = append(errs, fmt.Errorf("search %s: %w", label, err))
			continue
		}
		hits = append(hits, result...)
	}
	return hits, errs
}
