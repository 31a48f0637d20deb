package bcmagic

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultMode is the bcm_mode that routes scans through url and keyword handling
const DefaultMode = "default"

// Service interprets scans
type Service struct {
	db       DB
	plugins  *Plugins
	patterns *patternCache
}

// NewService creates a new Service
func NewService(db DB, plugins *Plugins) *Service {
	if plugins == nil {
		plugins = NewPlugins()
	}
	return &Service{
		db:       db,
		plugins:  plugins,
		patterns: newPatternCache(),
	}
}

// Plugins returns the plugin registry so other packages can register with it
func (s *Service) Plugins() *Plugins {
	return s.plugins
}

// Magic decides what the client should do with a scan
func (s *Service) Magic(text, mode string) *Response {
	if strings.TrimSpace(text) == "" {
		return ReportError("Did not receive text")
	}
	if strings.TrimSpace(mode) == "" {
		return ReportError("Missing bcm_mode information")
	}

	parts := strings.Split(text, "|")
	keyword := parts[0]

	switch {
	case keyword == "url":
		if len(parts) < 2 || parts[1] == "" {
			return ReportError("No URL provided in scan")
		}
		return RedirectToURL(parts[1])
	case mode != DefaultMode:
		return s.processPlugin(keyword, text, mode)
	case len(parts) <= 1:
		return s.search(text)
	default:
		return s.processKeyword(keyword, strings.Join(parts[1:], "|"))
	}
}

// JSONTest echoes text back to exercise a client
func (s *Service) JSONTest(text string) *Response {
	if strings.TrimSpace(text) == "" {
		return ReportError("Did not receive text")
	}
	parts := strings.Split(text, "|")
	if parts[0] == "url" && len(parts) > 1 {
		return RedirectToURL(parts[1])
	}
	return &Response{Mode: ModeClear, Msg: fmt.Sprintf("Received text: %s", text)}
}

func (s *Service) processPlugin(keyword, text, mode string) *Response {
	plugin, ok := s.plugins.Mode(mode)
	if !ok {
		return ReportError(fmt.Sprintf("bcm_mode plugin called %q was not found", mode))
	}
	resp := plugin(keyword, text, mode)
	if resp == nil {
		return ReportError(fmt.Sprintf("bcm_mode plugin %q returned nothing", mode))
	}
	return resp
}

func (s *Service) search(text string) *Response {
	hits, errs := s.plugins.Search(text)
	for _, err := range errs {
		slog.Error("Search plugin failed", "text", text, "error", err)
	}

	switch n := len(hits); n {
	case 0:
		return ReportError(fmt.Sprintf("No hits found for: %s", text))
	case 1:
		return RedirectToURL(hits[0].URL)
	default:
		return ReportError(fmt.Sprintf("%d hits found for (%s); multi-hit not implemented yet.", n, text))
	}
}

func (s *Service) processKeyword(keyword, content string) *Response {
	k, err := s.db.GetKeywordMap(keyword)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Error("Error loading keyword map", "keyword", keyword, "error", err)
		}
		return ReportError(fmt.Sprintf("Keyword (%s) is not defined", keyword))
	}

	url, ok, err := s.patterns.resolve(k, content)
	if err != nil {
		slog.Error("Error resolving keyword map", "keyword", keyword, "error", err)
		return ReportError(fmt.Sprintf("Keyword (%s) is misconfigured", keyword))
	}
	if !ok {
		return ReportError(fmt.Sprintf("(%s) failed to match (%s)", k.Regex, content))
	}
	return RedirectToURL(url)
}

// SaveKeywordMap validates and stores a keyword map
func (s *Service) SaveKeywordMap(k *KeywordMap) error {
	if err := k.Validate(); err != nil {
		return fmt.Errorf("invalid keyword map: %w", err)
	}
	if err := s.db.SaveKeywordMap(k); err != nil {
		return fmt.Errorf("saving keyword map: %w", err)
	}
	return nil
}

// GetKeywordMap retrieves a keyword map
func (s *Service) GetKeywordMap(keyword string) (*KeywordMap, error) {
	k, err := s.db.GetKeywordMap(keyword)
	if err != nil {
		return nil, fmt.Errorf("getting keyword map: %w", err)
	}
	return k, nil
}

// ListKeywordMaps returns all keyword maps
func (s *Service) ListKeywordMaps() ([]*KeywordMap, error) {
	maps, err := s.db.ListKeywordMaps()
	if err != nil {
		return nil, fmt.Errorf("listing keyword maps: %w", err)
	}
	return maps, nil
}

// DeleteKeywordMap removes a keyword map
func (s *Service) DeleteKeywordMap(keyword string) error {
	if err := s.db.DeleteKeywordMap(keyword); err != nil {
		return fmt.Errorf("deleting keyword map: %w", err)
	}
	return nil
}
