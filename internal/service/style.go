package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// StyleService manages the persisted overlay style.
type StyleService struct {
	dataDir string
	style   OverlayStyle
	mu      sync.RWMutex
}

// NewStyleService creates a style service, loading any persisted style
// from the data directory and falling back to the defaults.
func NewStyleService(dataDir string) *StyleService {
	s := &StyleService{
		dataDir: dataDir,
		style:   DefaultStyle(),
	}
	s.loadFromDisk()
	return s
}

// Get returns the current overlay style.
func (s *StyleService) Get() OverlayStyle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style
}

// Update replaces the overlay style, persists it, and notifies live
// sessions through the event bus.
func (s *StyleService) Update(style OverlayStyle) (OverlayStyle, error) {
	if style.Fill == "" || style.Stroke == "" {
		return OverlayStyle{}, fmt.Errorf("fill and stroke colors are required")
	}
	if style.FillOpacity < 0 || style.FillOpacity > 1 {
		return OverlayStyle{}, fmt.Errorf("fillOpacity %v out of range [0,1]", style.FillOpacity)
	}
	if style.StrokeWidth < 0 {
		return OverlayStyle{}, fmt.Errorf("strokeWidth must not be negative")
	}

	s.mu.Lock()
	s.style = style
	err := s.saveToDisk()
	s.mu.Unlock()
	if err != nil {
		return OverlayStyle{}, err
	}

	DefaultBus.Publish(Event{Kind: "style", Action: "updated"})
	return style, nil
}

// configFile returns the path to the persisted style file.
func (s *StyleService) configFile() string {
	return filepath.Join(s.dataDir, "style.json")
}

// loadFromDisk loads the persisted style, keeping defaults on any error.
func (s *StyleService) loadFromDisk() {
	data, err := os.ReadFile(s.configFile())
	if err != nil {
		return // No saved style yet, keep defaults
	}

	var style OverlayStyle
	if err := json.Unmarshal(data, &style); err != nil {
		return // Invalid JSON, keep defaults
	}

	s.style = style
}

// saveToDisk persists the style. Caller holds the lock.
func (s *StyleService) saveToDisk() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.style, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.configFile(), data, 0644)
}
