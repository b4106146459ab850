package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/remote-controller/controller/state"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// DefaultProfileName is loaded by Default when present in the config directory.
const DefaultProfileName = "default"

// Profile is the controller configuration published to clients.
type Profile struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	AreaSize    state.AreaSize `json:"area_size"`
	Actions     state.Catalog  `json:"actions"`
}

// ProfileInfo summarizes a profile file for listings.
type ProfileInfo struct {
	Filename    string `json:"filename"`
	ProfileID   string `json:"profile_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Actions     int    `json:"actions"`
}

// Manager handles profile loading and caching
type Manager struct {
	configDir      string
	defaultProfile *Profile
	profiles       map[string]*Profile
	mu             sync.RWMutex
}

// NewManager creates a new profile manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		profiles:  make(map[string]*Profile),
	}

	if err := m.loadDefaultProfile(); err != nil {
		return nil, fmt.Errorf("failed to load default profile: %w", err)
	}

	return m, nil
}

// LoadProfile loads a profile by name
func (m *Manager) LoadProfile(name string) (*Profile, error) {
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	if profile, exists := m.profiles[name]; exists {
		m.mu.RUnlock()
		return profile, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if profile, exists := m.profiles[name]; exists {
		return profile, nil
	}

	profile, err := LoadFile(filepath.Join(m.configDir, name+".json"))
	if err != nil {
		return nil, err
	}
	if profile.Name == "" {
		profile.Name = name
	}

	m.profiles[name] = profile
	return profile, nil
}

// ListProfiles returns information about all valid profiles in the config directory
func (m *Manager) ListProfiles() ([]*ProfileInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var profiles []*ProfileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		profile, err := m.LoadProfile(id)
		if err != nil {
			// Skip invalid profiles
			continue
		}

		profiles = append(profiles, &ProfileInfo{
			Filename:    entry.Name(),
			ProfileID:   id,
			Name:        profile.Name,
			Description: profile.Description,
			Actions:     len(profile.Actions),
		})
	}

	return profiles, nil
}

// Default returns the default profile
func (m *Manager) Default() *Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultProfile
}

// loadDefaultProfile loads default.json, falling back to the built-in profile
func (m *Manager) loadDefaultProfile() error {
	profile, err := m.LoadProfile(DefaultProfileName)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			return err
		}
		profile = MinimalProfile()
	}

	m.mu.Lock()
	m.defaultProfile = profile
	m.mu.Unlock()
	return nil
}

// LoadFile reads and validates a single profile file
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, filepath.Base(path))
		}
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidProfile, filepath.Base(path), err)
	}

	if err := ValidateProfile(&profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// ValidateProfile checks the area size and the action catalog
func ValidateProfile(p *Profile) error {
	if p == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}

	for _, dim := range []float32{p.AreaSize.Width, p.AreaSize.Height} {
		f := float64(dim)
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return fmt.Errorf("%w: area size must be finite and non-negative, got %gx%g",
				ErrInvalidProfile, p.AreaSize.Width, p.AreaSize.Height)
		}
	}
	if !p.AreaSize.IsZero() && (p.AreaSize.Width == 0 || p.AreaSize.Height == 0) {
		return fmt.Errorf("%w: area size must set both dimensions or neither, got %gx%g",
			ErrInvalidProfile, p.AreaSize.Width, p.AreaSize.Height)
	}

	seen := make(map[string]bool, len(p.Actions))
	for i, action := range p.Actions {
		if strings.TrimSpace(action.ID) == "" {
			return fmt.Errorf("%w: action %d has an empty id", ErrInvalidProfile, i)
		}
		if seen[action.ID] {
			return fmt.Errorf("%w: duplicate action id %q", ErrInvalidProfile, action.ID)
		}
		seen[action.ID] = true
	}

	return nil
}

// MinimalProfile returns the built-in profile: a unit square and no actions
func MinimalProfile() *Profile {
	return &Profile{
		Name:        DefaultProfileName,
		Description: "Unit playing field without actions",
		AreaSize:    state.DefaultAreaSize,
		Actions:     state.Catalog{},
	}
}
