// Package config handles configuration loading and home directory resolution.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the per-home configuration file name.
const FileName = "config.yaml"

// ---------------------------------------------------------------------------
// Config types
// ---------------------------------------------------------------------------

// StyleConfig holds the caption style applied to both captions.
type StyleConfig struct {
	Font        string  `yaml:"font"` // built-in gofont name or a TTF/OTF path
	Size        float64 `yaml:"size"`
	Fill        string  `yaml:"fill"`
	Stroke      string  `yaml:"stroke"`
	StrokeWidth float64 `yaml:"stroke_width"` // percent of size; negative = fill then stroke
	Align       string  `yaml:"align"`        // "center" | "left" | "right"
}

// FrameConfig describes the visible frame the composite is rendered at.
// A zero width or height renders at the picked image's own size.
type FrameConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`
}

// ShareConfig controls the file share surface.
type ShareConfig struct {
	Dir      string `yaml:"dir"` // empty = <home>/shared
	Manifest bool   `yaml:"manifest"`
}

// CameraConfig reports whether a camera source can be picked from.
type CameraConfig struct {
	Available bool `yaml:"available"`
}

// MemeConfig is the root per-home configuration.
type MemeConfig struct {
	Style  StyleConfig  `yaml:"style"`
	Frame  FrameConfig  `yaml:"frame"`
	Share  ShareConfig  `yaml:"share"`
	Camera CameraConfig `yaml:"camera"`
}

// Default returns a MemeConfig populated with the classic meme look.
func Default() *MemeConfig {
	return &MemeConfig{
		Style: StyleConfig{
			Font:        "gobold",
			Size:        40,
			Fill:        "#FFFFFF",
			Stroke:      "#000000",
			StrokeWidth: -3,
			Align:       "center",
		},
		Frame: FrameConfig{
			Background: "#000000",
		},
		Share: ShareConfig{
			Manifest: true,
		},
	}
}

// ShareDir returns the configured share directory, defaulting to <home>/shared.
func (c *MemeConfig) ShareDir(home string) string {
	if c.Share.Dir != "" {
		if p, err := normalizePath(c.Share.Dir); err == nil {
			return p
		}
		return c.Share.Dir
	}
	return filepath.Join(home, "shared")
}

// Load reads a per-home config.yaml from path.
// If the file does not exist it returns Default() with no error.
// Missing keys retain their default values.
func Load(path string) (*MemeConfig, error) { //nolint:gocognit,gocyclo // one branch per recognised key
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	// Unmarshal into a plain map so we can apply only the keys that are present.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if st, ok := raw["style"].(map[string]any); ok {
		if v, ok := st["font"].(string); ok && v != "" {
			cfg.Style.Font = v
		}
		if v, ok := asNumber(st["size"]); ok && v > 0 {
			cfg.Style.Size = v
		}
		if v, ok := st["fill"].(string); ok && v != "" {
			cfg.Style.Fill = v
		}
		if v, ok := st["stroke"].(string); ok && v != "" {
			cfg.Style.Stroke = v
		}
		if v, ok := asNumber(st["stroke_width"]); ok {
			cfg.Style.StrokeWidth = v
		}
		if v, ok := st["align"].(string); ok && v != "" {
			cfg.Style.Align = v
		}
	}

	if fr, ok := raw["frame"].(map[string]any); ok {
		if v, ok := asNumber(fr["width"]); ok && v >= 0 {
			cfg.Frame.Width = int(v)
		}
		if v, ok := asNumber(fr["height"]); ok && v >= 0 {
			cfg.Frame.Height = int(v)
		}
		if v, ok := fr["background"].(string); ok && v != "" {
			cfg.Frame.Background = v
		}
	}

	if sh, ok := raw["share"].(map[string]any); ok {
		if v, ok := sh["dir"].(string); ok {
			cfg.Share.Dir = v
		}
		if v, ok := sh["manifest"].(bool); ok {
			cfg.Share.Manifest = v
		}
	}

	if cam, ok := raw["camera"].(map[string]any); ok {
		if v, ok := cam["available"].(bool); ok {
			cfg.Camera.Available = v
		}
	}

	return cfg, nil
}

// asNumber accepts the integer and float shapes yaml.v3 decodes into.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Home resolution
// ---------------------------------------------------------------------------

// globalConfigPath returns the path to the global mememe config file.
// This file stores only home (and future global settings).
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mememe", FileName), nil
}

// normalizePath expands ~ and makes the path absolute.
func normalizePath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(os.ExpandEnv(path))
}

// ResolveHome returns the home path and the source of the resolution.
// Priority: MEMEME_HOME env → persisted global config → ~/.mememe
// source is one of "env", "config", or "default".
func ResolveHome() (path, source string) {
	if env := os.Getenv("MEMEME_HOME"); env != "" {
		p, err := normalizePath(env)
		if err == nil {
			return p, "env"
		}
	}

	if persisted, ok, _ := GetPersistedHome(); ok {
		return persisted, "config"
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mememe"), "default"
}

// GetHome returns the resolved home path.
func GetHome() string {
	path, _ := ResolveHome()
	return path
}

// GetPersistedHome reads home from the global config.
// Returns ("", false, nil) if not set.
func GetPersistedHome() (string, bool, error) {
	raw, err := readGlobal()
	if err != nil || raw == nil {
		return "", false, err
	}

	val, _ := raw["home"].(string)
	val = strings.TrimSpace(val)
	if val == "" {
		return "", false, nil
	}

	p, err := normalizePath(val)
	if err != nil {
		return "", false, err
	}
	return p, true, nil
}

// SetPersistedHome normalizes path and persists it in the global config.
// Returns the normalized path.
func SetPersistedHome(path string) (string, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return "", err
	}

	cfgPath, err := globalConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", err
	}

	// Preserve any other keys already in the global config.
	raw, _ := readGlobal()
	if raw == nil {
		raw = make(map[string]any)
	}
	raw["home"] = normalized

	out, err := yaml.Marshal(raw)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(cfgPath, out, 0o600); err != nil {
		return "", err
	}
	return normalized, nil
}

// ClearPersistedHome removes home from the global config.
// Returns true if the key was present and removed.
// If the file becomes empty after removal it is deleted.
func ClearPersistedHome() (bool, error) {
	cfgPath, err := globalConfigPath()
	if err != nil {
		return false, err
	}
	raw, err := readGlobal()
	if err != nil || raw == nil {
		return false, err
	}
	if _, ok := raw["home"]; !ok {
		return false, nil
	}
	delete(raw, "home")

	if len(raw) == 0 {
		_ = os.Remove(cfgPath)
		return true, nil
	}

	out, err := yaml.Marshal(raw)
	if err != nil {
		return false, err
	}
	return true, os.WriteFile(cfgPath, out, 0o600)
}

// readGlobal loads the global config as a map. A missing or unparsable file
// yields (nil, nil).
func readGlobal() (map[string]any, error) {
	cfgPath, err := globalConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(cfgPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil //nolint:nilerr // a corrupt global config behaves like an absent one
	}
	return raw, nil
}
