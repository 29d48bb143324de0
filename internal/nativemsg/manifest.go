package nativemsg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
)

// HostName is the native messaging host name the extension connects to.
const HostName = "io.github.cristianoliveira.tab_recall"

// Supported browsers for ManifestDir.
const (
	BrowserChrome   = "chrome"
	BrowserChromium = "chromium"
)

var extensionIDPattern = regexp.MustCompile(`^[a-p]{32}$`)

// Manifest is the native messaging host manifest read by the browser.
type Manifest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Path           string   `json:"path"`
	Type           string   `json:"type"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// NewManifest builds the manifest for the host binary at path, allowing the
// given extension ids to connect.
func NewManifest(path string, extensionIDs []string) (Manifest, error) {
	if !filepath.IsAbs(path) {
		return Manifest{}, fmt.Errorf("host path must be absolute: %q", path)
	}
	if len(extensionIDs) == 0 {
		return Manifest{}, fmt.Errorf("at least one extension id is required")
	}
	origins := make([]string, 0, len(extensionIDs))
	for _, id := range extensionIDs {
		if !extensionIDPattern.MatchString(id) {
			return Manifest{}, fmt.Errorf("invalid extension id %q: expected 32 characters a-p", id)
		}
		origins = append(origins, "chrome-extension://"+id+"/")
	}
	return Manifest{
		Name:           HostName,
		Description:    "tab-recall native messaging host",
		Path:           path,
		Type:           "stdio",
		AllowedOrigins: origins,
	}, nil
}

// JSON returns the indented manifest document.
func (m Manifest) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// ManifestDir returns the per-user NativeMessagingHosts directory of browser.
func ManifestDir(browser string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}
	return manifestDir(runtime.GOOS, home, configHome, browser)
}

func manifestDir(goos, home, configHome, browser string) (string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd":
		switch browser {
		case BrowserChrome:
			return filepath.Join(configHome, "google-chrome", "NativeMessagingHosts"), nil
		case BrowserChromium:
			return filepath.Join(configHome, "chromium", "NativeMessagingHosts"), nil
		}
	case "darwin":
		base := filepath.Join(home, "Library", "Application Support")
		switch browser {
		case BrowserChrome:
			return filepath.Join(base, "Google", "Chrome", "NativeMessagingHosts"), nil
		case BrowserChromium:
			return filepath.Join(base, "Chromium", "NativeMessagingHosts"), nil
		}
	default:
		return "", fmt.Errorf("manifest install is not supported on %s; register the manifest manually", goos)
	}
	return "", fmt.Errorf("unknown browser %q: expected %s or %s", browser, BrowserChrome, BrowserChromium)
}

// Install writes m into dir as <HostName>.json and returns the file path.
func Install(dir string, m Manifest) (string, error) {
	data, err := m.JSON()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create manifest directory: %w", err)
	}
	path := filepath.Join(dir, HostName+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}
