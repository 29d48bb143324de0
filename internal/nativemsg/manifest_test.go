package nativemsg

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testExtensionID = "abcdefghijklmnopabcdefghijklmnop"

func TestNewManifest(t *testing.T) {
	m, err := NewManifest("/usr/local/bin/tab-recall", []string{testExtensionID})
	require.NoError(t, err)

	assert.Equal(t, HostName, m.Name)
	assert.Equal(t, "stdio", m.Type)
	assert.Equal(t, []string{"chrome-extension://" + testExtensionID + "/"}, m.AllowedOrigins)

	data, err := m.JSON()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "/usr/local/bin/tab-recall", decoded["path"])
	assert.Contains(t, decoded, "allowed_origins")
}

func TestNewManifestValidation(t *testing.T) {
	_, err := NewManifest("tab-recall", []string{testExtensionID})
	assert.ErrorContains(t, err, "absolute")

	_, err = NewManifest("/bin/tab-recall", nil)
	assert.ErrorContains(t, err, "extension id")

	_, err = NewManifest("/bin/tab-recall", []string{"not-an-id"})
	assert.ErrorContains(t, err, "invalid extension id")

	_, err = NewManifest("/bin/tab-recall", []string{strings.Repeat("z", 32)})
	assert.Error(t, err)
}

func TestManifestDir(t *testing.T) {
	tests := []struct {
		goos, browser, want string
		wantErr             bool
	}{
		{goos: "linux", browser: BrowserChrome, want: "/cfg/google-chrome/NativeMessagingHosts"},
		{goos: "linux", browser: BrowserChromium, want: "/cfg/chromium/NativeMessagingHosts"},
		{goos: "darwin", browser: BrowserChrome, want: "/home/u/Library/Application Support/Google/Chrome/NativeMessagingHosts"},
		{goos: "darwin", browser: BrowserChromium, want: "/home/u/Library/Application Support/Chromium/NativeMessagingHosts"},
		{goos: "linux", browser: "firefox", wantErr: true},
		{goos: "windows", browser: BrowserChrome, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.browser, func(t *testing.T) {
			got, err := manifestDir(tt.goos, "/home/u", "/cfg", tt.browser)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestInstall(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "NativeMessagingHosts")
	m, err := NewManifest("/opt/tab-recall", []string{testExtensionID})
	require.NoError(t, err)

	path, err := Install(dir, m)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, HostName+".json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var back Manifest
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)
}
