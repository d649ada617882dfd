package visualization

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestOpenBrowser_SupportedPlatform(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		// Supported
	default:
		t.Skipf("skipping on unsupported platform: %s", runtime.GOOS)
	}
}

func TestFileURL(t *testing.T) {
	dir := t.TempDir()
	got, err := FileURL(filepath.Join(dir, "report.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "/report.html") {
		t.Errorf("unexpected URL %q", got)
	}
}
