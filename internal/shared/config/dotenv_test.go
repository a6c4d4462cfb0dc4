package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := `# local settings
DOTENV_TEST_PLAIN=hello
export DOTENV_TEST_EXPORTED=from-export
DOTENV_TEST_QUOTED="postgres://localhost/blood"
malformed line without equals
DOTENV_TEST_SINGLE='quoted'
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{
		"DOTENV_TEST_PLAIN", "DOTENV_TEST_EXPORTED",
		"DOTENV_TEST_QUOTED", "DOTENV_TEST_SINGLE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	loadEnvFiles(path, filepath.Join(dir, "missing.env"))

	want := map[string]string{
		"DOTENV_TEST_PLAIN":    "hello",
		"DOTENV_TEST_EXPORTED": "from-export",
		"DOTENV_TEST_QUOTED":   "postgres://localhost/blood",
		"DOTENV_TEST_SINGLE":   "quoted",
	}
	for key, val := range want {
		if got := os.Getenv(key); got != val {
			t.Errorf("%s = %q, want %q", key, got, val)
		}
	}
}
