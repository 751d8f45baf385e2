package config

import (
	"bufio"
	"os"
	"strings"
)

const envFileName = ".env"

// initEnvFile seeds a .env template on first run and folds its values into
// the environment. Real environment variables always win over file values.
func initEnvFile() {
	if _, err := os.Stat(envFileName); os.IsNotExist(err) {
		_ = writeEnvTemplate()
	}
	_ = loadEnvFile()
}

func writeEnvTemplate() error {
	var b strings.Builder
	b.WriteString("# quill configuration; values here are fallbacks for unset env vars.\n")
	b.WriteString("QUILL_DATA_PATH=.quill\n")
	b.WriteString("# QUILL_GEN_API_KEY=\n")
	return os.WriteFile(envFileName, []byte(b.String()), 0o600)
}

func loadEnvFile() error {
	f, err := os.Open(envFileName)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		if key == "" || os.Getenv(key) != "" {
			continue
		}
		_ = os.Setenv(key, val)
	}
	return scanner.Err()
}
