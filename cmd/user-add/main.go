// user-add creates or updates an entry in the quill auth file. Passwords
// are prompted without echo when stdin is a terminal, or read from stdin
// when piped (for scripted provisioning).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/term"

	"quill/internal/auth"
)

func main() {
	authFile := flag.String("f", "", "auth file path (default $QUILL_AUTH_FILE or $QUILL_DATA_PATH/auth.txt)")
	force := flag.Bool("force", false, "overwrite an existing user without asking")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: user-add [-f authfile] [-force] <username>")
		os.Exit(2)
	}
	user := strings.TrimSpace(flag.Arg(0))
	if user == "" || strings.ContainsAny(user, ": \t") {
		fmt.Fprintln(os.Stderr, "username must be non-empty and contain no ':' or whitespace")
		os.Exit(2)
	}

	path := *authFile
	if path == "" {
		path = defaultAuthPath()
	}

	if err := run(path, user, *force); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "updated %s\n", path)
}

func defaultAuthPath() string {
	if v := os.Getenv("QUILL_AUTH_FILE"); v != "" {
		return v
	}
	data := os.Getenv("QUILL_DATA_PATH")
	if data == "" {
		data = ".quill"
	}
	return filepath.Join(data, "auth.txt")
}

func run(path, user string, force bool) error {
	users, err := loadExisting(path)
	if err != nil {
		return err
	}
	if _, exists := users[user]; exists && !force {
		if !confirm(fmt.Sprintf("User %q exists. Update password? [y/N]: ", user)) {
			return fmt.Errorf("no changes made")
		}
	}

	password, err := readPassword()
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	users[user] = hash
	return writeAuthFile(path, users)
}

// loadExisting tolerates a missing file but rejects a corrupt one, so a
// typo'd path never silently starts a new user database next to the real
// one with one mangled entry.
func loadExisting(path string) (map[string]string, error) {
	users := make(map[string]string)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return users, nil
		}
		return nil, fmt.Errorf("read auth file: %w", err)
	}
	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, hash, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("invalid auth line %d: expected user:hash", i+1)
		}
		users[name] = hash
	}
	return users, nil
}

func writeAuthFile(path string, users map[string]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create auth dir: %w", err)
	}

	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s:%s\n", name, users[name])
	}

	tmp, err := os.CreateTemp(dir, ".auth-*")
	if err != nil {
		return fmt.Errorf("create temp auth file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("write auth file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		// Piped input: first line is the password.
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(os.Stderr, "Confirm: ")
	again, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read confirmation: %w", err)
	}
	if string(pass) != string(again) {
		return "", fmt.Errorf("passwords do not match")
	}
	return strings.TrimSpace(string(pass)), nil
}

func confirm(prompt string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	fmt.Fprint(os.Stderr, prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
