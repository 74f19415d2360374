package adapter

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultTrustedPaths are the directories a provider binary may live in
// without being flagged as untrusted. Operators can extend the list via
// configuration.
var DefaultTrustedPaths = []string{
	"/opt/homebrew/bin",
	"/usr/local/bin",
	"/usr/bin",
	"/bin",
	"~/.local/bin",
}

// resolveBinary resolves an adapter's binary reference to a full path. An
// override that already carries a path separator is used verbatim; a bare
// name, whether an override or a built-in default, goes through PATH so
// trust classification sees where the binary actually lives.
func resolveBinary(override string, names ...string) string {
	if override != "" {
		if strings.ContainsRune(override, os.PathSeparator) {
			return override
		}
		names = []string{override}
	}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// TrustedPath reports whether binary resolves under one of the allow-listed
// directory prefixes. A leading "~" in a prefix expands to the home dir.
func TrustedPath(binary string, prefixes []string) bool {
	if binary == "" {
		return false
	}
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				continue
			}
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
		if strings.HasPrefix(binary, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
