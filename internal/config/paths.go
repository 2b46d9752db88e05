package config

import (
	"os"
	"path/filepath"
	"strings"
)

// resolvePath expands $VAR references and a leading ~ in p, then anchors a
// relative result at root. An empty root leaves relative paths alone.
func resolvePath(p, root string) string {
	if p == "" {
		return p
	}
	p = expandHome(os.ExpandEnv(p))
	if root != "" && !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return p
}

func expandHome(p string) string {
	rest, ok := strings.CutPrefix(p, "~")
	if !ok || (rest != "" && rest[0] != '/' && rest[0] != filepath.Separator) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, rest)
}
