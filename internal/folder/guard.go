package folder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Guard keeps file access inside one folder
type Guard struct {
	root string
}

// NewGuard creates a guard for root, which must be non-empty
func NewGuard(root string) (*Guard, error) {
	if root == "" {
		return nil, fmt.Errorf("folder cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve folder: %w", err)
	}
	return &Guard{root: filepath.Clean(abs)}, nil
}

// Root returns the guarded folder
func (g *Guard) Root() string {
	return g.root
}

// Resolve turns a file name or path into an absolute path inside the folder
func (g *Guard) Resolve(name string) (string, error) {
	name = strings.ReplaceAll(name, "\x00", "")
	if name == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(g.root, name)
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !g.Within(abs) {
		return "", fmt.Errorf("path is outside the invoice folder: %s", name)
	}
	return abs, nil
}

// Within reports whether path is the folder itself or lies inside it, also
// after resolving symlinks on either side
func (g *Guard) Within(path string) bool {
	clean := filepath.Clean(path)

	resolvedPath := clean
	if info, err := os.Lstat(clean); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(clean); err == nil {
			resolvedPath = resolved
		}
	}

	realRoot := g.root
	if resolved, err := filepath.EvalSymlinks(g.root); err == nil {
		realRoot = resolved
	}

	inside := func(p string) bool {
		for _, root := range []string{g.root, realRoot} {
			if p == root || strings.HasPrefix(p, root+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}
	return inside(clean) && inside(resolvedPath)
}
