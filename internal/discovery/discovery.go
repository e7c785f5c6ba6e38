package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxDepth limits how far below each root the scan descends
const DefaultMaxDepth = 5

// skipDirs are never scanned for working copies
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	"venv":         true,
	"Library":      true, // Unity import cache
	"Temp":         true,
}

// Scan walks roots looking for Subversion working copies. A directory that
// contains a .svn directory is reported once and not descended into.
// Results are absolute paths in walk order.
func Scan(ctx context.Context, roots []string, maxDepth int) ([]string, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	var found []string
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return found, fmt.Errorf("failed to resolve %s: %w", root, err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return found, fmt.Errorf("scan root is not a directory: %s", root)
		}

		paths, err := scanDirectory(ctx, abs, maxDepth)
		found = append(found, paths...)
		if err != nil {
			return found, err
		}
	}
	return found, nil
}

// scanDirectory walks a single root
func scanDirectory(ctx context.Context, root string, maxDepth int) ([]string, error) {
	var found []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		// Skip on error
		if err != nil {
			log.Printf("Error walking path %s: %v", path, err)
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if path != root {
			name := d.Name()
			if strings.HasPrefix(name, ".") || skipDirs[name] {
				return filepath.SkipDir
			}
		}

		relPath, _ := filepath.Rel(root, path)
		depth := 0
		if relPath != "." {
			depth = strings.Count(relPath, string(filepath.Separator)) + 1
		}
		if depth > maxDepth {
			return filepath.SkipDir
		}

		if isWorkingCopy(path) {
			found = append(found, path)
			// svn 1.7+ keeps a single .svn at the root; nested folders belong to it
			return filepath.SkipDir
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return found, err
		}
		log.Printf("Error scanning directory %s: %v", root, err)
		return found, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	log.Printf("Scan of %s found %d working copies", root, len(found))
	return found, nil
}

func isWorkingCopy(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".svn"))
	return err == nil && info.IsDir()
}
