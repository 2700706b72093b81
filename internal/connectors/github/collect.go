package github

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// uploadableExtensions are the file types pushed to the repository.
// Matches the text/code extensions the pipeline deploys.
var uploadableExtensions = map[string]bool{
	".py":   true,
	".html": true,
	".css":  true,
	".js":   true,
	".json": true,
	".yaml": true,
	".yml":  true,
	".toml": true,
	".txt":  true,
	".md":   true,
	".sh":   true,
}

// CollectFiles walks the project tree and returns a path->content map
// of every uploadable file. Paths use forward slashes relative to root.
// Hidden directories and files that are not valid UTF-8 are skipped.
func CollectFiles(root string) (map[string]string, error) {
	files := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if !uploadableExtensions[strings.ToLower(filepath.Ext(name))] {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !utf8.Valid(content) {
			return nil // binary content under a text extension
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Uploadable reports whether a path would be collected by CollectFiles.
// Used by watch mode to filter filesystem events.
func Uploadable(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return uploadableExtensions[strings.ToLower(filepath.Ext(name))]
}
