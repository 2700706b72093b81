package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driving"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.Watcher = (*WatchService)(nil)

// DefaultDebounce batches bursts of filesystem events into one upload.
const DefaultDebounce = 500 * time.Millisecond

// IsUploadable filters which changed files are mirrored to the
// repository.
type IsUploadable func(path string) bool

// WatchService mirrors local file edits to the deployment's source
// repository. The hosting platform redeploys on push, so uploading the
// changed files is the whole redeploy trigger.
type WatchService struct {
	repoHost   driven.RepositoryHost
	uploadable IsUploadable
	debounce   time.Duration
}

// NewWatchService creates a watch service. uploadable may be nil to
// mirror every non-hidden file.
func NewWatchService(repoHost driven.RepositoryHost, uploadable IsUploadable, debounce time.Duration) *WatchService {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if uploadable == nil {
		uploadable = func(string) bool { return true }
	}
	return &WatchService{
		repoHost:   repoHost,
		uploadable: uploadable,
		debounce:   debounce,
	}
}

// Watch blocks, uploading changed files to the repository until the
// context is cancelled. Directories created while watching are added
// to the watch set.
func (s *WatchService) Watch(ctx context.Context, path, repoFullName string) error {
	root, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addDirsRecursive(watcher, root); err != nil {
		return err
	}
	logger.Info("watching %s, mirroring changes to %s", root, repoFullName)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if isHidden(root, event.Name) {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if event.Op&fsnotify.Create != 0 {
					_ = addDirsRecursive(watcher, event.Name)
				}
				continue
			}
			if !s.uploadable(event.Name) {
				continue
			}

			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			timerC = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case <-timerC:
			timerC = nil
			batch := pending
			pending = make(map[string]struct{})
			if err := s.uploadBatch(ctx, root, repoFullName, batch); err != nil {
				logger.Warn("watch: upload failed: %v", err)
			}
		}
	}
}

func (s *WatchService) uploadBatch(ctx context.Context, root, repoFullName string, batch map[string]struct{}) error {
	files := make(map[string]string, len(batch))
	for abs := range batch {
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			continue
		}
		content, err := os.ReadFile(abs)
		if err != nil {
			// Deleted between event and upload.
			continue
		}
		files[filepath.ToSlash(rel)] = string(content)
	}
	if len(files) == 0 {
		return nil
	}

	report, err := s.repoHost.UploadFiles(ctx, repoFullName, files, "Sync local changes")
	if err != nil {
		return err
	}
	if !report.Success() {
		return fmt.Errorf("%d files failed to upload", len(report.Failed))
	}
	logger.Info("uploaded %d changed files", len(report.Uploaded))
	return nil
}

func addDirsRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// isHidden reports whether any path element below root is dot-prefixed.
func isHidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
