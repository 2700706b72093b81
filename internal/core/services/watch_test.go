package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWatch_MirrorsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	repoHost := newFakeRepoHost()
	svc := NewWatchService(repoHost, nil, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx, dir, "octocat/app") }()

	// Give the watcher time to register the directory.
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("print('hi')"), 0644))

	waitFor(t, func() bool {
		_, ok := repoHost.uploadedFile("main.py")
		return ok
	})
	content, _ := repoHost.uploadedFile("main.py")
	assert.Equal(t, "print('hi')", content)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatch_SkipsHiddenAndFilteredFiles(t *testing.T) {
	dir := t.TempDir()
	repoHost := newFakeRepoHost()
	uploadable := func(path string) bool { return !strings.HasSuffix(path, ".pyc") }
	svc := NewWatchService(repoHost, uploadable, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx, dir, "octocat/app") }()
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("secret"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cache.pyc"), []byte("bytecode"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte("code"), 0644))

	waitFor(t, func() bool {
		_, ok := repoHost.uploadedFile("app.py")
		return ok
	})
	_, hidden := repoHost.uploadedFile(".env")
	assert.False(t, hidden)
	_, filtered := repoHost.uploadedFile("cache.pyc")
	assert.False(t, filtered)

	cancel()
	<-done
}

func TestWatch_PicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()
	repoHost := newFakeRepoHost()
	svc := NewWatchService(repoHost, nil, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx, dir, "octocat/app") }()
	time.Sleep(200 * time.Millisecond)

	sub := filepath.Join(dir, "templates")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "index.html"), []byte("<html>"), 0644))

	waitFor(t, func() bool {
		_, ok := repoHost.uploadedFile("templates/index.html")
		return ok
	})

	cancel()
	<-done
}

func TestWatch_BadPath(t *testing.T) {
	svc := NewWatchService(newFakeRepoHost(), nil, 0)
	err := svc.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), "octocat/app")
	require.Error(t, err)
}
