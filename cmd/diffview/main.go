// Package main provides the diffview CLI.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tarkah/diffview/internal/buffer"
	"github.com/tarkah/diffview/internal/cache"
	"github.com/tarkah/diffview/internal/config"
	"github.com/tarkah/diffview/internal/entry"
	"github.com/tarkah/diffview/internal/filelist"
	"github.com/tarkah/diffview/internal/gitvcs"
	"github.com/tarkah/diffview/internal/watch"
)

const configFileName = ".diffview.yml"

var rootCmd = &cobra.Command{
	Use:   "diffview",
	Short: "Inspect diffed file entries for a Git repository",
	Long:  `diffview lists the changed files of a repository as diff entries (two-way for ordinary changes, four-way for merge conflicts) and can watch the index to keep staged buffers consistent.`,
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the changed files with their diff stats",
	RunE:  runFiles,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the index and revalidate entries on change",
	RunE:  runWatch,
}

var (
	repoPath   string
	configPath string
	noCache    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&repoPath, "repo", ".", "Path inside the Git repository")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: <repo>/.diffview.yml)")
	filesCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the file digest cache")

	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(root string) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(root, configFileName)
		if _, err := os.Stat(path); err != nil {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func openDigests(adapter *gitvcs.Adapter) *cache.DigestCache {
	if noCache {
		return nil
	}
	digests, err := cache.OpenDigestCache(filepath.Join(adapter.MetaDir(), "diffview"))
	if err != nil {
		// Scans work without the cache, just slower.
		return nil
	}
	return digests
}

func scan(adapter *gitvcs.Adapter, cfg *config.Config, digests *cache.DigestCache) ([]*entry.FileEntry, error) {
	return filelist.Scan(adapter, filelist.Options{
		Digests: digests,
		Match:   cfg.MatchPath,
	})
}

func printEntries(entries []*entry.FileEntry) {
	if len(entries) == 0 {
		fmt.Println("no changes")
		return
	}
	for _, e := range entries {
		if e.Kind == entry.Conflicting {
			fmt.Printf("%s  %-48s  !%d\n", e.Status, e.Path, e.Stats.Conflicts)
			continue
		}
		path := e.Path
		if e.OldPath != "" {
			path = fmt.Sprintf("%s -> %s", e.OldPath, e.Path)
		}
		fmt.Printf("%s  %-48s  +%d -%d\n", e.Status, path, e.Stats.Additions, e.Stats.Deletions)
	}
}

func runFiles(cmd *cobra.Command, args []string) error {
	adapter, err := gitvcs.Open(repoPath)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(adapter.Root())
	if err != nil {
		return err
	}

	digests := openDigests(adapter)
	if digests != nil {
		defer digests.Close()
	}

	entries, err := scan(adapter, cfg, digests)
	if err != nil {
		return err
	}
	defer destroyAll(entries)

	printEntries(entries)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	adapter, err := gitvcs.Open(repoPath)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(adapter.Root())
	if err != nil {
		return err
	}
	if !cfg.Watch.Enabled {
		return fmt.Errorf("watching is disabled in the config")
	}

	digests := openDigests(adapter)
	if digests != nil {
		defer digests.Close()
	}

	entries, err := scan(adapter, cfg, digests)
	if err != nil {
		return err
	}
	printEntries(entries)

	opener := dialEditor(logger)
	if opener != nil {
		defer opener.Close()
		attachEditorBuffers(opener, adapter.Root(), entries, logger)
	}

	sc := cache.NewStatCache()
	entry.RefreshIndexStat(adapter, sc, nil)

	w, err := watch.New(adapter.IndexPath(), cfg.Debounce(), func(st os.FileInfo) {
		opts := entry.ValidateOptions{
			Stat:   st,
			Logger: logger,
			Notify: func(msg string) { fmt.Fprintln(os.Stderr, "warning: "+msg) },
		}
		for _, e := range entries {
			e.ValidateStageBuffers(adapter, sc, opts)
		}
		entry.RefreshIndexStat(adapter, sc, st)

		fresh, err := scan(adapter, cfg, digests)
		if err != nil {
			logger.Warn("rescan failed", zap.Error(err))
			return
		}
		destroyAll(entries)
		entries = fresh
		if opener != nil {
			attachEditorBuffers(opener, adapter.Root(), entries, logger)
		}

		fmt.Println("---")
		printEntries(entries)
	}, logger)
	if err != nil {
		return err
	}

	if err := w.Start(); err != nil {
		return err
	}

	logger.Info("watching index", zap.String("path", adapter.IndexPath()))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	// Stop before tearing down: the callback reads and replaces entries
	// on the watcher goroutine, and Stop waits it out.
	w.Stop()
	destroyAll(entries)
	return nil
}

// bufferOpener loads a file into an editor buffer. *editorClient is the
// live implementation.
type bufferOpener interface {
	Open(path string) (buffer.Buffer, error)
	Close() error
}

type editorClient struct {
	c *buffer.NvimClient
}

func (e *editorClient) Open(path string) (buffer.Buffer, error) { return e.c.Open(path) }
func (e *editorClient) Close() error                            { return e.c.Close() }

// dialEditor connects to a running Neovim instance when one advertises
// itself through the environment. Watching still works without an
// editor; validation then has no buffers to act on.
func dialEditor(logger *zap.Logger) bufferOpener {
	if os.Getenv("NVIM_LISTEN_ADDRESS") == "" && os.Getenv("NVIM") == "" {
		return nil
	}
	client, err := buffer.DialNvim()
	if err != nil {
		logger.Warn("connecting to nvim", zap.Error(err))
		return nil
	}
	return &editorClient{c: client}
}

// attachEditorBuffers opens an editor buffer for every staged handle
// that does not already carry one, so index changes can be checked
// against live editor state.
func attachEditorBuffers(opener bufferOpener, root string, entries []*entry.FileEntry, logger *zap.Logger) {
	for _, e := range entries {
		if e.Layout == nil {
			continue
		}
		for _, f := range e.Layout.Files() {
			if !f.Valid() || f.Rev == nil || !f.Rev.Staged() {
				continue
			}
			if b := f.Buffer(); b != nil && b.Valid() {
				continue
			}
			buf, err := opener.Open(filepath.Join(root, f.Path))
			if err != nil {
				logger.Warn("opening editor buffer", zap.String("path", f.Path), zap.Error(err))
				continue
			}
			f.AttachBuffer(buf)
		}
	}
}

func destroyAll(entries []*entry.FileEntry) {
	for _, e := range entries {
		e.Destroy()
	}
}
