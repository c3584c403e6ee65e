// Package gitvcs provides the Git-backed VCS adapter using go-git.
package gitvcs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/tarkah/diffview/internal/rev"
)

// Adapter wraps a go-git repository and exposes the paths, hashes, and
// content lookups the file entry core and the file list scanner need.
type Adapter struct {
	repo    *git.Repository
	root    string
	metaDir string
}

// Open opens the repository containing path, walking up to find the .git
// directory the way the git CLI does.
func Open(path string) (*Adapter, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	adapter := &Adapter{repo: repo, root: wt.Filesystem.Root()}

	if st, ok := repo.Storer.(*filesystem.Storage); ok {
		adapter.metaDir = st.Filesystem().Root()
	} else {
		adapter.metaDir = filepath.Join(adapter.root, git.GitDirName)
	}

	return adapter, nil
}

// Root returns the repository's top-level working directory.
func (a *Adapter) Root() string {
	return a.root
}

// MetaDir returns the repository metadata directory (the .git directory).
func (a *Adapter) MetaDir() string {
	return a.metaDir
}

// IndexPath returns the on-disk path of the staging index.
func (a *Adapter) IndexPath() string {
	return filepath.Join(a.metaDir, "index")
}

// StageHash returns the blob hash recorded in the index for path at the
// given stage. ok is false when no such entry exists or the index cannot
// be read; callers treat that as "hash unavailable".
func (a *Adapter) StageHash(path string, stage int) (string, bool) {
	idx, err := a.repo.Storer.Index()
	if err != nil {
		return "", false
	}
	for _, e := range idx.Entries {
		if e.Name == path && int(e.Stage) == stage {
			return e.Hash.String(), true
		}
	}
	return "", false
}

// Head resolves the current HEAD commit as a head-tracking revision.
func (a *Adapter) Head() (rev.Rev, error) {
	ref, err := a.repo.Head()
	if err != nil {
		return rev.Rev{}, fmt.Errorf("resolving HEAD: %w", err)
	}
	return rev.NewHead(ref.Hash().String()), nil
}

// Status returns the worktree status for every changed path.
func (a *Adapter) Status() (git.Status, error) {
	wt, err := a.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	st, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("computing status: %w", err)
	}
	return st, nil
}

// BlobContent reads the content of a blob object by hash.
func (a *Adapter) BlobContent(hash string) ([]byte, error) {
	blob, err := a.repo.BlobObject(plumbing.NewHash(hash))
	if err != nil {
		return nil, fmt.Errorf("getting blob %s: %w", hash, err)
	}
	r, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("opening blob %s: %w", hash, err)
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", hash, err)
	}
	return content, nil
}

// HeadFileContent reads path from the HEAD commit tree. ok is false when
// the path does not exist at HEAD.
func (a *Adapter) HeadFileContent(path string) ([]byte, bool, error) {
	ref, err := a.repo.Head()
	if err != nil {
		return nil, false, nil
	}

	commit, err := a.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, false, fmt.Errorf("getting HEAD commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, false, fmt.Errorf("getting HEAD tree: %w", err)
	}

	f, err := tree.File(path)
	if err != nil {
		return nil, false, nil
	}

	content, err := f.Contents()
	if err != nil {
		return nil, false, fmt.Errorf("reading %s at HEAD: %w", path, err)
	}
	return []byte(content), true, nil
}

// WorktreeFileContent reads path from the working directory. ok is false
// when the file does not exist.
func (a *Adapter) WorktreeFileContent(path string) ([]byte, os.FileInfo, bool, error) {
	full := filepath.Join(a.root, filepath.FromSlash(path))
	info, err := os.Stat(full)
	if err != nil {
		return nil, nil, false, nil
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	return content, info, true, nil
}

// RelPath converts an absolute path inside the repository to the
// slash-separated form git records.
func (a *Adapter) RelPath(abs string) (string, error) {
	r, err := filepath.Rel(a.root, abs)
	if err != nil {
		return "", fmt.Errorf("relativizing %s: %w", abs, err)
	}
	if strings.HasPrefix(r, "..") {
		return "", fmt.Errorf("path %s is outside the repository", abs)
	}
	return filepath.ToSlash(r), nil
}
