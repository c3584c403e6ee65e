// Package rev models revision identity for diffed file content.
package rev

import "fmt"

// Kind identifies the source a revision points at.
type Kind int

// Revision kinds.
const (
	Local  Kind = iota // the working tree
	Commit             // a commit object
	Stage              // an index stage entry
	Custom             // adapter-defined pseudo revision
)

// Rev identifies a single content source for a file: a commit, an index
// stage, the local working tree, or an adapter-defined pseudo source.
type Rev struct {
	Kind Kind

	// Hash is the commit object id. Only set for Commit revisions.
	Hash string

	// Stage is the index stage number (0 = normal, 1-3 = merge participants).
	// Only meaningful for Stage revisions.
	Stage int

	// TracksHead marks a revision that should follow a moving branch head.
	TracksHead bool
}

// NewLocal returns a revision for the working tree.
func NewLocal() Rev {
	return Rev{Kind: Local}
}

// NewCommit returns a revision for a commit object.
func NewCommit(hash string) Rev {
	return Rev{Kind: Commit, Hash: hash}
}

// NewHead returns a commit revision that tracks the branch head.
func NewHead(hash string) Rev {
	return Rev{Kind: Commit, Hash: hash, TracksHead: true}
}

// NewStage returns a revision for an index stage entry.
func NewStage(stage int) Rev {
	return Rev{Kind: Stage, Stage: stage}
}

// NewCustom returns an adapter-defined pseudo revision.
func NewCustom() Rev {
	return Rev{Kind: Custom}
}

// Staged reports whether the revision identifies index-resident content.
func (r Rev) Staged() bool {
	return r.Kind == Stage
}

// Conflicted reports whether the revision is a merge-conflict participant.
func (r Rev) Conflicted() bool {
	return r.Kind == Stage && r.Stage != 0
}

// Object returns the revision in object-name form: the commit hash,
// ":<stage>" for stage revisions, or a symbolic name otherwise.
func (r Rev) Object() string {
	switch r.Kind {
	case Local:
		return "LOCAL"
	case Commit:
		return r.Hash
	case Stage:
		return fmt.Sprintf(":%d", r.Stage)
	default:
		return "CUSTOM"
	}
}

// Abbrev returns a shortened object name, truncating commit hashes to n
// characters.
func (r Rev) Abbrev(n int) string {
	if r.Kind == Commit && n > 0 && n < len(r.Hash) {
		return r.Hash[:n]
	}
	return r.Object()
}
