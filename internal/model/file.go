package model

import (
	"strings"
)

// KindFile is the kind reported for names without an extension.
const KindFile = "file"

// FileRecord is the metadata submitted to the registry for one file.
// It is built once per visited file and submitted at most once.
type FileRecord struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	Kind      string `json:"kind"`
	Digest    string `json:"md5"`
	ParentDir string `json:"parent_dir"`
	FullPath  string `json:"full_path"`
	Duplicate bool   `json:"duplicate"`
}

// KindOf returns the lowercased final extension of name, including the
// leading dot, or KindFile when name has no extension. A name that only
// starts with a dot (".bashrc") or ends with one ("notes.") has none.
func KindOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return KindFile
	}
	return strings.ToLower(name[i:])
}

// FileScan is the transient per-file state carried through the pipeline.
// Each step reads what earlier steps filled in and adds its own part.
type FileScan struct {
	// Path is the absolute path of the file.
	Path string

	// Name is the base name of the file.
	Name string

	// ParentDir is the bare name of the directory containing the file.
	ParentDir string

	// Size is the file size observed when the file was discovered.
	Size int64

	// Digest is the lowercase hex content digest.
	Digest string

	// Matches are the registry entries returned by validation.
	Matches []RegistryMatch

	// Outcome is the validation classification.
	Outcome Outcome

	// Action is the action directed by the first match, if any.
	Action Action

	// ConflictingActions is set when the matches disagree on the action.
	// Only the first match's action is honored.
	ConflictingActions bool

	// ActionPerformed is set when the directed action physically ran.
	ActionPerformed bool

	// ActionError holds the failure of the directed action. A failed action
	// does not fail the file.
	ActionError error

	// Submitted is set when the record was sent to the registry.
	Submitted bool
}

// NewFileScan creates the state for a discovered file.
func NewFileScan(path, name, parentDir string, size int64) *FileScan {
	return &FileScan{
		Path:      path,
		Name:      name,
		ParentDir: parentDir,
		Size:      size,
		Outcome:   OutcomeUnknown,
	}
}

// Record builds the FileRecord submitted to the registry.
// size is passed separately because the file is re-inspected right before
// submission.
func (f *FileScan) Record(size int64) FileRecord {
	return FileRecord{
		Name:      f.Name,
		Size:      size,
		Kind:      KindOf(f.Name),
		Digest:    f.Digest,
		ParentDir: f.ParentDir,
		FullPath:  f.Path,
		Duplicate: f.Outcome.IsDuplicate(),
	}
}
