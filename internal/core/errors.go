package core

import "errors"

var (
	// ErrNoDirectory is returned when the directory to scan is missing or not a directory.
	ErrNoDirectory = errors.New("no directory selected")

	// ErrInvalidUTF8 is returned when a Markdown file is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("file is not valid UTF-8")

	ErrNoTargets         = errors.New("no references selected")
	ErrEmptyReplacement  = errors.New("replacement name is empty")
	ErrBadReplacement    = errors.New("replacement name may not contain \"]]\" or line breaks")
	ErrCrossGroup        = errors.New("rewrite targets belong to more than one group")
	ErrUnknownGroup      = errors.New("group not found")
	ErrNotInGroup        = errors.New("occurrence is not a member of the group")
	ErrStaleOccurrence   = errors.New("reference not found on line")
	ErrNothingToUndo     = errors.New("nothing to undo")
	ErrUndoConflict      = errors.New("file changed since the batch was applied")
	ErrInvalidPolicyName = errors.New("invalid grouping policy")
)
