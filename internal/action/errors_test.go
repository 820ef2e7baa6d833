package action

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"testing"
)

func TestCategorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Reason
	}{
		{name: "not exist", err: &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist}, want: ReasonNotFound},
		{name: "permission", err: &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission}, want: ReasonPermissionDenied},
		{name: "ENOSPC", err: &fs.PathError{Op: "write", Path: "/x", Err: syscall.ENOSPC}, want: ReasonNoSpace},
		{name: "EROFS", err: fmt.Errorf("wrapped: %w", syscall.EROFS), want: ReasonPermissionDenied},
		{name: "missing destination", err: ErrMissingDestination, want: ReasonInvalidDestination},
		{name: "same file", err: ErrSameFile, want: ReasonInvalidDestination},
		{name: "other", err: errors.New("boom"), want: ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := categorize("copy", "/x", tt.err)
			if got.Reason != tt.want {
				t.Errorf("Reason = %v, want %v", got.Reason, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("categorized error does not wrap %v", tt.err)
			}
		})
	}

	if categorize("copy", "/x", nil) != nil {
		t.Error("categorize(nil) should be nil")
	}
}

func TestError_Error(t *testing.T) {
	t.Parallel()

	err := &Error{Op: "delete", Path: "/data/a.txt", Reason: ReasonNotFound, Err: os.ErrNotExist}
	want := "delete /data/a.txt: not found: file does not exist"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
