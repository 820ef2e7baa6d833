package fingerprint

import (
	"crypto/md5" //nolint:gosec // MD5 is the registry's content identity, not a security primitive
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// BlockSize is the number of bytes read from a file per hash update.
const BlockSize = 4096

// ErrUnreadable is returned when a file cannot be opened or read.
var ErrUnreadable = errors.New("file is not readable")

// File returns the lowercase hex MD5 digest of the file at path.
// Permission and I/O errors are wrapped with ErrUnreadable.
func File(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // paths come from the directory walk
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer f.Close()

	digest, err := Reader(f)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}
	return digest, nil
}

// Reader returns the lowercase hex MD5 digest of everything read from r.
func Reader(r io.Reader) (string, error) {
	h := md5.New() //nolint:gosec // see import comment
	buf := make([]byte, BlockSize)
	if _, err := io.CopyBuffer(h, onlyReader{r}, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// onlyReader hides any WriterTo implementation so io.CopyBuffer always
// goes through buf in BlockSize chunks.
type onlyReader struct {
	io.Reader
}
