package hasher

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrInvalidArgument is returned synchronously when no file path could be
	// determined from the caller's input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedAlgorithm matches every *UnsupportedAlgorithmError.
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")
	// ErrIO matches every *IOError.
	ErrIO = errors.New("i/o failure")
)

// UnsupportedAlgorithmError reports a hash name the registry does not know.
type UnsupportedAlgorithmError struct {
	Name string
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("unsupported hash algorithm %q", e.Name)
}

func (e *UnsupportedAlgorithmError) Is(target error) bool {
	return target == ErrUnsupportedAlgorithm
}

// IOError reports a failure to open or read the file being hashed.
// The underlying error is kept as-is so callers can still match
// fs.ErrNotExist, fs.ErrPermission or inspect the *fs.PathError.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// Code returns a machine-readable classification of the failure:
// "ENOENT", "EACCES" or "EIO".
func (e *IOError) Code() string {
	switch {
	case errors.Is(e.Err, fs.ErrNotExist):
		return "ENOENT"
	case errors.Is(e.Err, fs.ErrPermission):
		return "EACCES"
	default:
		return "EIO"
	}
}
