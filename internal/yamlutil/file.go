package yamlutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrorKind classifies a failure to load a YAML input file.
type ErrorKind int

const (
	// KindNotFound means the file does not exist.
	KindNotFound ErrorKind = iota + 1
	// KindParse means the file exists but is malformed or has the wrong shape.
	KindParse
	// KindRead means the file exists but could not be read.
	KindRead
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindParse:
		return "parse-error"
	case KindRead:
		return "read-error"
	default:
		return "unknown"
	}
}

// LoadError reports a YAML input file that could not be loaded.
type LoadError struct {
	Path string
	Kind ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("file not found: %s", e.Path)
	case KindParse:
		return fmt.Sprintf("parsing YAML file %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }

// ParseError wraps err as a KindParse LoadError for path.
func ParseError(path string, err error) *LoadError {
	return &LoadError{Path: path, Kind: KindParse, Err: err}
}

// IsNotFound reports whether err is a KindNotFound LoadError.
func IsNotFound(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == KindNotFound
}

// IsParse reports whether err is a KindParse LoadError.
func IsParse(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == KindParse
}

// ReadFile reads path, classifying a missing file as KindNotFound and any
// other failure as KindRead.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied input path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Path: path, Kind: KindNotFound, Err: err}
		}

		return nil, &LoadError{Path: path, Kind: KindRead, Err: err}
	}

	return data, nil
}

// RequireSingleDocument fails when data holds more than one YAML document.
func RequireSingleDocument(data []byte) error {
	if n := len(SplitDocuments(data)); n > 1 {
		return fmt.Errorf("expected a single YAML document, found %d", n)
	}

	return nil
}
