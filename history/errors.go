package history

import "strconv"

// LoadErrorKind classifies load failures.
type LoadErrorKind int

const (
	// LoadCorrupt indicates the file could not be decompressed or decoded.
	LoadCorrupt LoadErrorKind = iota
	// LoadIncompatibleVersion indicates a format version with no migration.
	LoadIncompatibleVersion
	// LoadIO indicates the file could not be read.
	LoadIO
)

func (k LoadErrorKind) String() string {
	switch k {
	case LoadCorrupt:
		return "corrupt"
	case LoadIncompatibleVersion:
		return "incompatible version"
	case LoadIO:
		return "io"
	}
	return "LoadErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// LoadError is an error from loading a history container. The caller is
// expected to continue with an empty container; a LoadError never means the
// application cannot run.
type LoadError struct {
	// Kind classifies the failure.
	Kind LoadErrorKind
	// Path is the file that failed to load.
	Path string
	// Version is the format version read from the file, when one was read.
	Version uint32
	// Err is the underlying error, if any.
	Err error
}

func (err *LoadError) Error() string {
	msg := "load history " + err.Path + ": " + err.Kind.String()
	if err.Kind == LoadIncompatibleVersion {
		msg += " " + strconv.FormatUint(uint64(err.Version), 10)
	}
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *LoadError) Unwrap() error {
	return err.Err
}

// SaveError is an error from saving a history container. The in-memory
// container is untouched, so saving can be retried.
type SaveError struct {
	// Path is the file that failed to save.
	Path string
	// Err is the underlying error.
	Err error
}

func (err *SaveError) Error() string {
	return "save history " + err.Path + ": " + err.Err.Error()
}

func (err *SaveError) Unwrap() error {
	return err.Err
}
