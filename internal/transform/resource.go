package transform

import (
	"fmt"
	"path"
	"strings"
)

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind classifies a resource by name.
type Kind int

const (
	// KindClass is a compiled class file.
	KindClass Kind = iota
	// KindService is a service provider configuration file; only its name
	// is migrated.
	KindService
	// KindText is a text resource rewritten by literal substitution.
	KindText
	// KindOther resources are passed through.
	KindOther
)

// ServicePrefix is the directory of service provider configuration files.
const ServicePrefix = "META-INF/services/"

// Resource is a named byte buffer, such as an archive member.
type Resource struct {
	Name string
	Data []byte
}

// ResourceError is a failure to transform one resource.
type ResourceError struct {
	Name string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Classify returns the kind of the resource called name.
func (s *Session) Classify(name string) Kind {
	switch {
	case strings.HasSuffix(name, ".class"):
		return KindClass
	case isService(name):
		return KindService
	case s.extensions.Contains(strings.ToLower(path.Ext(name))):
		return KindText
	default:
		return KindOther
	}
}

func isService(name string) bool {
	rest, ok := strings.CutPrefix(name, ServicePrefix)

	return ok && rest != "" && !strings.Contains(rest, "/")
}
