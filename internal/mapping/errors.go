package mapping

import (
	"errors"

	"class-migrator/internal/diagnostic"
)

// ErrConfiguration is matched by every *ConfigurationError.
var ErrConfiguration = errors.New("invalid mapping configuration")

// ConfigurationError reports an invalid mapping table or configuration file.
// It is raised before any resource is processed and is never recovered.
type ConfigurationError struct {
	Diagnostics diagnostic.Diagnostics
}

func (e *ConfigurationError) Error() string {
	if err := e.Diagnostics.Error(); err != nil {
		return ErrConfiguration.Error() + ": " + err.Error()
	}

	return ErrConfiguration.Error()
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Codes returns the diagnostic codes of all problems found.
func (e *ConfigurationError) Codes() []string {
	return e.Diagnostics.Codes()
}
