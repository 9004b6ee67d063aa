package config

import (
	"errors"

	"github.com/joomcode/errorx"
)

// Error taxonomy shared by the polishing engine.
var (
	ErrNamespace = errorx.NewNamespace("fittings")

	// ValidationError marks a declared value that was rejected and treated as absent.
	ValidationError = ErrNamespace.NewType("validation")
	// TransientProviderError marks a remote failure that is expected to clear (resource busy).
	TransientProviderError = ErrNamespace.NewType("transient_provider", errorx.Temporary())
	// PermanentProviderError marks any other remote failure; only the affected setting is abandoned.
	PermanentProviderError = ErrNamespace.NewType("permanent_provider")
	// ReportIOError marks a failure to persist the report.
	ReportIOError = ErrNamespace.NewType("report_io")
	// ConfigurationError marks a pre-flight failure that aborts the whole run.
	ConfigurationError = ErrNamespace.NewType("configuration")
)

// IsTransient reports whether err is worth retrying. The errorx error may
// sit below fmt.Errorf wrapping.
func IsTransient(err error) bool {
	var xerr *errorx.Error
	if errors.As(err, &xerr) {
		return errorx.IsTemporary(xerr)
	}
	return false
}
