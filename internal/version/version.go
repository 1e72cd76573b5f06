package version

// Version is the current version of the backtestd service.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/marketloop/backtestd/internal/version.Version=1.2.3"
// The default value "dev" indicates a development build.
var Version = "dev"

// ConfigSchemaVersion is the service config schema version this build
// understands. Config files declare their schema_version and are accepted
// when major and minor match.
const ConfigSchemaVersion = "1.0.0"

// GetVersion returns the current version of the service.
func GetVersion() string {
	return Version
}
