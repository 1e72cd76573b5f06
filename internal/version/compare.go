package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckSchemaCompatibility checks whether a config file's schema version is
// compatible with the schema version this build supports.
// Returns nil if compatible, error with details if not.
//
// Compatibility rules:
//   - An empty or "dev" schema version skips the check (development configs)
//   - Major versions must match exactly
//   - Minor versions must match exactly
//   - Patch versions can differ (e.g. 1.0.0 accepts 1.0.4)
func CheckSchemaCompatibility(configVersion string) error {
	configVersion = strings.TrimPrefix(configVersion, "v")

	if configVersion == "" || configVersion == "dev" {
		return nil
	}

	supported, err := semver.NewVersion(ConfigSchemaVersion)
	if err != nil {
		return fmt.Errorf("invalid supported schema version '%s': %w", ConfigSchemaVersion, err)
	}

	declared, err := semver.NewVersion(configVersion)
	if err != nil {
		return fmt.Errorf("invalid schema version '%s': %w", configVersion, err)
	}

	if declared.Major() != supported.Major() {
		return fmt.Errorf("major schema version mismatch: this build supports %d.x.x but config declares %d.x.x",
			supported.Major(), declared.Major())
	}

	if declared.Minor() != supported.Minor() {
		return fmt.Errorf("minor schema version mismatch: this build supports %d.%d.x but config declares %d.%d.x",
			supported.Major(), supported.Minor(),
			declared.Major(), declared.Minor())
	}

	return nil
}
