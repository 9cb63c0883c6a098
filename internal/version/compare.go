package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/chartscribe-lab/chartscribe/pkg/errors"
)

// CheckSchemaCompatibility checks whether a config file's declared schema
// version can be read by this build.
//
// Compatibility Rules:
//   - If either version is "main" (development build), the check is skipped
//   - Major versions must match exactly
//   - Minor versions must match exactly
//   - Patch versions can differ (e.g., 1.0.0 reads a 1.0.3 schema)
//
// Examples:
//   - Supported 1.0.0, Config 1.0.0 -> OK (exact match)
//   - Supported 1.0.1, Config 1.0.0 -> OK (patch differs)
//   - Supported 1.1.0, Config 1.0.0 -> ERROR (minor differs)
//   - Supported 2.0.0, Config 1.0.0 -> ERROR (major differs)
//   - Supported main, Config 1.0.0 -> OK (dev build, skip check)
func CheckSchemaCompatibility(supported, configured string) error {
	// Strip 'v' prefix if present for consistency
	supported = strings.TrimPrefix(supported, "v")
	configured = strings.TrimPrefix(configured, "v")

	// Skip the check for "main" (development builds)
	if supported == "main" || configured == "main" {
		return nil
	}

	supportedSemver, err := semver.NewVersion(supported)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeSchemaVersionMismatch, err, "invalid supported schema version '%s'", supported)
	}

	configuredSemver, err := semver.NewVersion(configured)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeSchemaVersionMismatch, err, "invalid config schema version '%s'", configured)
	}

	if supportedSemver.Major() != configuredSemver.Major() {
		return errors.Newf(errors.ErrCodeSchemaVersionMismatch,
			"major version mismatch: this build reads schema %d.x.x but the config declares %d.x.x",
			supportedSemver.Major(), configuredSemver.Major())
	}

	if supportedSemver.Minor() != configuredSemver.Minor() {
		return errors.Newf(errors.ErrCodeSchemaVersionMismatch,
			"minor version mismatch: this build reads schema %d.%d.x but the config declares %d.%d.x",
			supportedSemver.Major(), supportedSemver.Minor(),
			configuredSemver.Major(), configuredSemver.Minor())
	}

	// Patch versions can differ, so we're compatible
	return nil
}
