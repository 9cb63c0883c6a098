package version

import (
	"testing"

	"github.com/chartscribe-lab/chartscribe/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSchemaCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		supported     string
		configured    string
		expectError   bool
		errorContains string
	}{
		// Compatible cases
		{
			name:        "exact match",
			supported:   "1.0.0",
			configured:  "1.0.0",
			expectError: false,
		},
		{
			name:        "supported patch higher",
			supported:   "1.0.1",
			configured:  "1.0.0",
			expectError: false,
		},
		{
			name:        "configured patch higher",
			supported:   "1.0.0",
			configured:  "1.0.5",
			expectError: false,
		},
		{
			name:        "same major minor different patch",
			supported:   "2.5.10",
			configured:  "2.5.3",
			expectError: false,
		},

		// Incompatible cases
		{
			name:          "supported minor higher",
			supported:     "1.1.0",
			configured:    "1.0.0",
			expectError:   true,
			errorContains: "minor version mismatch",
		},
		{
			name:          "supported minor lower",
			supported:     "1.0.0",
			configured:    "1.1.0",
			expectError:   true,
			errorContains: "minor version mismatch",
		},
		{
			name:          "major version differs",
			supported:     "2.0.0",
			configured:    "1.0.0",
			expectError:   true,
			errorContains: "major version mismatch",
		},

		// Development builds skip the check
		{
			name:        "supported is main",
			supported:   "main",
			configured:  "1.0.0",
			expectError: false,
		},
		{
			name:        "both are main",
			supported:   "main",
			configured:  "main",
			expectError: false,
		},
		{
			name:        "configured is main",
			supported:   "1.0.0",
			configured:  "main",
			expectError: false,
		},

		// Edge cases with v prefix
		{
			name:        "v prefix on supported",
			supported:   "v1.0.0",
			configured:  "1.0.0",
			expectError: false,
		},
		{
			name:        "v prefix on configured",
			supported:   "1.0.0",
			configured:  "v1.0.0",
			expectError: false,
		},
		{
			name:        "v prefix on both",
			supported:   "v1.0.0",
			configured:  "v1.0.0",
			expectError: false,
		},

		// Short form coerces to full semver
		{
			name:        "major.minor only",
			supported:   "1.0.0",
			configured:  "1.0",
			expectError: false,
		},

		// Edge cases with prerelease and metadata
		{
			name:        "prerelease version",
			supported:   "1.0.0-alpha",
			configured:  "1.0.0",
			expectError: false,
		},
		{
			name:        "build metadata",
			supported:   "1.0.0+build123",
			configured:  "1.0.0",
			expectError: false,
		},

		// Invalid versions
		{
			name:          "invalid supported version",
			supported:     "not-a-version",
			configured:    "1.0.0",
			expectError:   true,
			errorContains: "invalid supported schema version",
		},
		{
			name:          "invalid configured version",
			supported:     "1.0.0",
			configured:    "not-a-version",
			expectError:   true,
			errorContains: "invalid config schema version",
		},
		{
			name:          "empty configured version",
			supported:     "1.0.0",
			configured:    "",
			expectError:   true,
			errorContains: "invalid config schema version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSchemaCompatibility(tt.supported, tt.configured)

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeSchemaVersionMismatch))
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	v := GetVersion()
	assert.Equal(t, Version, v)
}

func TestSchemaVersionIsParseable(t *testing.T) {
	require.NoError(t, CheckSchemaCompatibility(SchemaVersion, SchemaVersion))
}
