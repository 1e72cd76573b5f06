package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSchemaCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		configVersion string
		expectError   bool
		errorContains string
	}{
		{
			name:          "exact match",
			configVersion: "1.0.0",
			expectError:   false,
		},
		{
			name:          "patch differs",
			configVersion: "1.0.7",
			expectError:   false,
		},
		{
			name:          "v prefix accepted",
			configVersion: "v1.0.2",
			expectError:   false,
		},
		{
			name:          "empty skips check",
			configVersion: "",
			expectError:   false,
		},
		{
			name:          "dev skips check",
			configVersion: "dev",
			expectError:   false,
		},
		{
			name:          "minor differs",
			configVersion: "1.1.0",
			expectError:   true,
			errorContains: "minor schema version mismatch",
		},
		{
			name:          "major differs",
			configVersion: "2.0.0",
			expectError:   true,
			errorContains: "major schema version mismatch",
		},
		{
			name:          "garbage version",
			configVersion: "not-a-version",
			expectError:   true,
			errorContains: "invalid schema version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSchemaCompatibility(tt.configVersion)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
	assert.NotEmpty(t, GetVersion())
}
