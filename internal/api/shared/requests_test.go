package shared

import (
	"testing"

	"github.com/phrazzld/filetrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookup struct {
	TaskID string `validate:"required,max=8,printascii"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(lookup{TaskID: "abc"}))

	tests := []struct {
		name  string
		input lookup
		rule  string
	}{
		{"missing", lookup{}, "TaskID failed required"},
		{"too long", lookup{TaskID: "123456789"}, "TaskID failed max"},
		{"control characters", lookup{TaskID: "a\x01"}, "TaskID failed printascii"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRequest(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tc.rule)
		})
	}
}
