package validator_test

import (
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbocchi/deta/pkg/model"
	"github.com/beanbocchi/deta/pkg/validator"
)

func TestValidatePaginationParams(t *testing.T) {
	tests := []struct {
		name    string
		limit   null.Int32
		wantErr bool
	}{
		{"unset", null.Int32{}, false},
		{"lower bound", null.Int32From(1), false},
		{"upper bound", null.Int32From(1000), false},
		{"zero", null.Int32From(0), true},
		{"over limit", null.Int32From(1001), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(model.PaginationParams{Limit: tt.limit})
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrValidation)
				assert.Contains(t, err.Error(), "Limit")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateVar(t *testing.T) {
	err := validator.ValidateVar("names", []string{}, "min=1")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "names")

	assert.NoError(t, validator.ValidateVar("names", []string{"a"}, "min=1,max=1000"))
}
