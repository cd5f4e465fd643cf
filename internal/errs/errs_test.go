package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FieldError(t *testing.T) {
	cause := errors.New("boom")

	testCases := []struct {
		name     string
		err      error
		kind     error
		expected string
	}{
		{
			name:     "validation with cause",
			err:      Validation("node.2", "node_root_password", cause),
			kind:     ErrValidation,
			expected: `section "node.2" field "node_root_password": boom`,
		},
		{
			name:     "parse without cause",
			err:      Parse("node", "padding", nil),
			kind:     ErrParse,
			expected: `section "node" field "padding": parse error`,
		},
		{
			name:     "not found",
			err:      NotFound("network_external", "interface", cause),
			kind:     ErrNotFound,
			expected: `section "network_external" field "interface": boom`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.kind)
			assert.Equal(t, tc.expected, tc.err.Error())

			var fieldErr *FieldError
			require.ErrorAs(t, tc.err, &fieldErr)
			assert.NotEmpty(t, fieldErr.Section)
		})
	}

	assert.ErrorIs(t, Validation("a", "b", cause), cause)
}

func Test_At(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		kind error
	}{
		{name: "keeps parse", err: fmt.Errorf("%w: bad", ErrParse), kind: ErrParse},
		{name: "keeps not found", err: fmt.Errorf("wrapped: %w", fmt.Errorf("%w: eth9", ErrNotFound)), kind: ErrNotFound},
		{name: "keeps validation", err: fmt.Errorf("%w: too big", ErrValidation), kind: ErrValidation},
		{name: "defaults to validation", err: errors.New("plain"), kind: ErrValidation},
	}

	for _, tc := range testCases {
		err := At("network_management", "interface", tc.err)

		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr, tc.name)
		assert.Equal(t, tc.kind, fieldErr.Kind, tc.name)
		assert.ErrorIs(t, err, tc.err, tc.name)
	}
}
