package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/xferctl/internal/model"
)

func TestParseTaskStatus(t *testing.T) {
	tests := map[string]struct {
		input  string
		exp    model.TaskStatus
		expErr bool
	}{
		"Upper case status should parse.": {
			input: "ACTIVE",
			exp:   model.TaskStatusActive,
		},
		"Lower case status should parse.": {
			input: "succeeded",
			exp:   model.TaskStatusSucceeded,
		},
		"Status with whitespace should be trimmed.": {
			input: "  inactive ",
			exp:   model.TaskStatusInactive,
		},
		"Unknown status should fail.": {
			input:  "RUNNING",
			expErr: true,
		},
		"Empty status should fail.": {
			input:  "",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			got, err := model.ParseTaskStatus(test.input)
			if test.expErr {
				require.Error(err)
				assert.ErrorIs(err, model.ErrNotValid)
				return
			}
			require.NoError(err)
			assert.Equal(test.exp, got)
		})
	}
}

func TestTaskStatusIsTerminal(t *testing.T) {
	tests := map[string]struct {
		status model.TaskStatus
		exp    bool
	}{
		"Pending is not terminal.": {status: model.TaskStatusPending, exp: false},
		"Active is not terminal.":  {status: model.TaskStatusActive, exp: false},
		"Succeeded is terminal.":   {status: model.TaskStatusSucceeded, exp: true},
		"Failed is terminal.":      {status: model.TaskStatusFailed, exp: true},
		"Inactive is terminal.":    {status: model.TaskStatusInactive, exp: true},
		"Unknown is not terminal.": {status: model.TaskStatus("OTHER"), exp: false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, test.status.IsTerminal())
		})
	}
}

func TestEndpointPathString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("uuid-1111:/x/f1.nc", model.EndpointPath{UUID: "uuid-1111", Path: "/x/f1.nc"}.String())
	assert.Equal("uuid-1111", model.EndpointPath{UUID: "uuid-1111"}.String())
}
