package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected FlexString
		wantErr  bool
	}{
		{name: "string", input: `"Revenue"`, expected: "Revenue"},
		{name: "integer", input: `100`, expected: "100"},
		{name: "decimal keeps its text", input: `99.50`, expected: "99.50"},
		{name: "null", input: `null`, expected: ""},
		{name: "escaped string", input: `"a\"b"`, expected: `a"b`},
		{name: "boolean", input: `true`, wantErr: true},
		{name: "object", input: `{"a":1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexString
			err := json.Unmarshal([]byte(tt.input), &f)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestExportRequest_MixedTypes(t *testing.T) {
	body := `{"columns":["id","amount"],"minAmount":10,"maxAmount":"500.5","user_id":42,"category":null}`

	var req ExportRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, []string{"id", "amount"}, req.Columns)
	assert.Equal(t, "10", req.MinAmount.String())
	assert.Equal(t, "500.5", req.MaxAmount.String())
	assert.Equal(t, "42", req.UserID.String())
	assert.Empty(t, req.Category.String())
	assert.Empty(t, req.Search.String())
}
