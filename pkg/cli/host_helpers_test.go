package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  string
	}{
		{in: "http://127.0.0.1:8080", want: "http://127.0.0.1:8080"},
		{in: " https://sheets.example.com/ ", want: "https://sheets.example.com"},
		{in: "localhost:8080", wantErr: "scheme must be http or https"},
		{in: "://bad", wantErr: "invalid host"},
		{in: "", wantErr: "empty"},
		{in: "http://localhost:8080/api/v1", wantErr: "drop"},
		{in: "http://localhost:8080?x=1", wantErr: "query"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := normalizeHost(tc.in)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
