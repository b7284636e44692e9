package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/amanignore/pkg/version"
)

func TestVersionCmd_Output(t *testing.T) {
	isolate(t)

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{"default", nil, func(t *testing.T, out string) {
			assert.Equal(t, version.String()+"\n", out)
		}},
		{"short", []string{"--short"}, func(t *testing.T, out string) {
			assert.Equal(t, version.Version, strings.TrimSpace(out))
		}},
		{"verbose", []string{"--verbose"}, func(t *testing.T, out string) {
			assert.Equal(t, version.Verbose(), out)
		}},
		{"json", []string{"--json"}, func(t *testing.T, out string) {
			var info version.BuildInfo
			require.NoError(t, json.Unmarshal([]byte(out), &info))
			assert.Equal(t, version.GetInfo(), info)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, "", append([]string{"version"}, tt.args...)...)
			require.NoError(t, err)
			tt.check(t, stdout)
		})
	}
}
