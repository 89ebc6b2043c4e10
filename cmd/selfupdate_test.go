package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelfUpdateCmd(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{name: "dev version", version: "dev"},
		{name: "empty version", version: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalVersion := rootCmd.Version
			defer func() {
				rootCmd.Version = originalVersion
			}()
			rootCmd.Version = tt.version

			cmd := newSelfUpdateCmd()
			cmd.SetArgs([]string{})
			err := cmd.Execute()

			assert.ErrorIs(t, err, errDevVersion)
			assert.Contains(t, err.Error(), "cannot self-update a development version")
		})
	}
}

func TestSelfUpdateCmdProperties(t *testing.T) {
	cmd := newSelfUpdateCmd()

	assert.Equal(t, "self-update", cmd.Use)
	assert.Equal(t, "Update mcp-k8s-agent to the latest version", cmd.Short)
	assert.True(t, strings.Contains(cmd.Long, "mcp-k8s-agent"))
	assert.True(t, strings.Contains(cmd.Long, "GitHub"))
}

func TestGithubRepoSlug(t *testing.T) {
	assert.Equal(t, "giantswarm/mcp-k8s-agent", githubRepoSlug)
}
