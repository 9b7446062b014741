package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionGeneration(t *testing.T) {
	tests := []struct {
		name     string
		generate func(*bytes.Buffer) error
		want     []string
	}{
		{
			name:     "bash",
			generate: func(b *bytes.Buffer) error { return rootCmd.GenBashCompletion(b) },
			want:     []string{"# bash completion for fieldmon", "__fieldmon_debug", "complete -o default -F __start_fieldmon fieldmon"},
		},
		{
			name:     "zsh",
			generate: func(b *bytes.Buffer) error { return rootCmd.GenZshCompletion(b) },
			want:     []string{"#compdef fieldmon", "_fieldmon()"},
		},
		{
			name:     "fish",
			generate: func(b *bytes.Buffer) error { return rootCmd.GenFishCompletion(b, true) },
			want:     []string{"fish completion for fieldmon", "complete -c fieldmon"},
		},
		{
			name:     "powershell",
			generate: func(b *bytes.Buffer) error { return rootCmd.GenPowerShellCompletion(b) },
			want:     []string{"Register-ArgumentCompleter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.generate(&buf))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestCompletionIncludesCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenBashCompletion(&buf))
	output := buf.String()

	assert.Contains(t, output, "__completeNoDesc", "should use dynamic completion")
	assert.Contains(t, output, "_fieldmon_root_command")
	for _, name := range []string{"poll", "devices", "alarms", "config", "completion"} {
		assert.Contains(t, output, "_fieldmon_"+name+"()")
	}
}

func TestCompletionCommandValidArgs(t *testing.T) {
	assert.ElementsMatch(t, []string{"bash", "zsh", "fish", "powershell"}, completionCmd.ValidArgs)
	assert.True(t, strings.HasPrefix(completionCmd.Use, "completion"))
}
