package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCmd_HasSubcommands(t *testing.T) {
	commands := configCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "set")
	assert.Contains(t, commandNames, "path")
}

func TestConfigGetCmd_PrintsValue(t *testing.T) {
	store := &fakeConfigStore{values: map[string]any{"llm.provider": "ollama"}}
	withServices(t, Services{Config: store})

	out, err := executeCommand(t, "config", "get", "llm.provider")

	require.NoError(t, err)
	assert.Contains(t, out, "ollama")
}

func TestConfigGetCmd_UnknownKey(t *testing.T) {
	withServices(t, Services{Config: &fakeConfigStore{}})

	_, err := executeCommand(t, "config", "get", "missing.key")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "key not set")
}

func TestConfigSetCmd_TypesValues(t *testing.T) {
	store := &fakeConfigStore{}
	withServices(t, Services{Config: store})

	_, err := executeCommand(t, "config", "set", "crawler.max_pages", "25")
	require.NoError(t, err)
	assert.Equal(t, int64(25), store.values["crawler.max_pages"])

	_, err = executeCommand(t, "config", "set", "crawler.rate", "0.5")
	require.NoError(t, err)
	assert.Equal(t, 0.5, store.values["crawler.rate"])

	_, err = executeCommand(t, "config", "set", "scheduler.enabled", "true")
	require.NoError(t, err)
	assert.Equal(t, true, store.values["scheduler.enabled"])

	_, err = executeCommand(t, "config", "set", "llm.provider", "openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", store.values["llm.provider"])
}

func TestConfigPathCmd(t *testing.T) {
	store := &fakeConfigStore{path: "/tmp/config.toml"}
	withServices(t, Services{Config: store})

	out, err := executeCommand(t, "config", "path")

	require.NoError(t, err)
	assert.Contains(t, out, "/tmp/config.toml")
}

func TestConfigCmd_ErrorsWithoutServices(t *testing.T) {
	withServices(t, Services{})

	_, err := executeCommand(t, "config", "get", "any.key")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
