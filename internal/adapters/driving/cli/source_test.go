package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
)

func TestSourceCmd_HasSubcommands(t *testing.T) {
	commands := sourceCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "add")
	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "remove")
}

func TestSourceAddCmd_SavesSource(t *testing.T) {
	store := &fakeSourceStore{}
	withServices(t, Services{Sources: store})
	t.Cleanup(func() {
		sourceAddName = ""
		sourceAddEvery = 24 * time.Hour
		sourceAddInactive = false
	})

	out, err := executeCommand(t, "source", "add", "https://agency.example.org/grants",
		"--name", "Agency", "--every", "6h")

	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	saved := store.saved[0]
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "Agency", saved.Name)
	assert.Equal(t, "https://agency.example.org/grants", saved.URL)
	assert.Equal(t, 6*time.Hour, saved.Schedule)
	assert.True(t, saved.Active)
	assert.Contains(t, out, "Added source")
}

func TestSourceAddCmd_NameDefaultsToURL(t *testing.T) {
	store := &fakeSourceStore{}
	withServices(t, Services{Sources: store})
	t.Cleanup(func() {
		sourceAddName = ""
		sourceAddEvery = 24 * time.Hour
	})

	_, err := executeCommand(t, "source", "add", "https://agency.example.org")

	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "https://agency.example.org", store.saved[0].Name)
}

func TestSourceAddCmd_ErrorsWithoutServices(t *testing.T) {
	withServices(t, Services{})

	_, err := executeCommand(t, "source", "add", "https://agency.example.org")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSourceListCmd_ShowsSources(t *testing.T) {
	store := &fakeSourceStore{sources: []domain.Source{
		{ID: "a", Name: "Agency", URL: "https://a.example.org", Schedule: time.Hour, Active: true},
		{ID: "b", Name: "Ministry", URL: "https://b.example.org", Schedule: 24 * time.Hour, Active: false},
	}}
	withServices(t, Services{Sources: store})

	out, err := executeCommand(t, "source", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Agency (active)")
	assert.Contains(t, out, "Ministry (inactive)")
	assert.Contains(t, out, "Total: 2 sources")
}

func TestSourceListCmd_Empty(t *testing.T) {
	withServices(t, Services{Sources: &fakeSourceStore{}})

	out, err := executeCommand(t, "source", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No sources configured")
}

func TestSourceListCmd_JSON(t *testing.T) {
	store := &fakeSourceStore{sources: []domain.Source{
		{ID: "a", Name: "Agency", URL: "https://a.example.org"},
	}}
	withServices(t, Services{Sources: store})
	t.Cleanup(func() { sourceListJSON = false })

	out, err := executeCommand(t, "source", "list", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"Name": "Agency"`)
}

func TestSourceRemoveCmd_Deletes(t *testing.T) {
	store := &fakeSourceStore{}
	withServices(t, Services{Sources: store})

	out, err := executeCommand(t, "source", "remove", "src-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"src-1"}, store.deleted)
	assert.Contains(t, out, "Removed source src-1")
}
