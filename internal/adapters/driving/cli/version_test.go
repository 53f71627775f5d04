package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_PrintsVersion(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })
	SetVersion("1.2.3")

	out, err := executeCommand(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "grantwatch version 1.2.3")
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })

	SetVersion("")

	assert.Equal(t, old, version)
}
