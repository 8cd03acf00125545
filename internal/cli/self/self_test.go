package self

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrentVersion(t *testing.T) {
	t.Parallel()

	v, err := parseCurrentVersion("v1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v.String())

	v, err = parseCurrentVersion("0.4.0")
	require.NoError(t, err)
	assert.Equal(t, "0.4.0", v.String())

	_, err = parseCurrentVersion("not-a-version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ensure version is like vX.Y.Z")
}

func TestResolveRepository(t *testing.T) {
	t.Parallel()

	repo, err := resolveRepository("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRepository, repo)

	repo, err = resolveRepository("someone/fork")
	require.NoError(t, err)
	assert.Equal(t, "someone/fork", repo)

	for _, bad := range []string{"justowner", "owner/", "/repo", "a/b/c"} {
		_, err := resolveRepository(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewSelfCommand(t *testing.T) {
	t.Parallel()
	cmd := NewSelfCommand()
	assert.Equal(t, "self", cmd.Name)
	require.Len(t, cmd.Subcommands, 1)
	assert.Equal(t, "update", cmd.Subcommands[0].Name)
}
