package cli_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ctapred/internal/interfaces/cli"
	"github.com/turtacn/ctapred/pkg/errors"
)

func TestNewRootCommand_MountsAllSubcommands(t *testing.T) {
	root := cli.NewRootCommand()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}

	assert.True(t, names["generate"])
	assert.True(t, names["predict"])
	assert.True(t, names["update"])
}

func TestNewRootCommand_VersionIncludesBuildInfo(t *testing.T) {
	root := cli.NewRootCommand()

	assert.Contains(t, root.Version, cli.Version)
	assert.Contains(t, root.Version, cli.GitCommit)
}

func TestGenerate_OutOfRangeParameterFailsBeforeProcessing(t *testing.T) {
	root := cli.NewRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"generate", "--tc", "9.0"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfiguration))
}

func TestPredict_BadCutoffIsRejected(t *testing.T) {
	root := cli.NewRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"predict", "--cutoff", "2.0"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfiguration))
}

func TestUpdate_RequiresAtLeastOneInput(t *testing.T) {
	dir := t.TempDir()
	root := cli.NewRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"update",
		"--data", filepath.Join(dir, "Data"),
		"--output", filepath.Join(dir, "output"),
		"--input", filepath.Join(dir, "input"),
	})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestRootCommand_UnknownSubcommand(t *testing.T) {
	root := cli.NewRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"frobnicate"})

	assert.Error(t, root.ExecuteContext(context.Background()))
}
