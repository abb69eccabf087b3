package main

import (
	"bytes"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"

	"github.com/kroma-network/qproof-proxy/internal/config"
)

const (
	exampleSeed       = "ACTUAL_QUANTUM_SEED_FROM_API_12345"
	exampleCommitment = "0x9d0f52817a373bdcf854c6dd8ba3a2cff71574ffe43cc2f6848a0c2457b6b489"
)

// runApp runs the cli with args and returns its output and the exit code it requested, if any.
func runApp(t *testing.T, args ...string) (string, int, error) {
	var out, errOut bytes.Buffer
	exitCode := 0
	exiter, errWriter := cli.OsExiter, cli.ErrWriter
	cli.OsExiter = func(code int) { exitCode = code }
	cli.ErrWriter = &errOut
	t.Cleanup(func() { cli.OsExiter, cli.ErrWriter = exiter, errWriter })

	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"qproof"}, args...))
	return out.String(), exitCode, err
}

func TestCommitCommand(t *testing.T) {
	out, code, err := runApp(t, "commit", "--path", "PATH_OPTIMAL_1", "--path", "PATH_OPTIMAL_2", "--seed", exampleSeed)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, exampleCommitment+"\n", out)

	_, _, err = runApp(t, "commit", "--path", "PATH_OPTIMAL_1")
	assert.ErrorContains(t, err, "--seed is required")
}

func TestVerifyCommand(t *testing.T) {
	out, code, err := runApp(t, "verify",
		"--path", "PATH_OPTIMAL_1", "--path", "PATH_OPTIMAL_2", "--seed", exampleSeed, "--commitment", exampleCommitment)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "commitment matches\n", out)

	out, code, err = runApp(t, "verify",
		"--path", "PATH_OPTIMAL_2", "--path", "PATH_OPTIMAL_1", "--seed", exampleSeed, "--commitment", exampleCommitment)
	assert.Error(t, err)
	assert.Equal(t, 2, code)
	assert.Empty(t, out)

	_, _, err = runApp(t, "verify", "--seed", exampleSeed, "--commitment", "0x1234")
	assert.Error(t, err)
}

func TestProveCommandWithFixedCollaborators(t *testing.T) {
	out, _, err := runApp(t,
		"--entropy.source", config.EntropyFixed, "--entropy.fixed-seed", exampleSeed,
		"--optimizer.kind", config.OptimizerFixed,
		"--optimizer.fixed-path", "PATH_OPTIMAL_1", "--optimizer.fixed-path", "PATH_OPTIMAL_2",
		"prove", "--action", "CREATE_APP")
	require.NoError(t, err)
	assert.Equal(t, exampleCommitment+"\n", out)
}

func TestDumpConfigCommand(t *testing.T) {
	out, _, err := runApp(t, "--rpc.port", "6100", "--oracle.url", "https://oracle.example/trigger_csip", "dumpconfig")
	require.NoError(t, err)

	var cfg config.Config
	_, err = toml.Decode(out, &cfg)
	require.NoError(t, err)
	assert.Equal(t, 6100, cfg.Server.Port)
	assert.Equal(t, "https://oracle.example/trigger_csip", cfg.Oracle.URL)
	assert.Contains(t, out, "[oracle]")
}
