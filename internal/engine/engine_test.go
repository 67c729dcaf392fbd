package engine

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/specialistvlad/apsimgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	testCases := []struct {
		name string
		req  Request
		want []string
	}{
		{
			name: "single threaded by default",
			req:  Request{ModelPath: "m.apsimx"},
			want: []string{"m.apsimx", "--single-threaded"},
		},
		{
			name: "multi threaded",
			req:  Request{ModelPath: "m.apsimx", MultiThreaded: true},
			want: []string{"m.apsimx"},
		},
		{
			name: "simulation subset",
			req:  Request{ModelPath: "m.apsimx", Simulations: []string{"Simulation", "Late.Sowing"}},
			want: []string{"m.apsimx", "--single-threaded", "--simulation-names", `^(Simulation|Late\.Sowing)$`},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Args(tc.req))
		})
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell runner stub requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "Models")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestExec_Run(t *testing.T) {
	ctx, _ := testutil.Context(t)
	dir := t.TempDir()
	model := filepath.Join(dir, "maize.apsimx")
	require.NoError(t, os.WriteFile(model, []byte("{}"), 0o644))

	runner := writeScript(t, `touch "${1%.apsimx}.db"`+"\n")
	require.NoError(t, NewExec(runner).Run(ctx, Request{ModelPath: model}))
	assert.FileExists(t, filepath.Join(dir, "maize.db"))
}

func TestExec_RunFailure(t *testing.T) {
	ctx, _ := testutil.Context(t)
	runner := writeScript(t, "echo 'Simulation crashed' >&2\nexit 3\n")

	err := NewExec(runner).Run(ctx, Request{ModelPath: filepath.Join(t.TempDir(), "m.apsimx")})
	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, 3, runErr.ExitCode)
	assert.Contains(t, runErr.Error(), "Simulation crashed")
}

func TestExec_EmptyModelPath(t *testing.T) {
	ctx, _ := testutil.Context(t)
	require.Error(t, NewExec("Models").Run(ctx, Request{}))
}
