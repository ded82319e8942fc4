package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dexPlan = `name: dex
steps:
  - name: Token
    deploy: Balloons
  - name: Pool
    deploy: DEX
    args:
      - ref: Token
  - name: ApprovePool
    call: Token
    method: approve
    args:
      - ref: Pool
      - 100ether
`

func writeProjectFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// newTestProject creates a project with compiled artifacts and points the CLI at it
func newTestProject(t *testing.T) string {
	t.Helper()
	color.NoColor = true

	root := t.TempDir()
	writeProjectFile(t, root, filepath.Join("out", "Balloons.sol", "Balloons.json"),
		`{"abi":[{"type":"function","name":"approve","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"type":"bool"}],"stateMutability":"nonpayable"}],"bytecode":{"object":"0x6080"}}`)
	writeProjectFile(t, root, filepath.Join("out", "DEX.sol", "DEX.json"),
		`{"abi":[{"type":"constructor","inputs":[{"name":"token","type":"address"}]}],"bytecode":{"object":"0x6080"}}`)

	t.Setenv("TREB_PROJECT_ROOT", root)
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Commands(t *testing.T) {
	cmd := NewRootCmd()
	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"run", "plan", "list", "reset", "history", "networks", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "treb-seq version dev\n", out)
}

func TestPlanCmd(t *testing.T) {
	t.Run("valid plan", func(t *testing.T) {
		root := newTestProject(t)
		writeProjectFile(t, root, "plan.yaml", dexPlan)

		out, err := execute(t, "plan")
		require.NoError(t, err)
		assert.Contains(t, out, "Plan: dex")
		assert.Contains(t, out, "deploy Balloons")
		assert.Contains(t, out, "call Token.approve")
		assert.Contains(t, out, "3 steps, plan is valid")
	})

	t.Run("forward reference", func(t *testing.T) {
		root := newTestProject(t)
		writeProjectFile(t, root, "bad.yaml", `steps:
  - name: Pool
    deploy: DEX
    args: [{ref: Token}]
  - name: Token
    deploy: Balloons
`)

		out, err := execute(t, "plan", "bad.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be run")
		assert.Contains(t, out, `references "Token" which runs later in the plan`)
	})

	t.Run("missing artifact", func(t *testing.T) {
		root := newTestProject(t)
		writeProjectFile(t, root, "plan.yaml", "steps:\n  - name: Vault\n    deploy: Vault\n")

		out, err := execute(t, "plan")
		require.Error(t, err)
		assert.Contains(t, out, "Vault:")
	})
}

func TestListAndHistoryCmd_Empty(t *testing.T) {
	newTestProject(t)

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No deployments found on local")

	out, err = execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded on local")

	out, err = execute(t, "reset", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "No deployments stored for local")
}

func TestListCmd_JSON(t *testing.T) {
	newTestProject(t)

	out, err := execute(t, "list", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), out)
	assert.NotContains(t, out, "No deployments found")
}
