package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/specialistvlad/stagegrid/internal/registry"
	"github.com/specialistvlad/stagegrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	// --- Arrange ---
	var out bytes.Buffer
	reg := registry.New(&Module{Out: &out})
	tk, err := reg.Resolve(Ref)
	require.NoError(t, err)
	env := testutil.NewEnv(nil)

	// --- Act ---
	res, err := tk.Invoke(context.Background(), env.Call("p", map[string]any{"b": 2, "a": "x"}))

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "      a = \"x\"\n      b = \"2\"\n", out.String())
	assert.Equal(t, map[string]any{"b": 2, "a": "x"}, res.Data)
}

func TestPrint_NoParams(t *testing.T) {
	var out bytes.Buffer
	tk := &Task{out: &out}

	res, err := tk.Invoke(context.Background(), testutil.NewEnv(nil).Call("p", nil))

	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "      (null)\n", out.String())
}
