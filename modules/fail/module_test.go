package fail

import (
	"context"
	"testing"

	"github.com/specialistvlad/stagegrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFail(t *testing.T) {
	tk := &Task{}
	env := testutil.NewEnv(nil)

	t.Run("fails the first attempts", func(t *testing.T) {
		call := env.Call("f", map[string]any{"failures": 2})
		for attempt := 0; attempt < 2; attempt++ {
			call.Attempt = attempt
			_, err := tk.Invoke(context.Background(), call)
			assert.ErrorIs(t, err, ErrScripted)
		}

		call.Attempt = 2
		res, err := tk.Invoke(context.Background(), call)
		require.NoError(t, err)
		assert.Equal(t, "succeeded on attempt 2", res.Data)
	})

	t.Run("without failures it always fails", func(t *testing.T) {
		call := env.Call("f", map[string]any{"message": "nope"})
		call.Attempt = 7
		_, err := tk.Invoke(context.Background(), call)
		require.ErrorIs(t, err, ErrScripted)
		assert.Contains(t, err.Error(), "nope")
	})
}
