package resultcheck

import (
	"context"
	"testing"

	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/specialistvlad/stagegrid/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	t.Run("valid boolean expression", func(t *testing.T) {
		v, err := Compile(`result.code == "200"`)
		require.NoError(t, err)
		assert.Equal(t, `result.code == "200"`, v.Expr())
	})

	t.Run("syntax error is a configuration error", func(t *testing.T) {
		_, err := Compile(`result.code ==`)
		assert.ErrorIs(t, err, config.ErrInvalid)
	})

	t.Run("non boolean expression is rejected", func(t *testing.T) {
		_, err := Compile(`1 + 2`)
		assert.ErrorIs(t, err, config.ErrInvalid)
		assert.ErrorContains(t, err, "must evaluate to bool")
	})

	t.Run("unknown variable is rejected", func(t *testing.T) {
		_, err := Compile(`response.code == "200"`)
		assert.ErrorIs(t, err, config.ErrInvalid)
	})
}

func TestValidateResult(t *testing.T) {
	ctx := context.Background()
	call := &task.Call{TaskID: "A", Params: map[string]any{"min": 2}}

	cases := []struct {
		name   string
		expr   string
		result *task.Result
		want   bool
	}{
		{"success code accepted", `result.code == "200"`, task.NewSuccess("x"), true},
		{"failure code rejected", `result.code == "200"`, task.NewFailure("500", "boom"), false},
		{"data inspected", `size(result.data) >= params.min`, task.NewSuccess([]any{1, 2, 3}), true},
		{"data too small", `size(result.data) >= params.min`, task.NewSuccess([]any{1}), false},
		{"map data", `result.data.status == "ok"`, task.NewSuccess(map[string]any{"status": "ok"}), true},
		{"dyn value that is not bool", `result.data`, task.NewSuccess("yes"), false},
		{"evaluation error rejects", `result.data.missing == 1`, task.NewSuccess(map[string]any{}), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Compile(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, v.ValidateResult(ctx, call, tc.result))
		})
	}
}
