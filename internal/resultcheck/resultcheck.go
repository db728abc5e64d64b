// Package resultcheck compiles CEL expressions that decide whether a task's
// result is accepted. An expression sees two variables:
//
//	result  map with "code", "message" and "data"
//	params  the substituted parameters of the invocation
//
// Example: `result.code == "200" && size(result.data) > 0`.
package resultcheck

import (
	"context"

	"github.com/google/cel-go/cel"
	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/specialistvlad/stagegrid/internal/ctxlog"
	"github.com/specialistvlad/stagegrid/internal/task"
)

// Validator is a compiled result-validation expression. It implements
// task.Validator.
type Validator struct {
	expr string
	prg  cel.Program
}

// Compile type-checks expr. Expressions that do not type-check, or whose
// static type is neither bool nor dyn, are configuration errors.
func Compile(expr string) (*Validator, error) {
	env, err := cel.NewEnv(
		cel.Variable("result", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("params", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, err
	}

	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, config.Invalidf("validate expression %q: %v", expr, iss.Err())
	}
	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, config.Invalidf("validate expression %q must evaluate to bool, not %s", expr, out)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, config.Invalidf("validate expression %q: %v", expr, err)
	}
	return &Validator{expr: expr, prg: prg}, nil
}

// Expr returns the source expression.
func (v *Validator) Expr() string { return v.expr }

// ValidateResult evaluates the expression. Evaluation errors and non-bool
// values reject the result.
func (v *Validator) ValidateResult(ctx context.Context, call *task.Call, r *task.Result) bool {
	logger := ctxlog.FromContext(ctx)

	params := call.Params
	if params == nil {
		params = map[string]any{}
	}
	out, _, err := v.prg.ContextEval(ctx, map[string]any{
		"result": map[string]any{
			"code":    r.Code,
			"message": r.Message,
			"data":    r.Data,
		},
		"params": params,
	})
	if err != nil {
		logger.Warn("Validate expression failed to evaluate.", "taskID", call.TaskID, "expr", v.expr, "error", err)
		return false
	}

	ok, isBool := out.Value().(bool)
	if !isBool {
		logger.Warn("Validate expression did not yield a bool.", "taskID", call.TaskID, "expr", v.expr, "type", out.Type())
		return false
	}
	return ok
}

var _ task.Validator = (*Validator)(nil)
