package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/mattn/go-shellwords"
	"github.com/vk/slangbuild/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// decodeArgs evaluates an argument-list expression. A string is split with
// shell quoting rules, a list or tuple is converted element-wise, and a null
// (absent) expression yields no arguments.
func decodeArgs(ctx context.Context, expr hcl.Expression, evalCtx *hcl.EvalContext) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	if expr == nil {
		return nil, nil
	}

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("argument list must be known at load time")
	}

	if val.Type() == cty.String {
		args, err := shellwords.Parse(val.AsString())
		if err != nil {
			return nil, fmt.Errorf("cannot split %q into arguments: %w", val.AsString(), err)
		}
		logger.Debug("Split argument string.", "count", len(args))
		return args, nil
	}

	listVal, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("cannot convert %s to list of string: %w", val.Type().FriendlyName(), err)
	}

	var args []string
	if err := gocty.FromCtyValue(listVal, &args); err != nil {
		return nil, err
	}
	return args, nil
}
