package dataframe

import (
	"fmt"

	"github.com/groupframe/groupframe/internal/errors"
	"github.com/groupframe/groupframe/internal/expr"
	"github.com/groupframe/groupframe/internal/validation"
)

// ResolveGroupKeys maps a key specification to canonical, ordered, unique
// column names. Each spec may be a column name, a slice of names, a column
// expression, or a slice of expressions; anything else is an invalid key
// spec. Duplicates are removed keeping first-occurrence order. Naming an
// absent column fails before any row is touched. An empty result means "no
// grouping" and callers must fall back to the plain table.
func ResolveGroupKeys(df *DataFrame, specs ...any) ([]string, error) {
	var names []string
	for _, spec := range specs {
		flat, err := flattenKeySpec(spec)
		if err != nil {
			return nil, err
		}
		names = append(names, flat...)
	}

	seen := make(map[string]bool, len(names))
	resolved := make([]string, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		resolved = append(resolved, name)
	}
	if err := validation.NewColumnValidator(df, "GroupBy", resolved...).Validate(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func flattenKeySpec(spec any) ([]string, error) {
	switch s := spec.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{s}, nil
	case []string:
		return s, nil
	case *expr.ColumnExpr:
		return []string{s.Name()}, nil
	case []expr.Expr:
		names := make([]string, 0, len(s))
		for _, e := range s {
			col, ok := e.(*expr.ColumnExpr)
			if !ok {
				return nil, errors.NewInvalidKeySpecError("GroupBy",
					fmt.Sprintf("key expression %s is not a column reference", e.String()))
			}
			names = append(names, col.Name())
		}
		return names, nil
	default:
		return nil, errors.NewInvalidKeySpecError("GroupBy",
			fmt.Sprintf("unsupported key spec type %T", spec))
	}
}
