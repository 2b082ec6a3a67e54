package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zate/ifsgen/internal/db"
)

// ErrInvalid wraps filter syntax and value errors.
var ErrInvalid = errors.New("invalid query")

// ExecuteQuery parses filter and returns the stored presets matching it,
// ordered by name. opts.Limit applies after filtering.
func ExecuteQuery(s db.Store, filter string, opts db.ListOptions) ([]*db.Record, error) {
	ast, err := Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	limit := opts.Limit
	opts.Limit = 0
	records, err := s.ListPresets(opts)
	if err != nil {
		return nil, err
	}

	var out []*db.Record
	for _, r := range records {
		ok, err := Match(ast, r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if !ok {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Match evaluates ast against one record. A nil AST matches everything.
func Match(ast *AST, r *db.Record) (bool, error) {
	if ast == nil {
		return true, nil
	}

	switch ast.Type {
	case NodeAnd:
		l, err := Match(ast.Left, r)
		if err != nil || !l {
			return false, err
		}
		return Match(ast.Right, r)

	case NodeOr:
		l, err := Match(ast.Left, r)
		if err != nil || l {
			return l, err
		}
		return Match(ast.Right, r)

	case NodeNot:
		c, err := Match(ast.Child, r)
		return !c, err

	case NodePredicate:
		return matchPredicate(ast, r)
	}
	return false, fmt.Errorf("unknown AST type: %s", ast.Type)
}

func matchPredicate(ast *AST, r *db.Record) (bool, error) {
	switch ast.Key {
	case "name":
		return strings.EqualFold(r.Name, ast.Value), nil
	case "tag":
		for _, t := range r.Tags {
			if t == ast.Value {
				return true, nil
			}
		}
		return false, nil
	case "tier":
		return strings.EqualFold(string(r.Tier), ast.Value), nil
	case "output":
		return strings.EqualFold(r.OutputModeName(), ast.Value) || strconv.Itoa(r.OutputMode) == ast.Value, nil
	case "transforms":
		return compare(int64(len(r.Transforms)), ast.Operator, ast.Value)
	case "iterations":
		return compare(int64(r.Iterations), ast.Operator, ast.Value)
	case "points":
		return compare(r.PointCount, ast.Operator, ast.Value)
	case "seed":
		return compare(int64(r.Seed), ast.Operator, ast.Value)
	}
	return false, fmt.Errorf("unknown key: %s", ast.Key)
}

func compare(got int64, op, raw string) (bool, error) {
	want, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
	if err != nil {
		return false, fmt.Errorf("invalid number: %s", raw)
	}
	switch op {
	case "", "=":
		return got == want, nil
	case ">":
		return got > want, nil
	case ">=":
		return got >= want, nil
	case "<":
		return got < want, nil
	case "<=":
		return got <= want, nil
	}
	return false, fmt.Errorf("unknown operator: %s", op)
}
