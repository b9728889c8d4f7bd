package service

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/moderncanvas/dmsecretweapon-backend/internal/combat/domain"
	domainerrors "github.com/moderncanvas/dmsecretweapon-backend/internal/platform/errors"
)

// encounterPredicate reports whether an encounter snapshot matches a filter.
type encounterPredicate func(domain.Encounter) bool

// matchAll accepts every encounter; used for the empty filter.
func matchAll(domain.Encounter) bool { return true }

// encounterDeclarations returns the field declarations for encounter filtering.
func encounterDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("name", filtering.TypeString),
		filtering.DeclareIdent("is_active", filtering.TypeBool),
		filtering.DeclareIdent("round_number", filtering.TypeInt),
		// The checker resolves boolean literals as identifiers, so true and
		// false must be declared for is_active comparisons to type-check.
		filtering.DeclareIdent("true", filtering.TypeBool),
		filtering.DeclareIdent("false", filtering.TypeBool),
	)
}

// ParseEncounterFilter parses an AIP-160 filter expression into an in-memory
// predicate. Returns a match-everything predicate for an empty filter string.
// Parse and type-check failures surface as LIST_FILTER_INVALID.
func ParseEncounterFilter(filterStr string) (encounterPredicate, error) {
	if strings.TrimSpace(filterStr) == "" {
		return matchAll, nil
	}

	decls, err := encounterDeclarations()
	if err != nil {
		return nil, fmt.Errorf("create declarations: %w", err)
	}

	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return nil, domainerrors.Wrap(
			domainerrors.CodeListFilterInvalid,
			fmt.Sprintf("parse filter %q: %v", filterStr, err),
			err,
		)
	}

	predicate, err := compileExpr(filter.CheckedExpr.Expr)
	if err != nil {
		return nil, domainerrors.Wrap(
			domainerrors.CodeListFilterInvalid,
			fmt.Sprintf("compile filter %q: %v", filterStr, err),
			err,
		)
	}
	return predicate, nil
}

// compileExpr translates a CEL expression into a predicate.
func compileExpr(e *expr.Expr) (encounterPredicate, error) {
	if e == nil {
		return matchAll, nil
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return compileCall(kind.CallExpr)
	default:
		return nil, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func compileCall(call *expr.Expr_Call) (encounterPredicate, error) {
	switch call.Function {
	case "_&&_", "AND":
		return compileLogical(call.Args, func(left, right bool) bool { return left && right })
	case "_||_", "OR":
		return compileLogical(call.Args, func(left, right bool) bool { return left || right })
	case "_==_", "=":
		return compileComparison(call.Args, "=")
	case "_!=_", "!=":
		return compileComparison(call.Args, "!=")
	case "_<_", "<":
		return compileComparison(call.Args, "<")
	case "_<=_", "<=":
		return compileComparison(call.Args, "<=")
	case "_>_", ">":
		return compileComparison(call.Args, ">")
	case "_>=_", ">=":
		return compileComparison(call.Args, ">=")
	default:
		return nil, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func compileLogical(args []*expr.Expr, combine func(left, right bool) bool) (encounterPredicate, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("logical operator requires 2 arguments")
	}

	left, err := compileExpr(args[0])
	if err != nil {
		return nil, err
	}
	right, err := compileExpr(args[1])
	if err != nil {
		return nil, err
	}

	return func(encounter domain.Encounter) bool {
		return combine(left(encounter), right(encounter))
	}, nil
}

func compileComparison(args []*expr.Expr, op string) (encounterPredicate, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return nil, err
	}
	value, err := extractConstValue(args[1])
	if err != nil {
		return nil, err
	}

	switch field {
	case "name":
		expected, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field name expects a string value, got %T", value)
		}
		return compileStringComparison(op, expected, func(encounter domain.Encounter) string {
			return encounter.Name
		})
	case "is_active":
		expected, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("field is_active expects a bool value, got %T", value)
		}
		return compileBoolComparison(op, expected, func(encounter domain.Encounter) bool {
			return encounter.IsActive
		})
	case "round_number":
		expected, ok := value.(int64)
		if !ok {
			return nil, fmt.Errorf("field round_number expects an integer value, got %T", value)
		}
		return compileIntComparison(op, expected, func(encounter domain.Encounter) int64 {
			return int64(encounter.RoundNumber)
		})
	default:
		return nil, fmt.Errorf("unknown field: %s", field)
	}
}

func compileStringComparison(op, expected string, get func(domain.Encounter) string) (encounterPredicate, error) {
	switch op {
	case "=":
		return func(encounter domain.Encounter) bool { return get(encounter) == expected }, nil
	case "!=":
		return func(encounter domain.Encounter) bool { return get(encounter) != expected }, nil
	default:
		return nil, fmt.Errorf("operator %s is not supported for string fields", op)
	}
}

func compileBoolComparison(op string, expected bool, get func(domain.Encounter) bool) (encounterPredicate, error) {
	switch op {
	case "=":
		return func(encounter domain.Encounter) bool { return get(encounter) == expected }, nil
	case "!=":
		return func(encounter domain.Encounter) bool { return get(encounter) != expected }, nil
	default:
		return nil, fmt.Errorf("operator %s is not supported for bool fields", op)
	}
}

func compileIntComparison(op string, expected int64, get func(domain.Encounter) int64) (encounterPredicate, error) {
	switch op {
	case "=":
		return func(encounter domain.Encounter) bool { return get(encounter) == expected }, nil
	case "!=":
		return func(encounter domain.Encounter) bool { return get(encounter) != expected }, nil
	case "<":
		return func(encounter domain.Encounter) bool { return get(encounter) < expected }, nil
	case "<=":
		return func(encounter domain.Encounter) bool { return get(encounter) <= expected }, nil
	case ">":
		return func(encounter domain.Encounter) bool { return get(encounter) > expected }, nil
	case ">=":
		return func(encounter domain.Encounter) bool { return get(encounter) >= expected }, nil
	default:
		return nil, fmt.Errorf("operator %s is not supported", op)
	}
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractConstValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	// Boolean literals survive parsing as identifiers, not constants.
	if ident, ok := e.ExprKind.(*expr.Expr_IdentExpr); ok {
		switch ident.IdentExpr.Name {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return nil, fmt.Errorf("expected constant, got identifier %s", ident.IdentExpr.Name)
		}
	}

	constExpr, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return nil, fmt.Errorf("expected constant, got %T", e.ExprKind)
	}

	switch kind := constExpr.ConstExpr.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return int64(kind.Uint64Value), nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}
