package flatrate

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/postage-service/internal/platform/config"
)

// Variables available to rule conditions.
const (
	varCountry = "country"
	varState   = "state"
	varZip     = "zip"
	varWeight  = "weight"
	varTotal   = "total"
	varItems   = "items"
)

// shipment is what a rule is matched against.
type shipment struct {
	country string
	state   string
	zip     string
	weight  float64
	total   decimal.Decimal
	items   int
}

func (s shipment) activation() map[string]any {
	return map[string]any{
		varCountry: s.country,
		varState:   s.state,
		varZip:     s.zip,
		varWeight:  s.weight,
		varTotal:   s.total.InexactFloat64(),
		varItems:   int64(s.items),
	}
}

type rule struct {
	name         string
	countries    []string
	states       []string
	maxWeight    float64
	condition    cel.Program
	amount       decimal.Decimal
	deliveryDays int
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(varCountry, cel.StringType),
		cel.Variable(varState, cel.StringType),
		cel.Variable(varZip, cel.StringType),
		cel.Variable(varWeight, cel.DoubleType),
		cel.Variable(varTotal, cel.DoubleType),
		cel.Variable(varItems, cel.IntType),
	)
}

func compileRule(env *cel.Env, cfg config.RateRuleConfig) (rule, error) {
	amount, err := decimal.NewFromString(cfg.Amount)
	if err != nil {
		return rule{}, fmt.Errorf("rule %s: amount %q: %w", cfg.Name, cfg.Amount, err)
	}

	if amount.IsNegative() {
		return rule{}, fmt.Errorf("rule %s: amount must not be negative", cfg.Name)
	}

	r := rule{
		name:         cfg.Name,
		countries:    upper(cfg.Countries),
		states:       upper(cfg.States),
		maxWeight:    cfg.MaxWeight,
		amount:       amount,
		deliveryDays: cfg.DeliveryDays,
	}

	if strings.TrimSpace(cfg.Condition) == "" {
		return r, nil
	}

	ast, issues := env.Compile(cfg.Condition)
	if issues != nil && issues.Err() != nil {
		return rule{}, fmt.Errorf("rule %s: condition: %w", cfg.Name, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return rule{}, fmt.Errorf("rule %s: condition must evaluate to bool, got %s", cfg.Name, ast.OutputType())
	}

	if r.condition, err = env.Program(ast); err != nil {
		return rule{}, fmt.Errorf("rule %s: condition: %w", cfg.Name, err)
	}

	return r, nil
}

func (r *rule) matches(ctx context.Context, s shipment) (bool, error) {
	if len(r.countries) > 0 && !slices.Contains(r.countries, s.country) {
		return false, nil
	}

	if len(r.states) > 0 && !slices.Contains(r.states, s.state) {
		return false, nil
	}

	if r.maxWeight > 0 && s.weight > r.maxWeight {
		return false, nil
	}

	if r.condition == nil {
		return true, nil
	}

	out, _, err := r.condition.ContextEval(ctx, s.activation())
	if err != nil {
		return false, fmt.Errorf("rule %s: evaluating condition: %w", r.name, err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %s: condition returned %T", r.name, out.Value())
	}

	return matched, nil
}

func upper(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToUpper(strings.TrimSpace(v)))
	}

	return out
}
