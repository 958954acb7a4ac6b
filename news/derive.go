/*
Copyright © 2019 the news2roms authors.
This file is part of news2roms.

news2roms is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

news2roms is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with news2roms.  If not, see <http://www.gnu.org/licenses/>.
*/

package news

import (
	"fmt"
	"math"
	"sort"

	"github.com/Knetic/govaluate"
)

// DefaultDerived are the default nutrient fields, given as expressions
// of the converted concentrations. Dissolved organic nitrogen and
// phosphorus are split into labile, semi-labile and semi-refractory parts.
var DefaultDerived = map[string]string{
	"NO3_CONC":   "DIN_conc",
	"LDON_CONC":  "0.3 * DON_conc",
	"SLDON_CONC": "0.35 * DON_conc",
	"SRDON_CONC": "0.35 * DON_conc",
	"PO4_CONC":   "DIP_conc",
	"LDOP_CONC":  "0.3 * DOP_conc",
	"SLDOP_CONC": "0.35 * DOP_conc",
	"SRDOP_CONC": "0.35 * DOP_conc",
	"NDET_CONC":  "0 * DIN_conc",
	"PDET_CONC":  "0 * DIP_conc",
}

// deriveFuncs are the functions available in expressions.
var deriveFuncs = map[string]govaluate.ExpressionFunction{
	"exp": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("news: got %d arguments for function 'exp', but needs 1", len(args))
		}
		return math.Exp(args[0].(float64)), nil
	},
	"min": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("news: got %d arguments for function 'min', but needs 2", len(args))
		}
		return math.Min(args[0].(float64), args[1].(float64)), nil
	},
	"max": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("news: got %d arguments for function 'max', but needs 2", len(args))
		}
		return math.Max(args[0].(float64), args[1].(float64)), nil
	},
}

// Derive evaluates expressions for every record and adds the results
// to the record values, keyed by the expression names. Expressions can
// refer to record values and to each other.
func (t *Table) Derive(expressions map[string]string) error {
	order, compiled, err := deriveOrder(expressions)
	if err != nil {
		return err
	}
	for i, r := range t.Records {
		params := make(map[string]interface{}, len(r.Values)+len(order))
		for k, v := range r.Values {
			params[k] = v
		}
		for _, name := range order {
			result, err := compiled[name].Evaluate(params)
			if err != nil {
				return fmt.Errorf("news: record %d (%s): evaluating %s: %v", i, r.Name(), name, err)
			}
			v, ok := result.(float64)
			if !ok {
				return fmt.Errorf("news: record %d (%s): %s evaluates to %v, which is not a number",
					i, r.Name(), name, result)
			}
			r.Values[name] = v
			params[name] = v
		}
	}
	for _, name := range order {
		if !t.HasColumn(name) {
			t.Columns = append(t.Columns, name)
		}
	}
	return nil
}

// deriveOrder compiles expressions and returns their names in an order
// where every expression comes after the expressions it depends on.
func deriveOrder(expressions map[string]string) ([]string, map[string]*govaluate.EvaluableExpression, error) {
	names := make([]string, 0, len(expressions))
	for name := range expressions {
		names = append(names, name)
	}
	sort.Strings(names)

	compiled := make(map[string]*govaluate.EvaluableExpression, len(expressions))
	for _, name := range names {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expressions[name], deriveFuncs)
		if err != nil {
			return nil, nil, fmt.Errorf("news: expression %s = %q: %v", name, expressions[name], err)
		}
		compiled[name] = e
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(names))
	order := make([]string, 0, len(names))
	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("news: expression %s depends on itself: %v", name, append(path, name))
		}
		state[name] = visiting
		vars := compiled[name].Vars()
		sort.Strings(vars)
		for _, v := range vars {
			if _, ok := compiled[v]; ok {
				if err := visit(v, append(path, name)); err != nil {
					return err
				}
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}
	for _, name := range names {
		if err := visit(name, nil); err != nil {
			return nil, nil, err
		}
	}
	return order, compiled, nil
}
