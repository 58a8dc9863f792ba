package presenter

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
)

// Statement keys used in table payloads
var statementKeys = map[domain.StatementKind]string{
	domain.StatementIncome:   "income",
	domain.StatementBalance:  "balance",
	domain.StatementCashFlow: "cashflow",
}

// Tables renders the three statements as {"income": {"2024-Q1": {"Revenue": "100000"}}}
func Tables(t domain.Tables) map[string]interface{} {
	out := make(map[string]interface{}, len(domain.StatementKinds))
	for _, kind := range domain.StatementKinds {
		table := t.Table(kind)
		periods := make(map[string]interface{}, len(table))
		for p, items := range table {
			row := make(map[string]interface{}, len(items))
			for item, v := range items {
				row[string(item)] = v.String()
			}
			periods[p.String()] = row
		}
		out[statementKeys[kind]] = periods
	}
	return out
}

// ParseTables reads the payload produced by Tables
// Statement keys accept the aliases of domain.ParseStatementKind; values may
// be numbers, numeric strings or json.Number. A missing statement is empty.
func ParseTables(raw map[string]interface{}) (domain.Tables, error) {
	tables := domain.Tables{
		Income:   make(domain.StatementTable),
		Balance:  make(domain.StatementTable),
		CashFlow: make(domain.StatementTable),
	}

	for key, rawTable := range raw {
		kind, err := domain.ParseStatementKind(key)
		if err != nil {
			return domain.Tables{}, err
		}

		periods, ok := rawTable.(map[string]interface{})
		if !ok {
			return domain.Tables{}, fmt.Errorf("%w statement %s: expected an object keyed by period", domain.ErrInvalidArgument, key)
		}

		table := tables.Table(kind)
		for periodKey, rawRow := range periods {
			p, err := domain.ParsePeriod(periodKey)
			if err != nil {
				return domain.Tables{}, err
			}
			if _, dup := table[p]; dup {
				return domain.Tables{}, fmt.Errorf("%w statement %s: period %s given twice", domain.ErrInvalidArgument, key, p)
			}

			items, ok := rawRow.(map[string]interface{})
			if !ok {
				return domain.Tables{}, fmt.Errorf("%w statement %s period %s: expected an object keyed by line item", domain.ErrInvalidArgument, key, periodKey)
			}

			row := make(map[domain.LineItem]decimal.Decimal, len(items))
			for item, rawValue := range items {
				v, err := parseDecimal(rawValue)
				if err != nil {
					return domain.Tables{}, fmt.Errorf("%w value of %s/%s/%s: %w", domain.ErrInvalidArgument, key, periodKey, item, err)
				}
				row[domain.LineItem(item)] = v
			}
			table[p] = row
		}
	}

	return tables, nil
}

func parseDecimal(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported type %T", raw)
	}
}
