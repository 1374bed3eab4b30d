package postgres

import (
	"encoding/json"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return timeToPgTimestamptz(*t)
}

func pgTimestamptzToPtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func optionalText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// rowLimit maps a non-positive limit to "no limit".
func rowLimit(limit int) int32 {
	if limit <= 0 || limit > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(limit)
}

func rowOffset(offset int) int32 {
	if offset <= 0 {
		return 0
	}
	return int32(min(offset, math.MaxInt32))
}

// Holdings are stored as a JSON object of decimal strings so no precision is
// lost to float64.
func marshalHoldings(holdings map[string]decimal.Decimal) ([]byte, error) {
	out := make(map[string]string, len(holdings))
	for coin, qty := range holdings {
		out[coin] = qty.String()
	}
	return json.Marshal(out)
}

func unmarshalHoldings(data []byte) (map[string]decimal.Decimal, error) {
	holdings := map[string]decimal.Decimal{}
	if len(data) == 0 {
		return holdings, nil
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for coin, qty := range raw {
		d, err := decimal.NewFromString(qty)
		if err != nil {
			return nil, err
		}
		holdings[coin] = d
	}
	return holdings, nil
}
