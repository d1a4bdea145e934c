package codeable

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ID is an external identifier. Only JSON integer literals decode to a
// non-zero value; strings, fractions, booleans, and null decode to 0 so the
// record is treated as blank instead of failing the whole page.
type ID int64

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = 0
	token := bytes.TrimSpace(data)
	if len(token) == 0 || bytes.ContainsAny(token, `".eE`) {
		return nil
	}
	value, err := strconv.ParseInt(string(token), 10, 64)
	if err != nil {
		return nil
	}
	*id = ID(value)
	return nil
}

// Valid reports whether the id is a usable positive key.
func (id ID) Valid() bool { return id > 0 }

// Truthy decodes loosely typed flags. Missing, null, false, 0, "", "0", and
// empty arrays or objects are false; every other value is true.
type Truthy bool

// UnmarshalJSON implements json.Unmarshaler.
func (t *Truthy) UnmarshalJSON(data []byte) error {
	*t = false
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case bool:
		*t = Truthy(v)
	case float64:
		*t = v != 0
	case string:
		*t = v != "" && v != "0"
	case []any:
		*t = len(v) > 0
	case map[string]any:
		*t = len(v) > 0
	}
	return nil
}

// UnixTime is a unix timestamp in seconds. Numbers, numeric strings, and
// RFC 3339 strings are accepted; anything else decodes to 0.
type UnixTime int64

// UnmarshalJSON implements json.Unmarshaler.
func (u *UnixTime) UnmarshalJSON(data []byte) error {
	*u = 0
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		*u = UnixTime(int64(v))
	case string:
		v = strings.TrimSpace(v)
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*u = UnixTime(n)
			return nil
		}
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			*u = UnixTime(ts.Unix())
		}
	}
	return nil
}

// Number is a loosely typed decimal. JSON numbers and numeric strings decode
// exactly; null, "", and any other value decode to zero.
type Number struct {
	decimal.Decimal
}

// NewNumber wraps d.
func NewNumber(d decimal.Decimal) Number { return Number{Decimal: d} }

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	n.Decimal = decimal.Zero
	token := bytes.TrimSpace(data)
	if len(token) > 0 && token[0] == '"' {
		var s string
		if err := json.Unmarshal(token, &s); err != nil {
			return nil
		}
		token = []byte(strings.TrimSpace(s))
	}
	if len(token) == 0 {
		return nil
	}
	value, err := decimal.NewFromString(string(token))
	if err != nil {
		return nil
	}
	n.Decimal = value
	return nil
}

// LineItem is one credit or debit entry.
type LineItem struct {
	ID     ID     `json:"id"`
	Amount Number `json:"amount"`
}

// Credit names the positional credit_amounts array: index 0 is revenue,
// 1 the platform fee, 2 the user payout.
type Credit struct {
	Revenue LineItem
	Fee     LineItem
	User    LineItem
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Credit) UnmarshalJSON(data []byte) error {
	items, err := decodeLineItems(data)
	if err != nil {
		return err
	}
	*c = Credit{Revenue: lineAt(items, 0), Fee: lineAt(items, 1), User: lineAt(items, 2)}
	return nil
}

// Debit names the positional debit_amounts array: index 0 is cost, 1 the user.
type Debit struct {
	Cost LineItem
	User LineItem
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Debit) UnmarshalJSON(data []byte) error {
	items, err := decodeLineItems(data)
	if err != nil {
		return err
	}
	*d = Debit{Cost: lineAt(items, 0), User: lineAt(items, 1)}
	return nil
}

func decodeLineItems(data []byte) ([]*LineItem, error) {
	if !isArray(data) {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	items := make([]*LineItem, len(raw))
	for i, entry := range raw {
		items[i] = decodeObject[LineItem](entry)
	}
	return items, nil
}

func lineAt(items []*LineItem, index int) LineItem {
	if index >= len(items) || items[index] == nil {
		return LineItem{}
	}
	return *items[index]
}

func isObject(data []byte) bool {
	token := bytes.TrimSpace(data)
	return len(token) > 0 && token[0] == '{'
}

func isArray(data []byte) bool {
	token := bytes.TrimSpace(data)
	return len(token) > 0 && token[0] == '['
}

// decodeObject decodes an optional nested object. Anything other than a JSON
// object, or an object that does not fit T, yields nil.
func decodeObject[T any](data json.RawMessage) *T {
	if !isObject(data) {
		return nil
	}
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil
	}
	return out
}
