package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// ReservedIndicatorKey is the storage identifier the import job writes into
// every indicator map. It is not a domain indicator.
const ReservedIndicatorKey = "_id"

// CurrentPriceIndicator holds the stock price at extraction time.
const CurrentPriceIndicator = "preco_atual"

// Indicator is a single named value of a stock. Value is float64, string,
// bool, nil, or json.RawMessage for nested values.
type Indicator struct {
	Name  string
	Value any
}

// Indicators keeps the indicator values of a stock in wire order.
type Indicators []Indicator

func (in *Indicators) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("indicators: invalid json")
	}

	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*in = nil
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("indicators: expected object, got %s", res.Type)
	}

	out := Indicators{}
	seen := make(map[string]int)
	res.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		v := decodeValue(value)
		// A repeated key keeps its first position and its last value.
		if i, ok := seen[name]; ok {
			out[i].Value = v
			return true
		}
		seen[name] = len(out)
		out = append(out, Indicator{Name: name, Value: v})
		return true
	})

	*in = out
	return nil
}

func (in Indicators) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ind := range in {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(ind.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(ind.Value)
		if err != nil {
			return nil, fmt.Errorf("indicator %s: %w", ind.Name, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (in Indicators) Len() int { return len(in) }

func (in Indicators) Get(name string) (any, bool) {
	for _, ind := range in {
		if ind.Name == name {
			return ind.Value, true
		}
	}
	return nil, false
}

func (in Indicators) Names() []string {
	names := make([]string, len(in))
	for i, ind := range in {
		names[i] = ind.Name
	}
	return names
}

// Without returns a copy of in with every entry called name removed.
func (in Indicators) Without(name string) Indicators {
	out := make(Indicators, 0, len(in))
	for _, ind := range in {
		if ind.Name == name {
			continue
		}
		out = append(out, ind)
	}
	return out
}

func decodeValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.False, gjson.True:
		return v.Bool()
	case gjson.Number:
		return v.Float()
	case gjson.String:
		return v.String()
	default:
		return json.RawMessage(v.Raw)
	}
}

// FormatValue renders an indicator value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.RawMessage:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}
