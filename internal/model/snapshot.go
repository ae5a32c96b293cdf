package model

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

// StockImportSnapshot is the result of one import run. It is never
// modified after decoding; a reload replaces it entirely.
type StockImportSnapshot struct {
	Date         time.Time `json:"date"`
	ImportErrors []string  `json:"importErrors"`
	Stocks       []Stock   `json:"stocks"`
}

type Stock struct {
	Code             string     `json:"code"`
	IndicatorsValues Indicators `json:"indicatorsValues"`
}

// CurrentPrice returns the price recorded when the data was extracted.
// Zero, empty and null prices count as missing.
func (s Stock) CurrentPrice() (any, bool) {
	v, ok := s.IndicatorsValues.Get(CurrentPriceIndicator)
	if !ok {
		return nil, false
	}
	switch val := v.(type) {
	case nil:
		return nil, false
	case float64:
		if val == 0 {
			return nil, false
		}
	case string:
		if val == "" {
			return nil, false
		}
	case bool:
		if !val {
			return nil, false
		}
	}
	return v, true
}

// PriceLabel formats the current price in reais, or "-" when missing.
func (s Stock) PriceLabel() string {
	v, ok := s.CurrentPrice()
	if !ok {
		return "-"
	}
	return "R$ " + FormatValue(v)
}

func (s *StockImportSnapshot) FindStock(code string) (Stock, bool) {
	for _, st := range s.Stocks {
		if st.Code == code {
			return st, true
		}
	}
	return Stock{}, false
}

// DateLayout is the short day-first date with a 24h long time.
const DateLayout = "02/01/2006, 15:04:05 MST"

// DateLabel formats the import date in loc (time.Local when nil).
func (s *StockImportSnapshot) DateLabel(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return s.Date.In(loc).Format(DateLayout)
}

// ErrorsLabel joins the import errors, or returns "None".
func (s *StockImportSnapshot) ErrorsLabel() string {
	if len(s.ImportErrors) == 0 {
		return "None"
	}
	return strings.Join(s.ImportErrors, "; ")
}

func (s *StockImportSnapshot) HasErrors() bool {
	return len(s.ImportErrors) > 0
}

// LoadSnapshot reads a snapshot previously exported with `lastimport show --json`.
func LoadSnapshot(path string) (*StockImportSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s StockImportSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	return &s, nil
}
