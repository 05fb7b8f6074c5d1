package gemini

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Number is an amount read from a model answer. Models sometimes quote
// numbers or add a currency symbol, so both "4.50" and 4.5 decode to 4.5.
// null and "" decode to 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	if data[0] != '"' {
		d, err := decimal.NewFromString(string(data))
		if err != nil {
			return fmt.Errorf("invalid number %s: %w", data, err)
		}
		f, _ := d.Float64()
		*n = Number(f)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	text = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		default:
			return -1
		}
	}, text)
	if text == "" {
		*n = 0
		return nil
	}

	d, err := decimal.NewFromString(normalizeSeparators(text))
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", data, err)
	}
	f, _ := d.Float64()
	*n = Number(f)
	return nil
}

// normalizeSeparators rewrites an amount to use a dot as the decimal separator.
// A single comma after the last dot is the decimal separator ("1.234,50");
// otherwise commas group thousands ("1,234.50").
func normalizeSeparators(text string) string {
	if strings.Count(text, ",") == 1 && strings.LastIndex(text, ",") > strings.LastIndex(text, ".") {
		text = strings.ReplaceAll(text, ".", "")
		return strings.Replace(text, ",", ".", 1)
	}
	return strings.ReplaceAll(text, ",", "")
}

func (n Number) Float() float64 { return float64(n) }
