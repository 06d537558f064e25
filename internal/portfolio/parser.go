// Package portfolio values "SYMBOL:QTY" lists against live prices.
package portfolio

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dyike/FinSage/models"
)

var errTokenShape = errors.New("expected SYMBOL:QTY")

// ParseError reports malformed portfolio text. No partial result accompanies it.
type ParseError struct {
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid portfolio entry %q: %v", e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse splits text on "," and each token on ":". Any malformed token fails
// the whole parse.
func Parse(text string) ([]models.Holding, error) {
	tokens := strings.Split(text, ",")
	holdings := make([]models.Holding, 0, len(tokens))
	for _, token := range tokens {
		parts := strings.Split(token, ":")
		if len(parts) != 2 {
			return nil, &ParseError{Token: strings.TrimSpace(token), Err: errTokenShape}
		}

		qty, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, &ParseError{Token: strings.TrimSpace(token), Err: err}
		}
		if math.IsNaN(qty) || math.IsInf(qty, 0) {
			return nil, &ParseError{Token: strings.TrimSpace(token), Err: fmt.Errorf("quantity %q is not a finite number", strings.TrimSpace(parts[1]))}
		}

		holdings = append(holdings, models.Holding{
			Symbol:   strings.ToUpper(strings.TrimSpace(parts[0])),
			Quantity: decimal.NewFromFloat(qty),
		})
	}
	return holdings, nil
}

// Symbols returns the symbol field of every token as typed, for per-symbol
// charts. It does not validate the text.
func Symbols(text string) []string {
	var symbols []string
	for _, token := range strings.Split(text, ",") {
		symbol := strings.TrimSpace(strings.SplitN(token, ":", 2)[0])
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}
	return symbols
}
