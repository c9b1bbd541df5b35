package inventory

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var draftValidator = validator.New()

// draftRules lists the draft checks in reporting order. validator walks struct
// fields in declaration order, so the first field error is the first failed rule.
type draftRules struct {
	Name     string `validate:"required"`
	Type     string `validate:"required"`
	SKU      string `validate:"required"`
	Price    int    `validate:"gt=0"`
	Quantity int    `validate:"gte=0"`
}

var ruleByField = map[string]ValidationError{
	"Name":     {Code: NameRequired, Field: "name", Message: "Product name is required"},
	"Type":     {Code: TypeRequired, Field: "type", Message: "Product type is required"},
	"SKU":      {Code: SkuRequired, Field: "sku", Message: "SKU is required"},
	"Price":    {Code: PriceMustBePositive, Field: "price", Message: "Price must be greater than 0"},
	"Quantity": {Code: QuantityCannotBeNegative, Field: "quantity", Message: "Quantity cannot be negative"},
}

// ValidateDraft checks d and returns the first violated rule as *ValidationError.
func ValidateDraft(d Draft) error {
	rules := draftRules{
		Name:     strings.TrimSpace(d.Name),
		Type:     strings.TrimSpace(d.Type),
		SKU:      strings.TrimSpace(d.SKU),
		Price:    d.Price.Sign(),
		Quantity: d.Quantity,
	}
	err := draftValidator.Struct(rules)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	rule, ok := ruleByField[fieldErrs[0].StructField()]
	if !ok {
		return err
	}
	return &rule
}

// ParseNumeric parses a decimal form value, falling back to zero. It reads the
// longest numeric prefix, exponent included ("12.5kg" is 12.5, "1e3" is 1000).
func ParseNumeric(raw string) decimal.Decimal {
	prefix := numericPrefix(strings.TrimSpace(raw), true)
	if prefix == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero
	}
	return value
}

// ParseInteger parses an integer form value. It reads the leading integer and
// keeps its sign; unparseable input gives 0.
func ParseInteger(raw string) int {
	prefix := numericPrefix(strings.TrimSpace(raw), false)
	if prefix == "" {
		return 0
	}
	value, err := strconv.Atoi(prefix)
	if err != nil {
		return 0
	}
	return value
}

// ParseQuantity is ParseInteger clamped at zero, for stock counts.
func ParseQuantity(raw string) int {
	if value := ParseInteger(raw); value > 0 {
		return value
	}
	return 0
}

func numericPrefix(s string, allowFraction bool) string {
	end := 0
	sign := ""
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		if s[end] == '-' {
			sign = "-"
		}
		end++
	}
	intStart := end
	end = skipDigits(s, end)
	whole := s[intStart:end]
	if !allowFraction {
		if whole == "" {
			return ""
		}
		return sign + whole
	}

	fraction := ""
	if end < len(s) && s[end] == '.' {
		fracEnd := skipDigits(s, end+1)
		if fracEnd > end+1 {
			fraction = s[end:fracEnd]
			end = fracEnd
		} else if whole != "" {
			end++
		}
	}
	if whole == "" && fraction == "" {
		return ""
	}
	if whole == "" {
		whole = "0"
	}

	exponent := ""
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		expStart := end + 1
		expSign := ""
		if expStart < len(s) && (s[expStart] == '-' || s[expStart] == '+') {
			if s[expStart] == '-' {
				expSign = "-"
			}
			expStart++
		}
		if expEnd := skipDigits(s, expStart); expEnd > expStart {
			exponent = "e" + expSign + s[expStart:expEnd]
		}
	}
	return sign + whole + fraction + exponent
}

func skipDigits(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
