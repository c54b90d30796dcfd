// Package whatsapp builds wa.me deep links that open a chat with a seller
// pre-filled with an order message.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"marketplace-api/internal/apperror"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	countryCode = "55"
	baseURL     = "https://wa.me/"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// CleanPhoneNumber keeps only digits and prefixes the Brazilian country code
// unless the number already carries it. National numbers are at most 11
// digits, so an area code of 55 is not mistaken for the country code.
func CleanPhoneNumber(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, countryCode) && len(digits) > 11 {
		return digits
	}
	return countryCode + digits
}

// FormatBRL renders an amount the pt-BR way: R$ 7.999,99.
func FormatBRL(amount decimal.Decimal) string {
	v := amount.Round(2).InexactFloat64()
	return "R$ " + brPrinter.Sprint(number.Decimal(v, number.Scale(2)))
}

// Line is one product in a message.
type Line struct {
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
	URL       string
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) validate() error {
	if l.Title == "" {
		return &apperror.ValidationError{Field: "title", Message: "is required"}
	}
	if l.Quantity <= 0 {
		return &apperror.ValidationError{Field: "quantity", Message: "must be positive"}
	}
	if l.UnitPrice.IsNegative() {
		return &apperror.ValidationError{Field: "price", Message: "must be >= 0"}
	}
	return nil
}

func ProductMessage(l Line) (string, error) {
	if err := l.validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Olá! Tenho interesse neste produto:\n\n")
	fmt.Fprintf(&b, "*%s*\n", l.Title)
	fmt.Fprintf(&b, "Preço: %s\n", FormatBRL(l.UnitPrice))
	fmt.Fprintf(&b, "Quantidade: %d\n", l.Quantity)
	fmt.Fprintf(&b, "Total: %s\n", FormatBRL(l.Total()))
	if l.URL != "" {
		fmt.Fprintf(&b, "\nLink: %s", l.URL)
	}

	return b.String(), nil
}

func CartMessage(lines []Line) (string, error) {
	if len(lines) == 0 {
		return "", &apperror.ValidationError{Field: "items", Message: "cart is empty"}
	}

	var (
		b     strings.Builder
		total = decimal.Zero
	)

	b.WriteString("Olá! Gostaria de fazer um pedido:\n\n")
	for i, l := range lines {
		if err := l.validate(); err != nil {
			return "", err
		}
		total = total.Add(l.Total())

		fmt.Fprintf(&b, "%d. *%s*\n", i+1, l.Title)
		fmt.Fprintf(&b, "   %d x %s = %s\n", l.Quantity, FormatBRL(l.UnitPrice), FormatBRL(l.Total()))
		if l.URL != "" {
			fmt.Fprintf(&b, "   %s\n", l.URL)
		}
	}
	fmt.Fprintf(&b, "\n*Total: %s*", FormatBRL(total))

	return b.String(), nil
}

// Link returns https://wa.me/{digits}?text={message}.
func Link(phone, msg string) (string, error) {
	digits := CleanPhoneNumber(phone)
	if digits == "" {
		return "", &apperror.ValidationError{Field: "phone", Message: "store has no phone number"}
	}

	// encodeURIComponent style: spaces as %20, not '+'.
	text := strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
	return baseURL + digits + "?text=" + text, nil
}
