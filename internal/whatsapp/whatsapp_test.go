package whatsapp

import (
	"net/url"
	"strings"
	"testing"

	"marketplace-api/internal/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(11) 99999-9999", "5511999999999"},
		{"5511999999999", "5511999999999"},
		{"+55 (21) 3333-4444", "552133334444"},
		{"(55) 99123-4567", "5555991234567"},
		{"", ""},
		{"abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanPhoneNumber(tt.in))
		})
	}
}

func TestCleanPhoneNumber_Idempotent(t *testing.T) {
	once := CleanPhoneNumber("(11) 99999-9999")
	assert.Equal(t, once, CleanPhoneNumber(once))
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 7.999,99", FormatBRL(decimal.RequireFromString("7999.99")))
	assert.Equal(t, "R$ 0,50", FormatBRL(decimal.RequireFromString("0.5")))
	assert.Equal(t, "R$ 1.234.567,00", FormatBRL(decimal.NewFromInt(1234567)))
}

func TestProductMessage(t *testing.T) {
	msg, err := ProductMessage(Line{
		Title:     "iPhone 14 Pro",
		UnitPrice: decimal.RequireFromString("7999.99"),
		Quantity:  2,
		URL:       "https://loja.example.com/produto/p1",
	})
	require.NoError(t, err)

	assert.Contains(t, msg, "*iPhone 14 Pro*")
	assert.Contains(t, msg, "Preço: R$ 7.999,99")
	assert.Contains(t, msg, "Quantidade: 2")
	assert.Contains(t, msg, "Total: R$ 15.999,98")
	assert.Contains(t, msg, "https://loja.example.com/produto/p1")
}

func TestProductMessage_RejectsBadQuantity(t *testing.T) {
	_, err := ProductMessage(Line{Title: "x", UnitPrice: decimal.NewFromInt(1), Quantity: 0})
	assert.True(t, apperror.IsValidation(err))
}

func TestCartMessage_GrandTotal(t *testing.T) {
	msg, err := CartMessage([]Line{
		{Title: "Camisa", UnitPrice: decimal.RequireFromString("59.90"), Quantity: 2},
		{Title: "Boné", UnitPrice: decimal.RequireFromString("35.00"), Quantity: 1},
	})
	require.NoError(t, err)

	assert.Contains(t, msg, "1. *Camisa*")
	assert.Contains(t, msg, "2 x R$ 59,90 = R$ 119,80")
	assert.Contains(t, msg, "2. *Boné*")
	assert.True(t, strings.HasSuffix(msg, "*Total: R$ 154,80*"))

	_, err = CartMessage(nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestLink(t *testing.T) {
	link, err := Link("(11) 99999-9999", "Olá! Preço: R$ 10,00 & mais")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(link, "https://wa.me/5511999999999?text="))
	assert.NotContains(t, link, "+")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Olá! Preço: R$ 10,00 & mais", u.Query().Get("text"))

	_, err = Link("", "hi")
	assert.True(t, apperror.IsValidation(err))
}
