package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// SepaPayload construit la charge utile EPC d'un virement SEPA.
func SepaPayload(iban, bic, name, ref string, amount decimal.Decimal) string {
	return fmt.Sprintf("BCD\n001\n1\nSCT\n%s\n%s\n%s\nEUR%s\n\n%s",
		bic, name, iban, amount.StringFixed(2), ref)
}

// GenerateSepaQR renvoie le QR code PNG du virement.
func GenerateSepaQR(iban, bic, name, ref string, amount decimal.Decimal) ([]byte, error) {
	return qrcode.Encode(SepaPayload(iban, bic, name, ref, amount), qrcode.Medium, 256)
}
