package model

import "strings"

// PaymentMethod is a gateway-defined payment option, read-only from the
// provider's listing endpoint.
type PaymentMethod struct {
	PaymentID int    `json:"paymentId"`
	NameEn    string `json:"name_en"`
	NameAr    string `json:"name_ar"`
	Logo      string `json:"logo"`
	Redirect  string `json:"redirect"`
}

// walletHints are name fragments that mark a method as requiring the
// payer's mobile wallet number.
var walletHints = []string{"wallet", "cash", "vodafone", "orange", "etisalat", "mobile"}

// RequiresWallet classifies the method by name heuristics; the gateway
// does not expose a structured flag for wallet-type methods.
func (m PaymentMethod) RequiresWallet() bool {
	name := strings.ToLower(m.NameEn)
	for _, hint := range walletHints {
		if strings.Contains(name, hint) {
			return true
		}
	}
	return false
}

// RequiresRedirect reports whether the payer must be sent to the
// gateway's hosted page.
func (m PaymentMethod) RequiresRedirect() bool {
	return strings.EqualFold(m.Redirect, "true")
}
