package fawaterk

import "github.com/shopspring/decimal"

// CartItem is one line of the gateway invoice cart.
type CartItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Customer identifies the payer to the gateway.
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// RedirectionURLs are the browser-return and webhook endpoints the
// gateway calls after the payer acts on the hosted page.
type RedirectionURLs struct {
	SuccessURL string `json:"successUrl"`
	FailURL    string `json:"failUrl"`
	PendingURL string `json:"pendingUrl"`
	WebhookURL string `json:"webhookUrl"`
}

// InvoicePayload is echoed back verbatim in webhook deliveries.
type InvoicePayload struct {
	DonationID       int64   `json:"donation_id"`
	StreamerID       int64   `json:"streamer_id"`
	StreamerName     string  `json:"streamer_name"`
	StreamerUsername string  `json:"streamer_username"`
	DonorName        string  `json:"donor_name"`
	DonorMessage     string  `json:"donor_message"`
	WalletNumber     *string `json:"wallet_number,omitempty"`
}

// InvoiceRequest is the createInvoiceLink request body.
type InvoiceRequest struct {
	CartItems       []CartItem      `json:"cartItems"`
	CartTotal       decimal.Decimal `json:"cartTotal"`
	Shipping        int             `json:"shipping"`
	Customer        Customer        `json:"customer"`
	Currency        string          `json:"currency"`
	Payload         InvoicePayload  `json:"payLoad"`
	SendEmail       bool            `json:"sendEmail"`
	SendSMS         bool            `json:"sendSMS"`
	RedirectionURLs RedirectionURLs `json:"redirectionUrls"`
	PaymentMethodID int             `json:"payment_method_id"`
}

// Invoice is the useful part of a successful createInvoiceLink response.
type Invoice struct {
	URL        string `json:"url"`
	InvoiceKey string `json:"invoiceKey"`
	InvoiceID  int64  `json:"invoiceId"`
}

type invoiceResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Data    *Invoice `json:"data"`
}

type paymentMethodsResponse struct {
	Status string `json:"status"`
	Data   []paymentMethodData `json:"data"`
}

type paymentMethodData struct {
	PaymentID int    `json:"paymentId"`
	NameEn    string `json:"name_en"`
	NameAr    string `json:"name_ar"`
	Logo      string `json:"logo"`
	Redirect  string `json:"redirect"`
}
