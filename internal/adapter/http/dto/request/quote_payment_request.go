package request

import "encoding/json"

// DepositPaymentRequest is the payload for the deposit-payment route.
//
// `provider_payload` is forwarded as-is (raw JSON) to support varying Mercado
// Pago payment schemas; the deposit amount inside it is always overwritten
// from the stored quote total.

type DepositPaymentRequest struct {
	ProviderPayload json.RawMessage `json:"provider_payload"`
}
