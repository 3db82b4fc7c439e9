package reseller

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

type chargeResponse struct {
	Status       string `json:"status"`
	URL          string `json:"url"`
	ErrorMessage string `json:"errorMessage"`
	Message      string `json:"message"`
	PaymentInfo  *struct {
		URL string `json:"url"`
	} `json:"paymentInfo"`
}

func (r chargeResponse) paymentURL() string {
	if r.URL != "" {
		return r.URL
	}
	if r.PaymentInfo != nil {
		return r.PaymentInfo.URL
	}
	return ""
}

func (r chargeResponse) reason() string {
	switch {
	case r.ErrorMessage != "":
		return r.ErrorMessage
	case r.Message != "":
		return r.Message
	case r.Status != "":
		return "status " + r.Status + " without a payment url"
	}
	return "no payment url in reseller response"
}

// unwrapJSONP strips callback_123(...) around the body. Plain JSON passes
// through untouched.
func unwrapJSONP(body []byte, callback string) []byte {
	b := bytes.TrimSpace(body)
	rest, ok := bytes.CutPrefix(b, []byte(callback))
	if !ok {
		return b
	}
	rest = bytes.TrimSpace(rest)
	rest = bytes.TrimSuffix(rest, []byte(";"))
	rest = bytes.TrimSpace(rest)
	rest = bytes.TrimPrefix(rest, []byte("("))
	rest = bytes.TrimSuffix(rest, []byte(")"))
	return bytes.TrimSpace(rest)
}

func decodeChargeResponse(body []byte, callback string) (chargeResponse, error) {
	var resp chargeResponse
	if err := json.Unmarshal(unwrapJSONP(body, callback), &resp); err != nil {
		return chargeResponse{}, fmt.Errorf("decoding reseller response: %w", err)
	}
	return resp, nil
}

// rejectionReason picks something readable out of a non-2xx body.
func rejectionReason(body []byte, callback, status string) string {
	if resp, err := decodeChargeResponse(body, callback); err == nil {
		if resp.ErrorMessage != "" {
			return resp.ErrorMessage
		}
		if resp.Message != "" {
			return resp.Message
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return status
	}
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}
