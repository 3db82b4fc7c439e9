package reseller

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a2n2k3p4/topup-gateway/models"
)

func TestUnwrapJSONP(t *testing.T) {
	const cb = "callback_123456789012345"

	tests := map[string]string{
		cb + `({"url":"u"})`:        `{"url":"u"}`,
		cb + `({"url":"u"});`:       `{"url":"u"}`,
		"  " + cb + ` ( {"a":1} ) `: `{"a":1}`,
		`{"url":"u"}`:               `{"url":"u"}`,
		"\n" + `{"url":"u"}` + "\n": `{"url":"u"}`,
		"other_cb({\"url\":\"u\"})": "other_cb({\"url\":\"u\"})",
	}
	for in, want := range tests {
		assert.Equal(t, want, string(unwrapJSONP([]byte(in), cb)), in)
	}
}

func TestDecodeChargeResponse(t *testing.T) {
	resp, err := decodeChargeResponse([]byte(`cb({"status":"ok","paymentInfo":{"url":"https://pay.example/1"}})`), "cb")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/1", resp.paymentURL())

	resp, err = decodeChargeResponse([]byte(`{"url":"https://pay.example/top","paymentInfo":{"url":"https://pay.example/nested"}}`), "cb")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/top", resp.paymentURL())

	_, err = decodeChargeResponse([]byte(`cb(not json)`), "cb")
	assert.Error(t, err)

	_, err = decodeChargeResponse([]byte(`["url"]`), "cb")
	assert.Error(t, err)
}

func TestChargeResponseReason(t *testing.T) {
	assert.Equal(t, "bad", chargeResponse{ErrorMessage: "bad", Message: "other"}.reason())
	assert.Equal(t, "other", chargeResponse{Message: "other"}.reason())
	assert.Equal(t, "status failed without a payment url", chargeResponse{Status: "failed"}.reason())
	assert.Equal(t, "no payment url in reseller response", chargeResponse{}.reason())
}

func TestRejectionReason(t *testing.T) {
	assert.Equal(t, "blocked", rejectionReason([]byte(`cb({"errorMessage":"blocked"})`), "cb", "Forbidden"))
	assert.Equal(t, "Forbidden", rejectionReason(nil, "cb", "Forbidden"))

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	reason := rejectionReason(long, "cb", "Forbidden")
	assert.Len(t, reason, 203)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, outcomeOK, outcome(nil))
	assert.Equal(t, outcomeRejected, outcome(&RejectedError{StatusCode: 403}))
	assert.Equal(t, outcomeMissingURL, outcome(&RejectedError{StatusCode: 200, MissingURL: true}))
	assert.Equal(t, outcomeTimeout, outcome(&UnavailableError{Timeout: true}))
	assert.Equal(t, outcomeMalformed, outcome(&UnavailableError{Malformed: true}))
	assert.Equal(t, outcomeUnavailable, outcome(&UnavailableError{StatusCode: 502}))
	assert.Equal(t, outcomeUnavailable, outcome(errors.New("boom")))
}

func TestObserve(t *testing.T) {
	counter := chargesTotal.WithLabelValues(string(models.ChargeTypePincode), outcomeTimeout)
	before := testutil.ToFloat64(counter)

	observe(models.ChargeTypePincode, &UnavailableError{Timeout: true}, 50*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "reseller declined the charge: no credit", (&RejectedError{MissingURL: true, Reason: "no credit"}).Error())
	assert.Equal(t, "reseller rejected the charge with status 403: nope", (&RejectedError{StatusCode: 403, Reason: "nope"}).Error())

	cause := errors.New("dial tcp: refused")
	err := &UnavailableError{Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "reseller unreachable: dial tcp: refused", err.Error())
	assert.Contains(t, (&UnavailableError{Timeout: true, Err: cause}).Error(), "did not answer in time")
	assert.Contains(t, (&UnavailableError{Malformed: true, Err: cause}).Error(), "unreadable")
	assert.Contains(t, (&UnavailableError{StatusCode: 500, Err: cause}).Error(), "status 500")
}
