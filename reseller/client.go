package reseller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/a2n2k3p4/topup-gateway/config"
	"github.com/a2n2k3p4/topup-gateway/models"
	"github.com/a2n2k3p4/topup-gateway/observability"
)

// CallIDAttribute is the span attribute carrying a fresh id per reseller call.
const CallIDAttribute = "reseller.call_id"

const (
	scriptVersion = "Script-fluent-1.7"
	maxBodyBytes  = 1 << 20
)

var endpoints = map[models.ChargeType]string{
	models.ChargeTypeDirect:  "/services/v3/EasyCharge/TopUp",
	models.ChargeTypePincode: "/services/v3/EasyCharge/BuyProduct",
}

// Client talks to the chr724 EasyCharge API. It holds no per-call state and
// is safe for concurrent use.
type Client struct {
	cfg    config.Reseller
	http   *http.Client
	tracer trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(cfg config.Reseller, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		tracer: otel.Tracer("github.com/a2n2k3p4/topup-gateway/reseller"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Charge performs exactly one call to the reseller. Failures are either
// *RejectedError or *UnavailableError; the call never outlives cfg.Timeout.
func (c *Client) Charge(ctx context.Context, req models.ChargeRequest) (*models.ChargeResult, error) {
	endpoint, ok := endpoints[req.ChargeType]
	if !ok {
		return nil, fmt.Errorf("unsupported charge type %q", req.ChargeType)
	}
	operator := req.Operator()
	if operator == "" {
		return nil, fmt.Errorf("no operator for phone %q", req.Phone)
	}
	callID := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "reseller.Charge", trace.WithAttributes(
		attribute.String(CallIDAttribute, callID),
		attribute.String("charge.type", string(req.ChargeType)),
		attribute.String("charge.operator", string(operator)),
		attribute.Int64("charge.amount", req.Amount),
	))
	defer span.End()

	log := observability.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"call_id":     callID,
		"charge_type": req.ChargeType,
		"operator":    operator,
	})

	callback := "callback_" + randomDigits(15)
	target := c.cfg.BaseURL + endpoint + "?" + c.query(req, operator, callback).Encode()

	start := time.Now()
	result, err := c.do(ctx, target, callback)
	took := time.Since(start)
	observe(req.ChargeType, err, took)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithError(err).WithField("took", took).Warn("Reseller charge failed")
		return nil, err
	}

	log.WithField("took", took).Info("Reseller returned payment url")
	return result, nil
}

func (c *Client) do(ctx context.Context, target, callback string) (*models.ChargeResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building reseller request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if id := observability.CorrelationIDFromContext(ctx); id != "" {
		httpReq.Header.Set("Correlation-ID", id)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &UnavailableError{Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &UnavailableError{Timeout: isTimeout(err), Err: fmt.Errorf("reading reseller response: %w", err)}
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &UnavailableError{
			StatusCode: resp.StatusCode,
			Err:        errors.New(rejectionReason(body, callback, http.StatusText(resp.StatusCode))),
		}
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return nil, &RejectedError{
			StatusCode: resp.StatusCode,
			Reason:     rejectionReason(body, callback, http.StatusText(resp.StatusCode)),
		}
	}

	payload, err := decodeChargeResponse(body, callback)
	if err != nil {
		return nil, &UnavailableError{Malformed: true, Err: err}
	}

	paymentURL := payload.paymentURL()
	if paymentURL == "" {
		return nil, &RejectedError{StatusCode: resp.StatusCode, MissingURL: true, Reason: payload.reason()}
	}

	return &models.ChargeResult{PaymentURL: paymentURL}, nil
}

func (c *Client) query(req models.ChargeRequest, operator models.Operator, callback string) url.Values {
	q := url.Values{}
	q.Set("data[webserviceId]", c.cfg.WebServiceID)
	q.Set("data[redirectUrl]", c.cfg.RedirectURL)
	q.Set("data[count]", "1")
	for _, empty := range []string{"email", "packageId", "billId", "paymentId", "issuer", "ChargeKind"} {
		q.Set("data["+empty+"]", "")
	}
	q.Set("data[paymentDetails]", "true")
	q.Set("data[redirectToPage]", "true")
	q.Set("data[scriptVersion]", scriptVersion)
	q.Set("data[firstOutputType]", "json")
	q.Set("data[isTarabord]", "false")
	q.Set("data[secondOutputType]", "get")
	q.Set("data[nonce]", nonce())

	q.Set("data[amount]", strconv.FormatInt(req.Amount, 10))
	q.Set("data[cellphone]", req.Phone)
	q.Set("data[type]", string(operator))
	if req.ChargeType == models.ChargeTypePincode {
		q.Set("data[productId]", fmt.Sprintf("CC-%s-%d", operator, req.Amount))
	}

	q.Set("callback", callback)
	return q
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func randomDigits(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + rand.IntN(10))
	}
	return string(b)
}

// nonce is a 13 digit number, the width the reseller expects.
func nonce() string {
	const lo, hi = 1111111111111, 9999999999999
	return strconv.FormatInt(lo+rand.Int64N(hi-lo+1), 10)
}
