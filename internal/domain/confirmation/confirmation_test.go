package confirmation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colormuse/colormuse-books/internal/domain/checkout"
	"github.com/colormuse/colormuse-books/internal/domain/checkout/checkouttest"
	"github.com/colormuse/colormuse-books/internal/domain/confirmation"
	"github.com/colormuse/colormuse-books/internal/domain/preview"
	"github.com/colormuse/colormuse-books/internal/domain/retry"
	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
)

type fakeMailer struct {
	mu       sync.Mutex
	failures int
	err      error
	sent     []confirmation.Message
}

func (m *fakeMailer) Send(_ context.Context, msg confirmation.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.failures > 0 {
		m.failures--
		return errors.New("421 service not available")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakeStorage struct {
	mu   sync.Mutex
	keys []string
}

func (s *fakeStorage) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if contentType != "application/pdf" || len(data) == 0 {
		return "", errors.New("unexpected artifact")
	}
	s.keys = append(s.keys, key)
	return "https://files.example.com/" + key, nil
}

type fakeProofs struct{}

func (fakeProofs) Build(_ context.Context, set *preview.PreviewSet) ([]byte, error) {
	return []byte("%PDF-1.3 " + set.Prompt), nil
}

type upperRedactor struct{}

func (upperRedactor) Sanitize(string) string { return "[EMAIL]" }

var fastRetry = retry.Policy{MaxRetries: 2, InitialDelay: time.Millisecond, BackoffStrategy: retry.BackoffFixed}

func paidJob(ref string) confirmation.Job {
	return confirmation.Job{
		SessionID: "01SESSION",
		Confirmation: checkout.Confirmation{
			Reference: ref,
			Form:      checkout.OrderForm{Name: "Ada", Email: "ada@example.com", Address: "1 Loop Rd"},
			Payment:   &checkout.PaymentRecord{OrderID: "ORDER-9", Status: checkout.OrderStatusCompleted},
		},
		Preview: &preview.PreviewSet{Prompt: "sea animals", Pages: []string{"assets/page1.png"}},
	}
}

func newProcessor(sdk *checkouttest.SDK, mailer *fakeMailer, storage *fakeStorage) *confirmation.Processor {
	deps := confirmation.Deps{
		Proofs:   fakeProofs{},
		Redactor: upperRedactor{},
		Retry:    fastRetry,
	}
	if sdk != nil {
		deps.Orders = sdk.Orders()
	}
	if mailer != nil {
		deps.Mailer = mailer
	}
	if storage != nil {
		deps.Storage = storage
	}
	return confirmation.NewProcessor(deps, zerolog.Nop())
}

func TestProcessor_ConfirmsPaidOrder(t *testing.T) {
	sdk := checkouttest.New()
	mailer := &fakeMailer{}
	storage := &fakeStorage{}
	p := newProcessor(sdk, mailer, storage)

	res, err := p.Process(context.Background(), paidJob("REF1"))
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.True(t, res.Emailed)
	assert.Equal(t, "https://files.example.com/proofs/REF1.pdf", res.ProofURL)
	assert.Equal(t, []string{"ORDER-9"}, sdk.Fetched)
	assert.Equal(t, []string{"proofs/REF1.pdf"}, storage.keys)

	require.Equal(t, 1, mailer.count())
	msg := mailer.sent[0]
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Your ColorMuse Books Order", msg.Subject)
	assert.Contains(t, msg.Body, "Hello Ada,")
	assert.Contains(t, msg.Body, "Order ID (PayPal): ORDER-9")
	assert.Contains(t, msg.Body, "Proof: https://files.example.com/proofs/REF1.pdf")
	assert.Contains(t, msg.Body, "1 Loop Rd")
}

func TestProcessor_SkipsUnpaidOrder(t *testing.T) {
	sdk := checkouttest.New()
	sdk.OrderStatus = "APPROVED"
	mailer := &fakeMailer{}
	storage := &fakeStorage{}
	p := newProcessor(sdk, mailer, storage)

	res, err := p.Process(context.Background(), paidJob("REF2"))
	require.Error(t, err)
	assert.ErrorIs(t, err, confirmation.ErrPaymentNotCompleted)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypePayment))
	assert.False(t, res.Verified)
	assert.Zero(t, mailer.count())
	assert.Empty(t, storage.keys)
}

func TestProcessor_VerificationFailure(t *testing.T) {
	sdk := checkouttest.New()
	sdk.GetErr = errors.New("provider timeout")
	mailer := &fakeMailer{}
	p := newProcessor(sdk, mailer, nil)

	_, err := p.Process(context.Background(), paidJob("REF3"))
	require.Error(t, err)
	assert.Zero(t, mailer.count())
}

func TestProcessor_WithoutPaymentRecord(t *testing.T) {
	sdk := checkouttest.New()
	mailer := &fakeMailer{}
	p := newProcessor(sdk, mailer, nil)

	job := paidJob("REF4")
	job.Confirmation.Payment = nil
	res, err := p.Process(context.Background(), job)
	require.NoError(t, err)
	assert.False(t, res.Verified)
	assert.True(t, res.Emailed)
	assert.Empty(t, sdk.Fetched)
	assert.NotContains(t, mailer.sent[0].Body, "PayPal")
}

func TestProcessor_RetriesEmail(t *testing.T) {
	mailer := &fakeMailer{failures: 2}
	p := newProcessor(checkouttest.New(), mailer, nil)

	res, err := p.Process(context.Background(), paidJob("REF5"))
	require.NoError(t, err)
	assert.True(t, res.Emailed)
	assert.Equal(t, 1, mailer.count())
}

func TestProcessor_EmailFailureIsReported(t *testing.T) {
	mailer := &fakeMailer{err: retry.Permanent(errors.New("550 mailbox unavailable"))}
	storage := &fakeStorage{}
	p := newProcessor(checkouttest.New(), mailer, storage)

	res, err := p.Process(context.Background(), paidJob("REF6"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "550 mailbox unavailable")
	assert.False(t, res.Emailed)
	assert.NotEmpty(t, res.ProofURL)
}

func TestProcessor_NoMailer(t *testing.T) {
	p := newProcessor(checkouttest.New(), nil, nil)

	res, err := p.Process(context.Background(), paidJob("REF7"))
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.False(t, res.Emailed)
}

func TestDispatcher_ProcessesAndDrains(t *testing.T) {
	mailer := &fakeMailer{}
	d := confirmation.NewDispatcher(newProcessor(checkouttest.New(), mailer, nil), nil,
		confirmation.Config{WorkerCount: 3, QueueSize: 16, JobTimeout: time.Second}, zerolog.Nop())

	var mu sync.Mutex
	var results []string
	d.OnResult(func(job confirmation.Job, res *confirmation.Result, err error) {
		mu.Lock()
		defer mu.Unlock()
		assert.NoError(t, err)
		results = append(results, res.Reference)
	})

	d.Start(context.Background())
	for _, ref := range []string{"A", "B", "C", "D", "E"} {
		require.NoError(t, d.Enqueue(context.Background(), paidJob(ref)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	assert.ElementsMatch(t, []string{"A", "B", "C", "D", "E"}, results)
	assert.Equal(t, 5, mailer.count())

	err := d.Enqueue(context.Background(), paidJob("late"))
	assert.ErrorIs(t, err, confirmation.ErrStopped)
}

func TestDispatcher_QueueFull(t *testing.T) {
	d := confirmation.NewDispatcher(newProcessor(nil, nil, nil), nil,
		confirmation.Config{WorkerCount: 1, QueueSize: 1}, zerolog.Nop())

	require.NoError(t, d.Enqueue(context.Background(), paidJob("first")))
	assert.Equal(t, 1, d.QueueDepth())

	err := d.Enqueue(context.Background(), paidJob("second"))
	assert.ErrorIs(t, err, confirmation.ErrQueueFull)
}

type countingInstrumenter struct {
	mu   sync.Mutex
	jobs []string
}

func (c *countingInstrumenter) InstrumentJob(ctx context.Context, jobType, jobID string, fn func(context.Context) error) error {
	c.mu.Lock()
	c.jobs = append(c.jobs, jobType+":"+jobID)
	c.mu.Unlock()
	return fn(ctx)
}

func TestDispatcher_UsesInstrumenter(t *testing.T) {
	inst := &countingInstrumenter{}
	d := confirmation.NewDispatcher(newProcessor(nil, nil, nil), inst,
		confirmation.Config{WorkerCount: 1, QueueSize: 2}, zerolog.Nop())
	d.Start(context.Background())
	require.NoError(t, d.Enqueue(context.Background(), paidJob("X")))
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, []string{"order_confirmation:X"}, inst.jobs)
}
