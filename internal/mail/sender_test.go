package mail

import (
	"bytes"
	"context"
	"io"
	"net/textproto"
	"syscall"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/posleasing/leasesync/internal/domain"
	"github.com/posleasing/leasesync/internal/retry"
)

type MockDialer struct {
	mock.Mock
}

func (m *MockDialer) Dial() (gomail.SendCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(gomail.SendCloser), args.Error(1)
}

// sessionStub is an SMTP session whose Send is a gomail.SendFunc.
type sessionStub struct {
	gomail.SendFunc
	closed int
}

func (s *sessionStub) Close() error {
	s.closed++
	return nil
}

// failingSession returns a session failing with each error in turn, then succeeding.
func failingSession(errs ...error) *sessionStub {
	calls := 0
	return &sessionStub{SendFunc: func(from string, to []string, msg io.WriterTo) error {
		calls++
		if calls <= len(errs) {
			return errs[calls-1]
		}
		_, err := msg.WriteTo(io.Discard)
		return err
	}}
}

func instantTransport() retry.Policy {
	p := retry.Transport(zerolog.Nop())
	p.NewBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return p
}

func testMessage() Message {
	return Message{
		From:     "robot@example.com",
		To:       []string{"ops@example.com", "finance@example.com"},
		Subject:  "Reporte mensual",
		HTMLBody: "<p>Adjunto</p>",
		Attachments: []domain.Attachment{
			{Filename: "ReporteInactivos.xlsx", ContentType: domain.ContentTypeXLSX, Content: []byte("xlsx")},
		},
	}
}

func TestSend_RetriesTransientDialFailures(t *testing.T) {
	session := failingSession()
	d := new(MockDialer)
	d.On("Dial").Return(nil, syscall.ECONNRESET).Twice()
	d.On("Dial").Return(session, nil).Once()

	s := NewSender(d, instantTransport(), zerolog.Nop())
	require.NoError(t, s.Send(context.Background(), testMessage()))
	d.AssertNumberOfCalls(t, "Dial", 3)
	assert.Equal(t, 1, session.closed)
}

func TestSend_RetriesTransientSessionFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "greylisted", err: &textproto.Error{Code: 451, Msg: "try again later"}},
		{name: "service closing", err: &textproto.Error{Code: 421, Msg: "service not available"}},
		{name: "connection reset during data", err: syscall.ECONNRESET},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := failingSession(tt.err, tt.err, tt.err)
			d := new(MockDialer)
			d.On("Dial").Return(session, nil)

			s := NewSender(d, instantTransport(), zerolog.Nop())
			require.NoError(t, s.Send(context.Background(), testMessage()))

			d.AssertNumberOfCalls(t, "Dial", 4)
			assert.Equal(t, 4, session.closed)
		})
	}
}

func TestSend_PassesEnvelope(t *testing.T) {
	var gotFrom string
	var gotTo []string
	session := &sessionStub{SendFunc: func(from string, to []string, msg io.WriterTo) error {
		gotFrom, gotTo = from, to
		return nil
	}}
	d := new(MockDialer)
	d.On("Dial").Return(session, nil)

	s := NewSender(d, instantTransport(), zerolog.Nop())
	require.NoError(t, s.Send(context.Background(), testMessage()))

	assert.Equal(t, "robot@example.com", gotFrom)
	assert.Equal(t, []string{"ops@example.com", "finance@example.com"}, gotTo)
}

func TestSend_PermanentFailureIsNotRetried(t *testing.T) {
	rejected := &textproto.Error{Code: 550, Msg: "mailbox unavailable"}
	d := new(MockDialer)
	d.On("Dial").Return(failingSession(rejected), nil)

	s := NewSender(d, instantTransport(), zerolog.Nop())
	err := s.Send(context.Background(), testMessage())

	assert.ErrorIs(t, err, rejected)
	d.AssertNumberOfCalls(t, "Dial", 1)
}

func TestSend_ExhaustsRetries(t *testing.T) {
	d := new(MockDialer)
	d.On("Dial").Return(nil, syscall.ECONNREFUSED)

	s := NewSender(d, instantTransport(), zerolog.Nop())
	err := s.Send(context.Background(), testMessage())

	assert.ErrorIs(t, err, syscall.ECONNREFUSED)
	d.AssertNumberOfCalls(t, "Dial", 4)
}

func TestSend_Guards(t *testing.T) {
	s := NewSender(nil, instantTransport(), zerolog.Nop())
	assert.ErrorIs(t, s.Send(context.Background(), testMessage()), ErrNotConfigured)

	d := new(MockDialer)
	s = NewSender(d, instantTransport(), zerolog.Nop())
	msg := testMessage()
	msg.To = nil
	assert.Error(t, s.Send(context.Background(), msg))
	d.AssertNotCalled(t, "Dial")
}

func TestCompose(t *testing.T) {
	var buf bytes.Buffer
	_, err := Compose(testMessage()).WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Subject: Reporte mensual")
	assert.Contains(t, out, "To: ops@example.com, finance@example.com")
	assert.Contains(t, out, "text/html")
	assert.Contains(t, out, `filename="ReporteInactivos.xlsx"`)
	assert.Contains(t, out, domain.ContentTypeXLSX)
}

func TestNewDialer(t *testing.T) {
	d := NewDialer(Config{Host: "smtp.example.com", Port: 587, InsecureSkipVerify: true})
	assert.False(t, d.SSL)
	assert.Equal(t, "smtp.example.com", d.TLSConfig.ServerName)
	assert.True(t, d.TLSConfig.InsecureSkipVerify)

	assert.True(t, NewDialer(Config{Host: "h", Port: 465}).SSL)
}
