package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/posleasing/leasesync/internal/domain"
	"github.com/posleasing/leasesync/internal/mail"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func newService(m Mailer) *Service {
	return NewService(m, "robot@example.com", "Arrendamiento POS", zerolog.Nop())
}

func TestSend_Success(t *testing.T) {
	m := new(MockMailer)
	m.On("Send", mock.Anything, mock.MatchedBy(func(msg mail.Message) bool {
		return msg.Subject == "Arrendamiento POS" &&
			msg.From == "robot@example.com" &&
			assert.ObjectsAreEqual([]string{"a@x.com", "b@x.com"}, msg.To) &&
			len(msg.Attachments) == 1
	})).Return(nil)

	err := newService(m).Send(context.Background(), domain.NotificationRequest{
		Recipients:  []string{"a@x.com", " ", "b@x.com", "A@x.com"},
		Attachments: domain.ReportBundle{{Filename: "ReporteInactivos.xlsx"}},
		Kind:        domain.NotificationSuccess,
	})

	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestSend_NoRecipientsSkips(t *testing.T) {
	m := new(MockMailer)

	err := newService(m).Send(context.Background(), domain.NotificationRequest{
		Recipients: []string{"", "  "},
		Kind:       domain.NotificationSuccess,
	})

	require.NoError(t, err)
	m.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSend_PropagatesMailerError(t *testing.T) {
	m := new(MockMailer)
	boom := errors.New("smtp down")
	m.On("Send", mock.Anything, mock.Anything).Return(boom)

	err := newService(m).Send(context.Background(), domain.NotificationRequest{
		Recipients: []string{"a@x.com"},
		Kind:       domain.NotificationError,
	})

	assert.ErrorIs(t, err, boom)
}

func TestCompose_Subjects(t *testing.T) {
	s := newService(nil)
	tests := []struct {
		kind    domain.NotificationKind
		subject string
		body    string
	}{
		{domain.NotificationSuccess, "Arrendamiento POS", "Se adjuntan los reportes de morosidad e inactivos."},
		{domain.NotificationSuccessNoDelinquency, "[INFO] Arrendamiento POS - Sin Morosidad", "No se encontraron comercios con morosidad"},
		{domain.NotificationError, "[ERROR] Arrendamiento POS", "El servicio de sincronización ha fallado."},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			subject, body, err := s.Compose(domain.NotificationRequest{Kind: tt.kind})
			require.NoError(t, err)
			assert.Equal(t, tt.subject, subject)
			assert.Contains(t, body, tt.body)
			assert.Contains(t, body, "Por favor, no responder.")
		})
	}
}

func TestCompose_DetailedErrorEscapesAndFormats(t *testing.T) {
	info := domain.ExceptionInfo{
		Timestamp: time.Date(2024, 1, 31, 23, 0, 5, 0, time.UTC),
		System:    "ServicioSincArrendamiento",
		Function:  "RunCycle",
		Message:   "failed to execute business process: <timeout>",
		Trace:     "goroutine 1 [running]",
		Extra:     "Proceso: Sincronización de Arrendamientos",
	}

	_, body, err := newService(nil).Compose(domain.NotificationRequest{Kind: domain.NotificationError, Error: &info})
	require.NoError(t, err)

	assert.Contains(t, body, "ERROR EN SISTEMA")
	assert.Contains(t, body, "ServicioSincArrendamiento")
	assert.Contains(t, body, "31/01/2024 23:00:05")
	assert.Contains(t, body, "&lt;timeout&gt;")
	assert.Contains(t, body, "Stack Trace")
	assert.Contains(t, body, "Información Adicional")
	assert.Contains(t, body, ">Sistema<", "user defaults to Sistema")
}

func TestCompose_DetailedErrorOmitsEmptySections(t *testing.T) {
	_, body, err := newService(nil).Compose(domain.NotificationRequest{
		Kind:  domain.NotificationError,
		Error: &domain.ExceptionInfo{Message: "x"},
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "Stack Trace")
	assert.NotContains(t, body, "Información Adicional")
}
