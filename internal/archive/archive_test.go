package archive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/posleasing/leasesync/internal/domain"
)

type MockUploader struct {
	mock.Mock
	bodies map[string]string
}

func (m *MockUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	args := m.Called(aws.ToString(input.Key))
	if m.bodies != nil {
		b, _ := io.ReadAll(input.Body)
		m.bodies[aws.ToString(input.Key)] = string(b)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*manager.UploadOutput), args.Error(1)
}

var (
	cycleID = uuid.MustParse("6f1c2a8e-3b4d-4c5e-9f60-718293a4b5c6")
	stamp   = time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)
)

func newTestArchiver(u Uploader) *Archiver {
	a := NewWithUploader(u, "reports", "leasing", zerolog.Nop())
	a.now = func() time.Time { return stamp }
	return a
}

func TestKey(t *testing.T) {
	a := newTestArchiver(nil)
	assert.Equal(t,
		"leasing/2024/01/20240131-6f1c2a8e-3b4d-4c5e-9f60-718293a4b5c6/ReporteMorosidad.pdf",
		a.Key(stamp, cycleID, "ReporteMorosidad.pdf"))
}

func TestArchive_UploadsEveryAttachment(t *testing.T) {
	u := &MockUploader{bodies: map[string]string{}}
	u.On("Upload", mock.Anything).Return(&manager.UploadOutput{}, nil)

	bundle := domain.ReportBundle{
		{Filename: "ReporteMorosidad.pdf", ContentType: domain.ContentTypePDF, Content: []byte("pdf")},
		{Filename: "ReporteInactivos.xlsx", ContentType: domain.ContentTypeXLSX, Content: []byte("xlsx")},
	}
	require.NoError(t, newTestArchiver(u).Archive(context.Background(), cycleID, bundle))

	u.AssertNumberOfCalls(t, "Upload", 2)
	assert.Equal(t, "xlsx", u.bodies["leasing/2024/01/20240131-"+cycleID.String()+"/ReporteInactivos.xlsx"])
}

func TestArchive_StopsOnFailure(t *testing.T) {
	u := &MockUploader{}
	u.On("Upload", mock.Anything).Return(nil, errors.New("access denied"))

	bundle := domain.ReportBundle{{Filename: "a.pdf"}, {Filename: "b.xlsx"}}
	err := newTestArchiver(u).Archive(context.Background(), cycleID, bundle)

	assert.ErrorContains(t, err, "failed to archive a.pdf")
	u.AssertNumberOfCalls(t, "Upload", 1)
}
