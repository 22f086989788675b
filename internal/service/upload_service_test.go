package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/storage"
	"github.com/belovedzguard/beloved-api/pkg/errors"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

func newUploadService(p storage.Presigner) *UploadService {
	return NewUploadService(p, testPolicy, testMedia, 0, logger.NewNop())
}

func TestUploadService_Issue(t *testing.T) {
	presigner := new(MockPresigner)
	presigner.On("PresignPut", mock.Anything, "music-files/amazing-grace.mp3", "audio/mpeg", DefaultUploadTTL).
		Return("https://signed.example.com/put", nil)

	ticket, err := newUploadService(presigner).Issue(context.Background(), asAdmin(), &UploadRequest{
		AssetType: "mp3",
		FileName:  "amazing-grace",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://signed.example.com/put", ticket.UploadURL)
	assert.Equal(t, "music-files/amazing-grace.mp3", ticket.Key)
	assert.Equal(t, "https://uploads.belovedzguard.com/music-files/amazing-grace.mp3", ticket.PublicURL)
	assert.Equal(t, "mp3", ticket.Field)
	assert.Equal(t, 300, ticket.ExpiresIn)
	presigner.AssertExpectations(t)
}

func TestUploadService_AuthBeforeValidation(t *testing.T) {
	tests := []struct {
		name    string
		rc      *auth.RequestContext
		status  int
		message string
	}{
		{"anonymous", auth.Anonymous, 401, "Missing Auth0 user ID"},
		{"non admin", asUser(), 403, "Admin access required"},
		{"admin", asAdmin(), 400, "assetType and fileName are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presigner := new(MockPresigner)
			_, err := newUploadService(presigner).Issue(context.Background(), tt.rc, &UploadRequest{})

			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, appErr.HTTPStatus)
			assert.Equal(t, tt.message, appErr.Message)
			presigner.AssertNotCalled(t, "PresignPut", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUploadService_RejectsBadInput(t *testing.T) {
	svc := newUploadService(new(MockPresigner))

	_, err := svc.Issue(context.Background(), asAdmin(), &UploadRequest{AssetType: "podcast", FileName: "a.mp3"})
	assert.True(t, errors.IsError(err, errors.ErrUnsupportedAssetType))

	_, err = svc.Issue(context.Background(), asAdmin(), &UploadRequest{AssetType: "lyrics", FileName: "../etc/passwd"})
	assert.True(t, errors.IsError(err, errors.ErrInvalidFileName))
}

func TestUploadService_UnconfiguredStorage(t *testing.T) {
	svc := newUploadService(storage.Unconfigured{Missing: []string{"R2_BUCKET"}})

	_, err := svc.Issue(context.Background(), asAdmin(), &UploadRequest{AssetType: "lyrics", FileName: "grace"})
	assert.Equal(t, 500, errors.GetHTTPStatus(err))
	assert.True(t, errors.IsError(err, errors.ErrStorageConfiguration))
}

func TestUploadService_PresignFailure(t *testing.T) {
	presigner := new(MockPresigner)
	presigner.On("PresignPut", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", fmt.Errorf("signer exploded"))

	_, err := newUploadService(presigner).Issue(context.Background(), asAdmin(), &UploadRequest{AssetType: "mp3", FileName: "x"})
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.HTTPStatus)
	assert.Equal(t, "Failed to create upload URL", appErr.Message)
}
