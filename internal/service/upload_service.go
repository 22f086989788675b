package service

import (
	"context"
	"strings"
	"time"

	"github.com/belovedzguard/beloved-api/internal/asset"
	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/storage"
	"github.com/belovedzguard/beloved-api/pkg/errors"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

// DefaultUploadTTL is how long an upload URL stays valid.
const DefaultUploadTTL = 5 * time.Minute

// UploadRequest names the asset an admin wants to upload.
type UploadRequest struct {
	AssetType string `json:"assetType"`
	FileName  string `json:"fileName"`
}

// UploadTicket is a pre-signed write grant for one object.
type UploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl"`
	Field     string `json:"field"`
	ExpiresIn int    `json:"expiresIn"`
}

// UploadService issues pre-signed upload URLs for catalog media.
type UploadService struct {
	presigner storage.Presigner
	policy    *auth.Policy
	media     Media
	ttl       time.Duration
	log       logger.Logger
}

// NewUploadService creates an upload service. A non-positive ttl means
// DefaultUploadTTL.
func NewUploadService(presigner storage.Presigner, policy *auth.Policy, media Media, ttl time.Duration, log logger.Logger) *UploadService {
	if ttl <= 0 {
		ttl = DefaultUploadTTL
	}
	return &UploadService{
		presigner: presigner,
		policy:    policy,
		media:     media,
		ttl:       ttl,
		log:       log,
	}
}

// Issue derives the object key for req and returns a write URL for it.
func (s *UploadService) Issue(ctx context.Context, rc *auth.RequestContext, req *UploadRequest) (*UploadTicket, error) {
	if err := s.policy.Authorize(rc, auth.ResourceUpload, auth.OpCreate, ""); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.AssetType) == "" || req.FileName == "" {
		return nil, errors.ErrMissingField.WithMessage("assetType and fileName are required")
	}

	loc, err := asset.DeriveLocation(req.AssetType, req.FileName, s.media.publicBase())
	if err != nil {
		return nil, err
	}

	url, err := s.presigner.PresignPut(ctx, loc.Key, loc.ContentType, s.ttl)
	if err != nil {
		if appErr, ok := errors.As(err); ok && errors.IsError(appErr, errors.ErrStorageConfiguration) {
			s.log.Error("object storage is not configured; uploads are unavailable",
				logger.Any("details", appErr.Details),
				logger.String("key", loc.Key),
			)
			return nil, appErr
		}
		s.log.Error("presign upload failed",
			logger.String("key", loc.Key),
			logger.Error(err),
		)
		return nil, errors.ErrInternal.WithMessage("Failed to create upload URL").WithError(err)
	}

	s.log.Info("upload url issued",
		logger.String("key", loc.Key),
		logger.String("subject", rc.Subject()),
	)
	return &UploadTicket{
		UploadURL: url,
		Key:       loc.Key,
		PublicURL: loc.PublicURL,
		Field:     loc.Field,
		ExpiresIn: int(s.ttl / time.Second),
	}, nil
}
