package storage

import (
	"context"
	"fmt"
	"io"

	"backend-bandoxanh/internal/db"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNoUploader is returned when no object storage is configured.
var (
	ErrNoUploader   = errors.New("uploads are not configured")
	ErrUploadFailed = errors.New("upload failed")
)

const uploadFolder = "bandoxanh"

type Object struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

type Service struct {
	db       db.Querier
	uploader Uploader
}

func NewService(db db.Querier, uploader Uploader) *Service {
	return &Service{db: db, uploader: uploader}
}

// Upload stores file remotely and records it against userID.
func (s *Service) Upload(ctx context.Context, userID, kind string, file io.Reader) (Object, error) {
	if s.uploader == nil {
		return Object{}, ErrNoUploader
	}
	url, err := s.uploader.Upload(ctx, file, uploadFolder+"/"+kind)
	if err != nil {
		return Object{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	id, err := s.SaveObject(ctx, userID, url, kind)
	if err != nil {
		return Object{}, err
	}
	return Object{ID: id, URL: url, Kind: kind}, nil
}

func (s *Service) SaveObject(ctx context.Context, userID, url, kind string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO storage_objects (id, user_id, url, kind)
		VALUES ($1,$2,$3,$4)
	`, id, userID, url, kind)
	if err != nil {
		return "", errors.Wrap(err, "save object")
	}
	return id, nil
}
