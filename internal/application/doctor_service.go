package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	repo "github.com/pulsecare/pulsecare-api/internal/domain/repository"
	"github.com/pulsecare/pulsecare-api/pkg/helpers"
)

// DoctorService covers the doctor directory: full-text search backed by the
// Elasticsearch index written at registration, and avatar uploads to GCS.
type DoctorService struct {
	Profiles repo.ProfileRepository

	ES             *elasticsearch.Client
	ESDoctorsIndex string

	GCS       *storage.Client
	GCSBucket string

	Logger *logrus.Logger
}

func NewDoctorService(profiles repo.ProfileRepository, es *elasticsearch.Client, esIndex string, gcs *storage.Client, gcsBucket string, logger *logrus.Logger) *DoctorService {
	return &DoctorService{
		Profiles:       profiles,
		ES:             es,
		ESDoctorsIndex: esIndex,
		GCS:            gcs,
		GCSBucket:      gcsBucket,
		Logger:         logger,
	}
}

// Search performs a multi_match query over doctor name and specialty.
func (s *DoctorService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESDoctorsIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "specialty"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESDoctorsIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

// UploadAvatar stores the image in GCS and records its public URL on the
// user's profile.
func (s *DoctorService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	if err := s.Profiles.UpdateAvatar(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}
