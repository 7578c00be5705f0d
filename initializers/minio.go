package initializers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gopkg.in/yaml.v3"
)

// MediaConfig holds the MinIO connection and the upload limits for menu images.
type MediaConfig struct {
	Endpoint         string
	AccessKey        string
	SecretKey        string
	Bucket           string
	UseSSL           bool
	MaxSize          int64
	FileTypes        []string
	Expiry           time.Duration
	ExternalEndpoint string
	ExternalUseSSL   bool
}

// Enabled reports whether archiving is configured at all.
func (c MediaConfig) Enabled() bool { return c.Endpoint != "" && c.Bucket != "" }

// mediaConfigYAML overrides the upload limits when config/media.yaml (or
// MEDIA_CONFIG_FILE) exists.
type mediaConfigYAML struct {
	MaxFileSize        int64    `yaml:"max_file_size"`
	AllowedFileTypes   []string `yaml:"allowed_file_types"`
	PresignedURLExpiry int      `yaml:"presigned_url_expiry"` // seconds
}

func loadMediaYAML() (*mediaConfigYAML, error) {
	path := os.Getenv("MEDIA_CONFIG_FILE")
	if strings.TrimSpace(path) == "" {
		path = "config/media.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg mediaConfigYAML
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadMediaConfig reads MINIO_* and upload limits from the environment, then applies
// YAML overrides.
func LoadMediaConfig() MediaConfig {
	conf := MediaConfig{
		Endpoint:         os.Getenv("MINIO_ENDPOINT"),
		AccessKey:        os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey:        os.Getenv("MINIO_SECRET_KEY"),
		Bucket:           os.Getenv("MINIO_BUCKET"),
		UseSSL:           parseBool(os.Getenv("MINIO_USE_SSL")),
		MaxSize:          parseInt64(os.Getenv("MAX_IMAGE_SIZE"), 5<<20),
		FileTypes:        parseFileTypes(os.Getenv("ALLOWED_IMAGE_TYPES")),
		Expiry:           parseExpiry(os.Getenv("PRESIGNED_URL_EXPIRY")),
		ExternalEndpoint: os.Getenv("MINIO_EXTERNAL_ENDPOINT"),
		ExternalUseSSL: func() bool {
			raw := strings.TrimSpace(os.Getenv("MINIO_EXTERNAL_ENDPOINT"))
			if v := strings.TrimSpace(os.Getenv("MINIO_EXTERNAL_USE_SSL")); v != "" {
				return parseBool(v)
			}
			if strings.HasPrefix(raw, "https://") {
				return true
			}
			if strings.HasPrefix(raw, "http://") {
				return false
			}
			return parseBool(os.Getenv("MINIO_USE_SSL"))
		}(),
	}

	if yamlCfg, err := loadMediaYAML(); err == nil && yamlCfg != nil {
		if yamlCfg.MaxFileSize > 0 {
			conf.MaxSize = yamlCfg.MaxFileSize
		}
		if len(yamlCfg.AllowedFileTypes) > 0 {
			conf.FileTypes = yamlCfg.AllowedFileTypes
		}
		if yamlCfg.PresignedURLExpiry > 0 {
			conf.Expiry = time.Duration(yamlCfg.PresignedURLExpiry) * time.Second
		}
	}
	return conf
}

// MediaStore archives menu images in a MinIO bucket.
type MediaStore struct {
	client   *minio.Client
	external *minio.Client
	conf     MediaConfig
}

// InitMediaStore connects to MinIO and makes sure the bucket exists.
func InitMediaStore(ctx context.Context, conf MediaConfig) (*MediaStore, error) {
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	store := &MediaStore{client: client, external: client, conf: conf}
	extEndpoint := strings.TrimPrefix(strings.TrimPrefix(conf.ExternalEndpoint, "http://"), "https://")
	if extEndpoint != "" && extEndpoint != conf.Endpoint {
		external, err := minio.New(extEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
			Secure: conf.ExternalUseSSL,
			Region: "us-east-1",
		})
		if err != nil {
			return nil, err
		}
		store.external = external
	}

	slog.Info("media bucket ready", "bucket", conf.Bucket)
	return store, nil
}

func (s *MediaStore) Config() MediaConfig { return s.conf }

// ObjectKey is where the image with the given metadata id lives in the bucket.
func ObjectKey(menuItemID int, id string) string {
	return fmt.Sprintf("menu/%d/%s", menuItemID, id)
}

func (s *MediaStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.conf.Bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (s *MediaStore) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.conf.Bucket, key, minio.RemoveObjectOptions{})
}

// PresignedURL returns a temporary download link through the external endpoint.
func (s *MediaStore) PresignedURL(ctx context.Context, key, fileName string) (string, error) {
	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("inline; filename=\"%s\"", sanitizeFilename(fileName)))
	u, err := s.external.PresignedGetObject(ctx, s.conf.Bucket, key, s.conf.Expiry, reqParams)
	if err != nil {
		return "", fmt.Errorf("failed to create presigned url: %w", err)
	}
	return u.String(), nil
}

func parseFileTypes(val string) []string {
	if val == "" {
		return []string{"image/jpeg", "image/png", "image/webp"}
	}
	parts := strings.Split(val, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseExpiry(val string) time.Duration {
	if val == "" {
		return time.Hour
	}
	d := parseInt64(val, 0)
	if d <= 0 {
		return time.Hour
	}
	return time.Duration(d) * time.Second
}

func baseMIME(mime string) string {
	parts := strings.Split(mime, ";")
	return strings.ToLower(strings.TrimSpace(parts[0]))
}

// CheckFileAllowed validates a sniffed upload against the configured limits.
func (c MediaConfig) CheckFileAllowed(size int64, mime string) error {
	if size > c.MaxSize {
		return fmt.Errorf("file size exceeds the limit of %d bytes", c.MaxSize)
	}
	incoming := baseMIME(mime)
	for _, t := range c.FileTypes {
		if baseMIME(t) == incoming {
			return nil
		}
	}
	return fmt.Errorf("file type %s is not allowed", incoming)
}

func sanitizeFilename(name string) string {
	cleaned := strings.NewReplacer("\"", "", "\\", "", "/", "", "..", "").Replace(name)
	b := make([]rune, 0, len(cleaned))
	for _, r := range cleaned {
		if r < 32 || r == 127 {
			continue
		}
		b = append(b, r)
	}
	s := strings.Join(strings.Fields(string(b)), " ")
	if s == "" {
		s = "image"
	}
	return s
}
