package media

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config represents the settings required to talk to S3 or an S3-compatible API.
type S3Config struct {
	Bucket         string
	Region         string
	Endpoint       string
	PublicURL      string
	KeyPrefix      string
	ForcePathStyle bool
}

// NewS3Persister wires an S3-backed persister for generated artifacts.
func NewS3Persister(ctx context.Context, cfg S3Config) (*S3Persister, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("s3 persister requires bucket and region")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}

	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		loadOpts = append(loadOpts, config.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
				if service == s3.ServiceID {
					return aws.Endpoint{
						URL:           endpoint,
						PartitionID:   "aws",
						SigningRegion: cfg.Region,
					}, nil
				}
				return aws.Endpoint{}, &aws.EndpointNotFoundError{}
			}),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws sdk config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = cfg.ForcePathStyle
		}
	})

	// Fallback so S3-compatible storage without PublicURL still works for reads.
	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" && cfg.Endpoint != "" && cfg.ForcePathStyle {
		publicURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
	}

	return &S3Persister{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: publicURL,
		prefix:  strings.Trim(cfg.KeyPrefix, "/"),
		httpc:   &http.Client{Timeout: 60 * time.Second},
		now:     time.Now,
	}, nil
}

// S3Persister stores generated artifacts in an S3 bucket.
type S3Persister struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
	prefix  string
	httpc   *http.Client
	now     func() time.Time
}

// Persist downloads the artifact when needed and stores it under the
// configured prefix, returning a public URL.
func (u *S3Persister) Persist(ctx context.Context, artifact Artifact) (Stored, error) {
	data := artifact.Data
	if len(data) == 0 {
		if artifact.SourceURL == "" {
			return Stored{}, ErrEmptyArtifact
		}
		var err error
		data, err = fetchArtifact(ctx, u.httpc, artifact.SourceURL)
		if err != nil {
			return Stored{}, err
		}
	}

	key := artifactFilename(artifact.StyleName, u.now())
	if u.prefix != "" {
		key = path.Join(u.prefix, key)
	}

	putInput := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("image/png"),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if _, err := u.client.PutObject(ctx, putInput); err != nil {
		return Stored{}, fmt.Errorf("put object: %w", err)
	}

	return Stored{Key: key, URL: u.objectURL(key)}, nil
}

func (u *S3Persister) objectURL(key string) string {
	if u.baseURL != "" {
		return fmt.Sprintf("%s/%s", u.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}
