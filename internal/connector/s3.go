package connector

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/winatecommerce96/emailpilot-rag-sub000/internal/config"
)

// KindS3 is the registry key for S3-compatible sources.
const KindS3 = "s3"

// S3Connector lists and fetches objects from an S3-compatible bucket.
// Locators have the form "bucket/prefix"; object keys double as source IDs
// and raw refs ("bucket/key"). Works with both AWS S3 and MinIO.
type S3Connector struct {
	client *s3.Client
}

func NewS3Connector(cfg appconfig.S3Config) (*S3Connector, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = &cfg.Endpoint
			o.UsePathStyle = true
		}
	})

	return &S3Connector{client: client}, nil
}

func (c *S3Connector) List(ctx context.Context, locator string, since *time.Time) ([]CandidateItem, error) {
	bucket, prefix, err := splitLocator(locator)
	if err != nil {
		return nil, err
	}

	var items []CandidateItem
	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: &bucket,
		Prefix: &prefix,
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}

		for _, obj := range page.Contents {
			if obj.Key == nil || obj.LastModified == nil {
				continue
			}
			key := *obj.Key

			// Skip "directory" markers
			if strings.HasSuffix(key, "/") {
				continue
			}
			if since != nil && obj.LastModified.Before(*since) {
				continue
			}

			items = append(items, CandidateItem{
				SourceID:   key,
				Name:       key[strings.LastIndex(key, "/")+1:],
				ModifiedAt: *obj.LastModified,
				RawRef:     bucket + "/" + key,
			})
		}
	}

	return items, nil
}

func (c *S3Connector) Fetch(ctx context.Context, rawRef string) (io.ReadCloser, error) {
	bucket, key, err := splitLocator(rawRef)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", rawRef, err)
	}
	return resp.Body, nil
}

// splitLocator splits "bucket/prefix" into its parts. A bare bucket name
// is a valid locator and means the whole bucket (empty prefix).
func splitLocator(locator string) (bucket, rest string, err error) {
	bucket, rest, _ = strings.Cut(locator, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid locator %q: want bucket or bucket/prefix", locator)
	}
	return bucket, rest, nil
}
