package gallery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/gnmweb/internal/logging"
)

// URLTTL is how long a presigned picture URL stays valid.
const URLTTL = 15 * time.Minute

type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
}

type presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
	newS3PresignClient    = func(c *s3.Client) presigner { return s3.NewPresignClient(c) }
)

// S3Catalog lists pictures from a bucket.
type S3Catalog struct {
	bucket string
	prefix string
	lister s3.ListObjectsV2APIClient
	signer presigner
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

// NewS3Catalog connects to the bucket described by cfg. cache may be nil.
func NewS3Catalog(ctx context.Context, cfg S3Config, cache Cache, ttl time.Duration, l logging.Logger) (*S3Catalog, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Catalog(cfg.Bucket, cfg.Prefix, client, newS3PresignClient(client), cache, ttl, l), nil
}

func newS3Catalog(bucket, prefix string, lister s3.ListObjectsV2APIClient, signer presigner, cache Cache, ttl time.Duration, l logging.Logger) *S3Catalog {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Catalog{
		bucket: bucket,
		prefix: prefix,
		lister: lister,
		signer: signer,
		cache:  cache,
		ttl:    ttl,
		logger: l.With("module", "gallery"),
	}
}

func (c *S3Catalog) cacheKey() string {
	return "gnm:gallery:" + c.bucket + ":" + c.prefix
}

// List returns pictures of category with fresh presigned URLs.
func (c *S3Catalog) List(ctx context.Context, category string) ([]Item, error) {
	items, err := c.listing(ctx)
	if err != nil {
		return nil, err
	}

	items = filter(items, category)
	out := make([]Item, 0, len(items))
	for _, it := range items {
		req, err := c.signer.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(it.Key),
		}, s3.WithPresignExpires(URLTTL))
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w", it.Key, err)
		}
		it.URL = req.URL
		out = append(out, it)
	}
	return out, nil
}

// listing returns the cached object list or reads it from the bucket.
// Cache failures are logged and otherwise ignored.
func (c *S3Catalog) listing(ctx context.Context) ([]Item, error) {
	if c.cache != nil {
		items, ok, err := c.cache.Load(ctx, c.cacheKey())
		if err != nil {
			c.logger.Warn(ctx, "gallery cache load", "error", err)
		} else if ok {
			return items, nil
		}
	}

	var items []Item
	p := s3.NewListObjectsV2Paginator(c.lister, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(c.prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", c.bucket, err)
		}
		for _, obj := range page.Contents {
			if it, ok := c.itemFor(aws.ToString(obj.Key)); ok {
				items = append(items, it)
			}
		}
	}

	if c.cache != nil {
		if err := c.cache.Save(ctx, c.cacheKey(), items, c.ttl); err != nil {
			c.logger.Warn(ctx, "gallery cache save", "error", err)
		}
	}
	return items, nil
}

// itemFor accepts <prefix><category>/<file> keys of known categories.
func (c *S3Catalog) itemFor(key string) (Item, bool) {
	rest := strings.TrimPrefix(key, c.prefix)
	folder, file, ok := strings.Cut(rest, "/")
	if !ok || file == "" || strings.Contains(file, "/") || !isImage(file) {
		return Item{}, false
	}
	cat := CategoryFor(folder)
	if cat == "" {
		return Item{}, false
	}
	return Item{Key: key, Title: TitleFromKey(file), Category: cat}, true
}
