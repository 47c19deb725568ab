package gallery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gnmweb/internal/logging"
)

type fakeLister struct {
	pages [][]string
	err   error
	calls int
}

func (f *fakeLister) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	idx := 0
	if in.ContinuationToken != nil {
		idx = int((*in.ContinuationToken)[0] - '0')
	}
	out := &s3.ListObjectsV2Output{}
	for _, k := range f.pages[idx] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if idx+1 < len(f.pages) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(string(rune('0' + idx + 1)))
	}
	return out, nil
}

type fakeSigner struct {
	err     error
	expires time.Duration
}

func (f *fakeSigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	var o s3.PresignOptions
	for _, fn := range optFns {
		fn(&o)
	}
	f.expires = o.Expires
	return &v4.PresignedHTTPRequest{URL: "https://signed/" + aws.ToString(in.Key)}, nil
}

type memCache struct {
	mu    sync.Mutex
	data  map[string][]Item
	saves int
	err   error
}

func (m *memCache) Load(_ context.Context, key string) ([]Item, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	it, ok := m.data[key]
	return it, ok, nil
}

func (m *memCache) Save(_ context.Context, key string, items []Item, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]Item{}
	}
	m.saves++
	m.data[key] = items
	return m.err
}

func TestS3Catalog_ListFiltersAndSigns(t *testing.T) {
	lister := &fakeLister{pages: [][]string{
		{"gallery/weddings/garden-wedding.jpg", "gallery/weddings/notes.txt", "gallery/readme.md"},
		{"gallery/concerts/rock_band.png", "gallery/funerals/x.jpg", "gallery/other/deep/nested.jpg"},
	}}
	signer := &fakeSigner{}
	c := newS3Catalog("pics", "/gallery/", lister, signer, nil, time.Minute, logging.Nop{})

	items, err := c.List(context.Background(), "all")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, Item{Key: "gallery/weddings/garden-wedding.jpg", Title: "Garden Wedding", Category: "Weddings",
		URL: "https://signed/gallery/weddings/garden-wedding.jpg"}, items[0])
	assert.Equal(t, "Concerts", items[1].Category)
	assert.Equal(t, URLTTL, signer.expires)
	assert.Equal(t, 2, lister.calls)

	concerts, err := c.List(context.Background(), "Concerts")
	require.NoError(t, err)
	require.Len(t, concerts, 1)
	assert.Equal(t, "Rock Band", concerts[0].Title)
}

func TestS3Catalog_UsesCache(t *testing.T) {
	lister := &fakeLister{pages: [][]string{{"weddings/a.jpg"}}}
	cache := &memCache{}
	c := newS3Catalog("pics", "", lister, &fakeSigner{}, cache, time.Minute, logging.Nop{})

	for range 3 {
		items, err := c.List(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "https://signed/weddings/a.jpg", items[0].URL)
	}
	assert.Equal(t, 1, lister.calls)
	assert.Equal(t, 1, cache.saves)
	assert.Empty(t, cache.data["gnm:gallery:pics:"][0].URL)
}

func TestS3Catalog_CacheFailureFallsThrough(t *testing.T) {
	lister := &fakeLister{pages: [][]string{{"weddings/a.jpg"}}}
	cache := &memCache{err: errors.New("redis down")}
	c := newS3Catalog("pics", "", lister, &fakeSigner{}, cache, time.Minute, logging.Nop{})

	items, err := c.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestS3Catalog_Errors(t *testing.T) {
	c := newS3Catalog("pics", "", &fakeLister{err: errors.New("denied")}, &fakeSigner{}, nil, 0, logging.Nop{})
	_, err := c.List(context.Background(), "")
	assert.ErrorContains(t, err, "denied")

	c = newS3Catalog("pics", "", &fakeLister{pages: [][]string{{"weddings/a.jpg"}}}, &fakeSigner{err: errors.New("no creds")}, nil, 0, logging.Nop{})
	_, err = c.List(context.Background(), "")
	assert.ErrorContains(t, err, "presign weddings/a.jpg")
}

func TestNewS3Catalog_Wiring(t *testing.T) {
	origLoad, origNew, origPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient = origLoad, origNew, origPre
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-central-1", lo.Region)
		return aws.Config{}, nil
	}
	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(*s3.Client) presigner { return &fakeSigner{} }

	c, err := NewS3Catalog(context.Background(), S3Config{
		Endpoint: "http://127.0.0.1:9000", Region: "eu-central-1", Bucket: "pics", Prefix: "gallery",
		AccessKey: "ak", SecretKey: "sk",
	}, nil, time.Minute, logging.Nop{})
	require.NoError(t, err)
	assert.Equal(t, "gallery/", c.prefix)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("boom")
	}
	_, err = NewS3Catalog(context.Background(), S3Config{}, nil, 0, logging.Nop{})
	assert.ErrorContains(t, err, "aws config")
}
