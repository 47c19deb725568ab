package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dmitrijs2005/gnmweb/internal/models"
)

const (
	// MaxAvatarBytes is the largest accepted upload.
	MaxAvatarBytes = 5 << 20
	// AvatarMaxEdge is the longest side kept after downscaling.
	AvatarMaxEdge = 1024
)

// NoticeAvatarTooLarge is shown for uploads over MaxAvatarBytes.
const NoticeAvatarTooLarge = "Image must be 5MB or smaller"

const msgAvatarType = "Please choose an image file (JPEG, PNG, GIF or WEBP)"

var avatarFormats = map[string]imaging.Format{
	"image/jpeg": imaging.JPEG,
	"image/png":  imaging.PNG,
	"image/gif":  imaging.GIF,
	// webp is passed through untouched: imaging cannot encode it.
	"image/webp": -1,
}

func unixNow() int64 { return time.Now().Unix() }

// CheckAvatar rejects uploads by declared size and sniffed type. It reads at
// most MaxAvatarBytes+1 bytes from r and returns them.
func CheckAvatar(size int64, r io.Reader) ([]byte, string, error) {
	if size > MaxAvatarBytes {
		return nil, "", FieldErrors{"profile_image": NoticeAvatarTooLarge}
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxAvatarBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxAvatarBytes {
		return nil, "", FieldErrors{"profile_image": NoticeAvatarTooLarge}
	}
	ct := http.DetectContentType(data)
	if _, ok := avatarFormats[ct]; !ok {
		return nil, "", FieldErrors{"profile_image": msgAvatarType}
	}
	return data, ct, nil
}

// shrink downsizes large JPEG and PNG images. Other formats and images that
// fail to decode are sent as they are.
func shrink(data []byte, ct string) []byte {
	format := avatarFormats[ct]
	if format != imaging.JPEG && format != imaging.PNG {
		return data
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return data
	}
	b := img.Bounds()
	if b.Dx() <= AvatarMaxEdge && b.Dy() <= AvatarMaxEdge {
		return data
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Fit(img, AvatarMaxEdge, AvatarMaxEdge, imaging.Lanczos), format); err != nil {
		return data
	}
	return buf.Bytes()
}

// UploadAvatar validates the image before any backend call, uploads it and
// refetches the profile. The returned image URL carries a t= parameter so
// browsers do not show the previous picture from cache.
func (s *ProfileService) UploadAvatar(ctx context.Context, filename string, size int64, r io.Reader) (*models.User, error) {
	data, ct, err := CheckAvatar(size, r)
	if err != nil {
		return nil, err
	}

	_ = s.client.EnsureCSRF(ctx)
	if err := s.client.UploadAvatar(ctx, filename, shrink(data, ct)); err != nil {
		s.logger.Error(ctx, "upload avatar", "error", err)
		return nil, fmt.Errorf("upload avatar: %w", err)
	}
	return s.refetch(ctx)
}

// DeleteAvatar clears the picture and refetches the profile.
func (s *ProfileService) DeleteAvatar(ctx context.Context) (*models.User, error) {
	_ = s.client.EnsureCSRF(ctx)
	if err := s.client.DeleteAvatar(ctx); err != nil {
		s.logger.Error(ctx, "delete avatar", "error", err)
		return nil, fmt.Errorf("delete avatar: %w", err)
	}
	return s.refetch(ctx)
}

func (s *ProfileService) refetch(ctx context.Context) (*models.User, error) {
	u, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	u.ProfileImageURL = CacheBust(u.ProfileImageURL, s.now())
	return u, nil
}

// CacheBust sets t=<ts> on raw. Empty or unparsable URLs are returned as is.
func CacheBust(raw string, ts int64) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(ts, 10))
	u.RawQuery = q.Encode()
	return u.String()
}
