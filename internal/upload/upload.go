// Package upload stores product, category and banner images with an external
// media host and hands back their public URLs.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrUploadFailed wraps every failure reported by an Uploader.
var ErrUploadFailed = errors.New("upload: image upload failed")

// Uploader stores one file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, filename string) (string, error)
}

// File is one pending upload.
type File struct {
	Name   string
	Reader io.Reader
}

// All uploads files concurrently and returns their URLs in input order. If
// any upload fails the whole call fails and the remaining uploads are cancelled.
func All(ctx context.Context, u Uploader, files []File) ([]string, error) {
	urls := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			url, err := u.Upload(ctx, f.Reader, f.Name)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// Disabled rejects every upload. main uses it when no media host is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, io.Reader, string) (string, error) {
	return "", fmt.Errorf("%w: no media host configured", ErrUploadFailed)
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Cloudinary uploads into a single folder under random public ids.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cfg CloudinaryConfig) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("upload: cloudinary init failed: %w", err)
	}
	return &Cloudinary{cld: cld, folder: cfg.Folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, filename string) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   c.folder,
		PublicID: publicID(filename),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrUploadFailed, filename, err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("%w: %s: %s", ErrUploadFailed, filename, resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("%w: %s: empty url in response", ErrUploadFailed, filename)
	}
	return resp.SecureURL, nil
}

// publicID keeps a readable slug of the original name and makes it unique.
func publicID(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, base)
	id := uuid.NewString()
	if base == "" || base == "." {
		return id
	}
	return base + "-" + id
}
