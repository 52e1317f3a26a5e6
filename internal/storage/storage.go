package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Signed URL lifetimes: catalog photos are effectively permanent, payment
// receipts are sensitive and short-lived.
const (
	PhotoURLTTL   = 10 * 365 * 24 * time.Hour
	ReceiptURLTTL = time.Hour
)

// Store is the object storage surface the handlers depend on.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	SignedURL(key string, ttl time.Duration) (string, error)
}

type Bucket struct {
	client *gcs.Client
	name   string
}

func NewBucket(ctx context.Context, name, credentialsFile string) (*Bucket, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &Bucket{client: client, name: name}, nil
}

func (b *Bucket) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	w := b.client.Bucket(b.name).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish upload %s: %w", key, err)
	}
	return nil
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	if err := b.client.Bucket(b.name).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (b *Bucket) SignedURL(key string, ttl time.Duration) (string, error) {
	url, err := b.client.Bucket(b.name).SignedURL(key, &gcs.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		Scheme:  gcs.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", key, err)
	}
	return url, nil
}

func (b *Bucket) Close() error {
	return b.client.Close()
}

// VariantImageKey builds the object key for a variant photo.
func VariantImageKey(variantID, filename string, now time.Time) string {
	return fmt.Sprintf("variant-images/%s/%d%s", variantID, now.UnixNano(), ext(filename))
}

// ReceiptKey builds the object key for a payment receipt.
func ReceiptKey(orderID, filename string, now time.Time) string {
	return fmt.Sprintf("receipts/%s/%d%s", orderID, now.UnixNano(), ext(filename))
}

// KeyFromURL recovers the object key from a stored signed URL so an upload
// can be deleted later. Returns "" when the URL doesn't contain the key.
func KeyFromURL(url, prefix string) string {
	idx := strings.Index(url, prefix+"/")
	if idx < 0 {
		return ""
	}
	key := url[idx:]
	if q := strings.IndexByte(key, '?'); q >= 0 {
		key = key[:q]
	}
	return key
}

func ext(filename string) string {
	e := strings.ToLower(path.Ext(filename))
	if e == "" {
		return ".bin"
	}
	return e
}
