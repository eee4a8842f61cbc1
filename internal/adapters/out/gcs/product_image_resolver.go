package gcs

import (
	"context"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	gcscommon "cosmetica/internal/adapters/out/gcs/common"
)

const defaultImageURLTTL = 15 * time.Minute

// ProductImageResolver turns stored product image references into URLs a
// browser can load.
//
// A reference can be:
// - http(s)://... outside GCS (returned as-is)
// - gs://bucket/object or https://storage.googleapis.com/... (parsed)
// - objectPath (treated as object path within Bucket)
//
// With Signed set, GCS objects get a V4 GET signed URL (private buckets);
// otherwise the public storage.googleapis.com URL is returned.
type ProductImageResolver struct {
	Client *storage.Client
	Bucket string
	Signed bool
	TTL    time.Duration
}

func NewProductImageResolver(client *storage.Client, bucket string, signed bool, ttl time.Duration) *ProductImageResolver {
	if ttl <= 0 {
		ttl = defaultImageURLTTL
	}
	return &ProductImageResolver{
		Client: client,
		Bucket: strings.TrimSpace(bucket),
		Signed: signed,
		TTL:    ttl,
	}
}

// Resolve never fails: an unresolvable reference is returned unchanged.
func (r *ProductImageResolver) Resolve(ctx context.Context, ref string) string {
	p := strings.TrimSpace(ref)
	if p == "" || r == nil {
		return p
	}

	bucket, obj, ok := gcscommon.ParseGCSURL(p)
	if !ok {
		if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "data:") {
			return p
		}
		if r.Bucket == "" {
			// no bucket configured: treat as a site-relative path
			return p
		}
		bucket, obj = r.Bucket, strings.TrimLeft(p, "/")
	}

	if r.Signed && r.Client != nil {
		u, err := r.Client.Bucket(bucket).SignedURL(obj, &storage.SignedURLOptions{
			Scheme:  storage.SigningSchemeV4,
			Method:  "GET",
			Expires: time.Now().UTC().Add(r.TTL),
		})
		if err == nil {
			return u
		}
		log.Printf("[gcs.images] signed url failed bucket=%s object=%s err=%v (using public url)", bucket, obj, err)
	}
	return gcscommon.GCSPublicURL(bucket, obj)
}
