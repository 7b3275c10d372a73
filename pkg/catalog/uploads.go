package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tendant/simple-catalog/pkg/catalog/objectkey"
)

// DefaultMaxUploadSize is the upload limit used when none is configured.
const DefaultMaxUploadSize int64 = 10 << 20

// Uploads stores cover images under content-addressed names.
type Uploads struct {
	blobs   BlobStore
	photos  PhotoRegistry
	events  EventSink
	logger  *slog.Logger
	maxSize int64
	clock   *stamper
}

// UploadOption configures Uploads
type UploadOption func(*Uploads)

// WithPhotoRegistry records every stored name in registry
func WithPhotoRegistry(registry PhotoRegistry) UploadOption {
	return func(u *Uploads) {
		u.photos = registry
	}
}

// WithMaxSize limits the size of a single upload in bytes
func WithMaxSize(n int64) UploadOption {
	return func(u *Uploads) {
		u.maxSize = n
	}
}

// WithUploadEvents publishes photo events to sink
func WithUploadEvents(sink EventSink) UploadOption {
	return func(u *Uploads) {
		u.events = sink
	}
}

// WithUploadLogger sets the logger used for non-fatal failures
func WithUploadLogger(logger *slog.Logger) UploadOption {
	return func(u *Uploads) {
		u.logger = logger
	}
}

// NewUploads creates an upload service over blobs
func NewUploads(blobs BlobStore, opts ...UploadOption) (*Uploads, error) {
	if blobs == nil {
		return nil, errors.New("blob store is required")
	}
	u := &Uploads{
		blobs:   blobs,
		events:  NewNoopEventSink(),
		logger:  slog.Default(),
		maxSize: DefaultMaxUploadSize,
		clock:   newStamper(nil),
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.maxSize <= 0 {
		return nil, fmt.Errorf("invalid upload size limit %d", u.maxSize)
	}
	return u, nil
}

// MaxSize returns the configured upload limit in bytes.
func (u *Uploads) MaxSize() int64 {
	return u.maxSize
}

// Store writes the bytes read from r and returns their content-addressed
// name. contentType must start with "image/". Storing identical bytes under
// the same extension again overwrites the object with the same content.
func (u *Uploads) Store(ctx context.Context, r io.Reader, filename, contentType string) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", &EntityError{Entity: KindPhoto, ID: filename, Op: "store",
			Err: fmt.Errorf("%w: %q", ErrInvalidContentType, contentType)}
	}

	data, err := io.ReadAll(io.LimitReader(r, u.maxSize+1))
	if err != nil {
		return "", &EntityError{Entity: KindPhoto, ID: filename, Op: "store", Err: NewStorageError("upload", "read", err)}
	}
	if int64(len(data)) > u.maxSize {
		return "", &EntityError{Entity: KindPhoto, ID: filename, Op: "store",
			Err: fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, u.maxSize)}
	}

	name := objectkey.Name(data, filename)
	if err := u.blobs.Upload(ctx, name, bytes.NewReader(data)); err != nil {
		return "", &EntityError{Entity: KindPhoto, ID: name, Op: "store", Err: err}
	}

	if u.photos != nil {
		photo := &Photo{Name: name, CreatedAt: u.clock.next(time.Time{})}
		if err := u.photos.CreatePhoto(ctx, photo); err != nil {
			return "", &EntityError{Entity: KindPhoto, ID: name, Op: "store", Err: err}
		}
	}

	u.publish(ctx, EventCreated, name)
	return name, nil
}

// Retrieve opens the stored object and reports the content type implied by
// its extension. The caller must close the returned reader.
func (u *Uploads) Retrieve(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if !objectkey.Valid(name) {
		return nil, "", &EntityError{Entity: KindPhoto, ID: name, Op: "retrieve", Err: ErrNotFound}
	}
	rc, err := u.blobs.Download(ctx, name)
	if err != nil {
		return nil, "", &EntityError{Entity: KindPhoto, ID: name, Op: "retrieve", Err: err}
	}
	return rc, objectkey.ContentType(name), nil
}

// Stat returns metadata for a stored object.
func (u *Uploads) Stat(ctx context.Context, name string) (*ObjectMeta, error) {
	if !objectkey.Valid(name) {
		return nil, &EntityError{Entity: KindPhoto, ID: name, Op: "stat", Err: ErrNotFound}
	}
	meta, err := u.blobs.GetObjectMeta(ctx, name)
	if err != nil {
		return nil, &EntityError{Entity: KindPhoto, ID: name, Op: "stat", Err: err}
	}
	return meta, nil
}

// List returns the recorded photos, newest first. Without a registry the list
// is empty.
func (u *Uploads) List(ctx context.Context) ([]*Photo, error) {
	if u.photos == nil {
		return []*Photo{}, nil
	}
	photos, err := u.photos.ListPhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	return photos, nil
}

// Remove deletes the stored object and its registry entry. It fails with
// ErrNotFound only when neither exists.
func (u *Uploads) Remove(ctx context.Context, name string) error {
	if !objectkey.Valid(name) {
		return &EntityError{Entity: KindPhoto, ID: name, Op: "remove", Err: ErrNotFound}
	}

	blobErr := u.blobs.Delete(ctx, name)
	if blobErr != nil && !errors.Is(blobErr, ErrNotFound) {
		return &EntityError{Entity: KindPhoto, ID: name, Op: "remove", Err: blobErr}
	}

	regErr := ErrNotFound
	if u.photos != nil {
		regErr = u.photos.DeletePhoto(ctx, name)
		if regErr != nil && !errors.Is(regErr, ErrNotFound) {
			return &EntityError{Entity: KindPhoto, ID: name, Op: "remove", Err: regErr}
		}
	}

	if blobErr != nil && regErr != nil {
		return &EntityError{Entity: KindPhoto, ID: name, Op: "remove", Err: ErrNotFound}
	}

	u.publish(ctx, EventDeleted, name)
	return nil
}

func (u *Uploads) publish(ctx context.Context, typ EventType, name string) {
	event := Event{Type: typ, Entity: KindPhoto, ID: name, At: time.Now().UTC()}
	if err := u.events.Publish(ctx, event); err != nil {
		u.logger.Warn("failed to publish upload event", "type", typ, "name", name, "error", err)
	}
}
