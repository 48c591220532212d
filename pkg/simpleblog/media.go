package simpleblog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tendant/simple-blog/pkg/simpleblog/objectkey"
)

// sniffLen is the number of leading bytes http.DetectContentType inspects.
const sniffLen = 512

// UploadAvatar stores an image as the author's avatar and points the author's
// avatar URL at it. The author must exist before anything is stored.
func (s *service) UploadAvatar(ctx context.Context, req UploadMediaRequest) (*Author, error) {
	if _, err := s.GetAuthor(ctx, req.ID); err != nil {
		return nil, err
	}

	key, mediaURL, err := s.storeMedia(ctx, CollectionAuthors, req)
	if err != nil {
		return nil, &AuthorError{AuthorID: req.ID, Op: "upload avatar", Err: err}
	}

	var previous string
	var updated *Author
	_, err = s.repository.Update(ctx, CollectionAuthors, req.ID, func(rec *Record) error {
		a, err := decodeAuthor(rec)
		if err != nil {
			return err
		}
		previous = a.Avatar
		a.Avatar = mediaURL
		now := s.now()
		a.UpdatedAt = &now
		next, err := encodeRecord(req.ID, a)
		if err != nil {
			return err
		}
		rec.Data = next.Data
		updated = a
		return nil
	})
	if err != nil {
		// the author was deleted while the upload was stored
		s.deleteObject(ctx, key)
		return nil, authorError(req.ID, "upload avatar", err)
	}

	s.replaceMedia(ctx, previous, key)
	s.fire("media.uploaded", s.eventSink.MediaUploaded(ctx, CollectionAuthors, req.ID, key))
	return updated, nil
}

// UploadCover stores an image as the post's cover and points the post's
// cover URL at it. The post must exist before anything is stored.
func (s *service) UploadCover(ctx context.Context, req UploadMediaRequest) (*BlogPost, error) {
	if _, err := s.GetBlogPost(ctx, req.ID); err != nil {
		return nil, err
	}

	key, mediaURL, err := s.storeMedia(ctx, CollectionBlogPosts, req)
	if err != nil {
		return nil, &BlogPostError{PostID: req.ID, Op: "upload cover", Err: err}
	}

	var previous string
	updated, err := s.updateBlogPost(ctx, req.ID, "upload cover", func(p *BlogPost) error {
		previous = p.Cover
		p.Cover = mediaURL
		now := s.now()
		p.UpdatedAt = &now
		return nil
	})
	if err != nil {
		s.deleteObject(ctx, key)
		return nil, err
	}

	s.replaceMedia(ctx, previous, key)
	s.fire("media.uploaded", s.eventSink.MediaUploaded(ctx, CollectionBlogPosts, req.ID, key))
	return updated, nil
}

// DownloadMedia streams a stored upload. The caller must close the reader.
func (s *service) DownloadMedia(ctx context.Context, objectKey string) (io.ReadCloser, *ObjectMeta, error) {
	if s.blobStore == nil {
		return nil, nil, ErrMediaStoreNotConfigured
	}
	if !validObjectKey(objectKey) {
		return nil, nil, ErrMediaNotFound
	}

	meta, err := s.blobStore.GetObjectMeta(ctx, objectKey)
	if err != nil {
		return nil, nil, mediaError(objectKey, "stat", err)
	}

	reader, err := s.blobStore.Download(ctx, objectKey)
	if err != nil {
		return nil, nil, mediaError(objectKey, "download", err)
	}
	return reader, meta, nil
}

// storeMedia checks that the upload is an image and writes it under the
// record's deterministic key. It returns the key and its public URL.
func (s *service) storeMedia(ctx context.Context, collection Collection, req UploadMediaRequest) (string, string, error) {
	if s.blobStore == nil {
		return "", "", ErrMediaStoreNotConfigured
	}
	if req.Reader == nil {
		return "", "", fmt.Errorf("%w: no file provided", ErrInvalidUpload)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(req.Reader, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", "", fmt.Errorf("%w: file is empty", ErrInvalidUpload)
	}

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", fmt.Errorf("%w: %s is not an image", ErrInvalidUpload, contentType)
	}

	key := s.keyGenerator.GenerateKey(string(collection), req.ID, &objectkey.KeyMetadata{
		FileName:    req.FileName,
		ContentType: contentType,
	})

	body := io.MultiReader(bytes.NewReader(head), req.Reader)
	if err := s.blobStore.UploadWithParams(ctx, body, UploadParams{ObjectKey: key, MimeType: contentType}); err != nil {
		return "", "", &StorageError{Backend: "media", Key: key, Op: "upload", Err: err}
	}

	mediaURL, err := s.urlStrategy.MediaURL(key)
	if err != nil {
		s.deleteObject(ctx, key)
		return "", "", fmt.Errorf("build media url: %w", err)
	}
	return key, mediaURL, nil
}

// replaceMedia removes the object behind previousURL when a new upload was
// stored under a different key (for example a .png replacing a .jpg).
func (s *service) replaceMedia(ctx context.Context, previousURL, newKey string) {
	if key, ok := s.urlStrategy.ObjectKey(previousURL); ok && key != newKey {
		s.deleteObject(ctx, key)
	}
}

// removeMedia deletes the stored upload behind mediaURL, if this service owns it.
func (s *service) removeMedia(ctx context.Context, mediaURL string) {
	if s.blobStore == nil || mediaURL == "" {
		return
	}
	if key, ok := s.urlStrategy.ObjectKey(mediaURL); ok {
		s.deleteObject(ctx, key)
	}
}

func (s *service) deleteObject(ctx context.Context, key string) {
	if s.blobStore == nil {
		return
	}
	if err := s.blobStore.Delete(ctx, key); err != nil && !errors.Is(err, ErrMediaNotFound) {
		s.logger.Warn("Failed to delete media", "key", key, "error", err)
	}
}

func mediaError(key, op string, err error) error {
	if errors.Is(err, ErrMediaNotFound) {
		return err
	}
	return &StorageError{Backend: "media", Key: key, Op: op, Err: err}
}

func validObjectKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
