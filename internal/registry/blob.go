package registry

import "context"

// FileUpload is the caller-supplied description of an uploaded file. The
// engine never reads content; the blob store does.
type FileUpload struct {
	Name     string
	MimeType string
}

// BlobStore is the external content store. The engine records the returned
// locator and dereferences it on fetch; it performs no validation of file
// content.
type BlobStore interface {
	Put(ctx context.Context, upload FileUpload) (locator string, err error)
}

// StubBlobStore satisfies BlobStore without real storage, mapping uploads to
// a placeholder locator by mime class. Used in development and tests.
type StubBlobStore struct{}

func (StubBlobStore) Put(_ context.Context, upload FileUpload) (string, error) {
	switch {
	case len(upload.MimeType) >= 6 && upload.MimeType[:6] == "image/":
		return "/blobs/generic_id_scan", nil
	case upload.MimeType == "application/pdf":
		return "/blobs/generic_certificate", nil
	default:
		return "/blobs/generic_document", nil
	}
}
