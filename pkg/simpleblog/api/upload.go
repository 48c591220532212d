package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// maxUploadMemory is the part of a multipart form kept in memory; larger
// files spill to temporary files.
const maxUploadMemory = 10 << 20

// uploadRequest reads the named multipart file field. The returned cleanup
// closes the file and removes temporary form files.
func uploadRequest(r *http.Request, id, field string) (simpleblog.UploadMediaRequest, func(), error) {
	noop := func() {}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return simpleblog.UploadMediaRequest{}, noop, fmt.Errorf("%w: %v", simpleblog.ErrInvalidUpload, err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			err = fmt.Errorf("%w: missing %q file field", simpleblog.ErrInvalidUpload, field)
		} else {
			err = fmt.Errorf("%w: %v", simpleblog.ErrInvalidUpload, err)
		}
		r.MultipartForm.RemoveAll()
		return simpleblog.UploadMediaRequest{}, noop, err
	}

	cleanup := func() {
		file.Close()
		r.MultipartForm.RemoveAll()
	}

	return simpleblog.UploadMediaRequest{
		ID:       id,
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Reader:   file,
	}, cleanup, nil
}
