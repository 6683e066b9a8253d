package validators

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
)

// multipartOverhead leaves room for the text fields that travel with the file.
const multipartOverhead = 1 << 20

// FormFile is an uploaded file read fully into memory.
type FormFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ParseMultipart parses a multipart body capped at maxFileBytes plus form overhead.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxFileBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxFileBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.New(pkgerrors.CodeValidation, "request body too large").
				WithDetails(map[string]any{"max_bytes": maxFileBytes})
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

// ReadFormFile returns the named file of an already parsed multipart form.
// ok is false when the field is absent.
func ReadFormFile(r *http.Request, field string, maxFileBytes int64) (file *FormFile, ok bool, err error) {
	src, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid upload")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxFileBytes+1))
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if int64(len(data)) > maxFileBytes {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s exceeds size limit", field)).
			WithDetails(map[string]any{"max_bytes": maxFileBytes})
	}
	return &FormFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true, nil
}
