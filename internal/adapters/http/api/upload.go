package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/okian/rentura/internal/adapters/upstream"
	"github.com/okian/rentura/pkg/metrics"
)

// FormField is the multipart field carrying the document.
const FormField = "file"

// multipart framing allowance on top of the document limit.
const formOverhead = 64 << 10

// Rejection reasons reported to metrics.
const (
	rejectNotPDF      = "not_pdf"
	rejectTooLarge    = "too_large"
	rejectMissingFile = "missing_file"
	rejectMalformed   = "malformed"
)

// Upload is a PDF read from a multipart request.
type Upload struct {
	Filename string
	Data     []byte
}

// Reader returns a fresh reader over the document.
func (u Upload) Reader() io.Reader { return bytes.NewReader(u.Data) }

// ReadUpload reads the PDF from the "file" field, refusing bodies above maxBytes.
func ReadUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (Upload, error) {
	const op = "api.read_upload"

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+formOverhead)
	f, hdr, err := r.FormFile(FormField)
	if err != nil {
		switch {
		case isTooLarge(err):
			metrics.RecordRejectedUpload(rejectTooLarge)
			return Upload{}, wrapKind(op, ErrTooLarge, err)
		case errors.Is(err, http.ErrMissingFile):
			metrics.RecordRejectedUpload(rejectMissingFile)
			return Upload{}, wrapKind(op, ErrMissingFile, err)
		default:
			metrics.RecordRejectedUpload(rejectMalformed)
			return Upload{}, wrapKind(op, ErrBadRequest, err)
		}
	}
	defer func() { _ = f.Close() }()

	if !upstream.IsPDFName(hdr.Filename) {
		metrics.RecordRejectedUpload(rejectNotPDF)
		return Upload{}, newKind(op, ErrUnsupportedFile)
	}
	if hdr.Size > maxBytes {
		metrics.RecordRejectedUpload(rejectTooLarge)
		return Upload{}, newKind(op, ErrTooLarge)
	}

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		metrics.RecordRejectedUpload(rejectMalformed)
		return Upload{}, wrapKind(op, ErrBadRequest, err)
	}
	if int64(len(data)) > maxBytes {
		metrics.RecordRejectedUpload(rejectTooLarge)
		return Upload{}, newKind(op, ErrTooLarge)
	}

	metrics.RecordUploadSize(int64(len(data)))
	return Upload{Filename: filepath.Base(hdr.Filename), Data: data}, nil
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
