package upload

import (
	"io"
	"mime/multipart"
)

// File is one uploaded file as received from the client. It is owned by the
// request and never outlives it.
type File struct {
	Field       string
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FromMultipart groups the file parts of a parsed form by field name,
// keeping each field's original order.
func FromMultipart(form *multipart.Form) map[string][]File {
	files := make(map[string][]File, len(form.File))
	for field, headers := range form.File {
		for _, fh := range headers {
			files[field] = append(files[field], File{
				Field:       field,
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}
	}
	return files
}
