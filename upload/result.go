package upload

import (
	"fmt"

	"github.com/rayansaffron/storefront/storage"
)

// Result is what the upload middleware hands to the catalog handlers.
type Result struct {
	// Assets maps a field name to its published assets in upload order.
	Assets  map[string][]*storage.PublishedAsset
	Summary Summary
}

// Summary is the per-request processing report. It is logged and returned
// to the client, never persisted.
type Summary struct {
	TotalFiles int           `json:"totalFiles"`
	Files      []FileSummary `json:"files"`
	Message    string        `json:"message"`
}

type FileSummary struct {
	Field      string                     `json:"field"`
	Name       string                     `json:"name"`
	FinalSize  string                     `json:"finalSize"`
	Dimensions string                     `json:"dimensions"`
	Watermark  string                     `json:"watermark"`
	URLs       map[storage.Variant]string `json:"urls"`
}

func newResult(jobs []*fileJob, assets []*storage.PublishedAsset) *Result {
	r := &Result{
		Assets:  make(map[string][]*storage.PublishedAsset),
		Summary: Summary{TotalFiles: len(jobs), Files: make([]FileSummary, 0, len(jobs))},
	}
	for i, j := range jobs {
		a := assets[i]
		r.Assets[j.spec.Name] = append(r.Assets[j.spec.Name], a)

		fs := FileSummary{
			Field:      j.spec.Name,
			Name:       j.file.Name,
			FinalSize:  fmt.Sprintf("%.1f KB", float64(a.Bytes)/1024),
			Dimensions: fmt.Sprintf("%dx%d", a.Width, a.Height),
			URLs:       a.Variants,
		}
		if j.encoded != nil {
			fs.Watermark = j.encoded.Watermark
		}
		r.Summary.Files = append(r.Summary.Files, fs)
	}
	if len(jobs) > 0 {
		r.Summary.Message = fmt.Sprintf("%d image(s) uploaded with watermark", len(jobs))
	}
	return r
}

// First returns the first asset of field, or nil.
func (r *Result) First(field string) *storage.PublishedAsset {
	if r == nil || len(r.Assets[field]) == 0 {
		return nil
	}
	return r.Assets[field][0]
}

// URLs returns the canonical URLs of field's assets in order.
func (r *Result) URLs(field string) []string {
	if r == nil {
		return nil
	}
	urls := make([]string, 0, len(r.Assets[field]))
	for _, a := range r.Assets[field] {
		urls = append(urls, a.URL)
	}
	return urls
}

// PublicIDs lists every published asset of the request in upload order.
func (r *Result) PublicIDs() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]int)
	ids := make([]string, 0, len(r.Summary.Files))
	for _, f := range r.Summary.Files {
		i := seen[f.Field]
		seen[f.Field]++
		if i < len(r.Assets[f.Field]) {
			ids = append(ids, r.Assets[f.Field][i].PublicID)
		}
	}
	return ids
}
