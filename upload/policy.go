package upload

import (
	"mime"
	"strings"

	"github.com/rayansaffron/storefront/media"
	"github.com/rayansaffron/storefront/storage"
)

// MaxFileBytes is the per-file ceiling for every upload route.
const MaxFileBytes int64 = 10 << 20

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// FieldSpec declares one multipart file field a route accepts.
type FieldSpec struct {
	Name     string
	Role     media.Role
	MaxCount int
	// Ceiling overrides the role's default width cap when non-zero.
	Ceiling int
	Folder  string
	// Required rejects the request when the field carries no file.
	Required bool
}

// Policy is the set of file fields and limits for one route.
type Policy struct {
	Fields       []FieldSpec
	MaxFileBytes int64
	// MaxFiles caps the whole request; zero means the sum of MaxCount.
	MaxFiles int
}

func (p Policy) field(name string) (FieldSpec, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

func (p Policy) maxFiles() int {
	if p.MaxFiles > 0 {
		return p.MaxFiles
	}
	n := 0
	for _, f := range p.Fields {
		n += f.MaxCount
	}
	return n
}

func (p Policy) maxFileBytes() int64 {
	if p.MaxFileBytes > 0 {
		return p.MaxFileBytes
	}
	return MaxFileBytes
}

// Require returns a copy of p in which the named fields must be present.
func (p Policy) Require(names ...string) Policy {
	fields := make([]FieldSpec, len(p.Fields))
	copy(fields, p.Fields)
	for i := range fields {
		for _, n := range names {
			if fields[i].Name == n {
				fields[i].Required = true
			}
		}
	}
	p.Fields = fields
	return p
}

func ProductPolicy() Policy {
	return Policy{
		Fields: []FieldSpec{
			{Name: "productImage", Role: media.RolePrimary, MaxCount: 1, Folder: storage.FolderProductsMain},
			{Name: "productDetailsImages", Role: media.RoleDetail, MaxCount: 10, Folder: storage.FolderProductsDetails},
		},
		MaxFileBytes: MaxFileBytes,
		MaxFiles:     12,
	}
}

func BlogPolicy() Policy {
	return Policy{
		Fields: []FieldSpec{
			{Name: "blogImage", Role: media.RolePrimary, MaxCount: 1, Folder: storage.FolderBlog},
			{Name: "blogImages", Role: media.RoleDetail, MaxCount: 5, Ceiling: 1200, Folder: storage.FolderBlog},
		},
		MaxFileBytes: MaxFileBytes,
	}
}

func allowedType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = contentType
	}
	return allowedTypes[strings.ToLower(strings.TrimSpace(mt))]
}
