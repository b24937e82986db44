package media

// Role classifies what an uploaded image is used for. It selects the width
// ceiling and the remote folder.
type Role int

const (
	RoleOther Role = iota
	RolePrimary
	RoleDetail
)

const (
	PrimaryCeiling = 1200
	DetailCeiling  = 1000
	OtherCeiling   = 800
)

func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleDetail:
		return "detail"
	default:
		return "other"
	}
}

// DefaultCeiling is the width cap used when a route does not override it.
func (r Role) DefaultCeiling() int {
	switch r {
	case RolePrimary:
		return PrimaryCeiling
	case RoleDetail:
		return DetailCeiling
	default:
		return OtherCeiling
	}
}

// Format is the detected source format family.
type Format string

const (
	FormatJPEG  Format = "jpeg"
	FormatPNG   Format = "png"
	FormatWebP  Format = "webp"
	FormatGIF   Format = "gif"
	FormatOther Format = "other"
)

func formatFromDecoder(name string) Format {
	switch name {
	case "jpeg":
		return FormatJPEG
	case "png":
		return FormatPNG
	case "webp":
		return FormatWebP
	case "gif":
		return FormatGIF
	default:
		return FormatOther
	}
}

// IsPalette reports whether the format is re-encoded as palette PNG.
func (f Format) IsPalette() bool {
	return f == FormatPNG || f == FormatGIF
}
