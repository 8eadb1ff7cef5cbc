package firmware

// Source tags where a firmware image came from.
type Source int

const (
	// SourceFile is an explicit local file.
	SourceFile Source = iota + 1
	// SourceURL is an explicit download URL.
	SourceURL
	// SourceRelease is an image resolved through the release index.
	SourceRelease
)

func (s Source) String() string {
	switch s {
	case SourceFile:
		return "file"
	case SourceURL:
		return "url"
	case SourceRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Image is a resolved firmware payload with its provenance.
type Image struct {
	Payload []byte
	Source  Source
	// Origin is the file path, URL or release version the payload came from.
	Origin string
	// Fingerprint is the expected fingerprint published by the release
	// index; empty when the source carries none.
	Fingerprint string
}

// Release is one entry of the remote release index.
type Release struct {
	Version     string `json:"version"`
	URL         string `json:"url"`
	Fingerprint string `json:"fingerprint"`
}
