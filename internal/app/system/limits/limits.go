// internal/app/system/limits/limits.go
package limits

// Request body size limits. These prevent memory exhaustion from
// oversized requests; per-field validation happens in the handlers.
const (
	// MaxAudioUploadBytes caps the multipart body of a memo share. A
	// 30-second AAC clip is well under 2 MB; the cap leaves headroom for
	// higher-bitrate capture.
	MaxAudioUploadBytes = 16 << 20 // 16 MB

	// MaxJSONBodyBytes caps plain JSON request bodies.
	MaxJSONBodyBytes = 1 << 20 // 1 MB
)
