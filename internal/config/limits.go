package config

const (
	// MaxContentLength is the maximum size in bytes of author input.
	// The pipeline is linear time, so this bounds latency and memory.
	MaxContentLength = 1 << 20

	// MaxTitleLength is the maximum length for content titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxTitleLength = 255

	// WordsPerMinute is the reading speed used for estimated reading time.
	WordsPerMinute = 200

	// DefaultReprocessBatchSize keeps reprocessing batches small so one
	// malformed historical record only costs its own batch slot.
	DefaultReprocessBatchSize = 50

	// MaxAssetBytes caps a single uploaded file.
	MaxAssetBytes = 10 << 20

	// DefaultSearchLimit and MaxSearchLimit bound search pagination.
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)
