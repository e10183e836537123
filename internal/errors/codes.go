package errors

// Error codes are stable identifiers grouped by hundred-block:
// 1xx validation, 2xx filesystem, 3xx store/persistence.
const (
	// ErrCodeInvalidInput indicates a caller-supplied argument is invalid
	// (e.g., a non-positive result limit).
	ErrCodeInvalidInput = "ERR_101_INVALID_INPUT"

	// ErrCodeFileRead indicates a file could not be read or stat'd.
	ErrCodeFileRead = "ERR_201_FILE_READ"

	// ErrCodeNotDirectory indicates a path expected to be a directory is not.
	ErrCodeNotDirectory = "ERR_202_NOT_DIRECTORY"

	// ErrCodeStoreCorrupt indicates the persisted index document could not
	// be parsed. Recovered by rebuilding a fresh document, never fatal.
	ErrCodeStoreCorrupt = "ERR_301_STORE_CORRUPT"

	// ErrCodePersist indicates the index document could not be written.
	ErrCodePersist = "ERR_302_PERSIST_FAILED"

	// ErrCodeClosed indicates an operation on a disposed index handle.
	ErrCodeClosed = "ERR_303_INDEX_CLOSED"
)
