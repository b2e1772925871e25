package common

const (
	// MaxRequestBody limits JSON request bodies accepted by the API.
	MaxRequestBody = 1 << 20
)
