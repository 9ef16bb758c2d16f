package upload

// formOverheadBytes leaves room for multipart boundaries and the text
// fields that travel alongside the file.
const formOverheadBytes = 1 << 20

// MaxRequestSize returns the request body cap for a form that may carry
// one file of at most maxFileBytes.
func MaxRequestSize(maxFileBytes int64) int64 {
	return maxFileBytes + formOverheadBytes
}
