package types

// OperationResult is the envelope for every non-streaming response
type OperationResult struct {
	Success bool        `json:"success"`
	Value   interface{} `json:"value,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    ErrorKind   `json:"code,omitempty"`
}

// ListResult is the envelope returned for directory listings.
// Files mirrors the shape the front end has always consumed; it is
// always present so an empty directory encodes as [].
type ListResult struct {
	Success bool        `json:"success"`
	Files   []FileEntry `json:"files"`
	Error   string      `json:"error,omitempty"`
	Code    ErrorKind   `json:"code,omitempty"`
}

// OK builds a successful result
func OK(value interface{}) OperationResult {
	return OperationResult{Success: true, Value: value}
}

// Fail converts an error into a failed result carrying only its message
func Fail(err error) OperationResult {
	return OperationResult{Success: false, Error: err.Error(), Code: Classify(err)}
}

// ListOK builds a successful listing result
func ListOK(files []FileEntry) ListResult {
	if files == nil {
		files = []FileEntry{}
	}
	return ListResult{Success: true, Files: files}
}

// ListFail converts an error into a failed listing result
func ListFail(err error) ListResult {
	return ListResult{Success: false, Error: err.Error(), Code: Classify(err)}
}
