package kv

// Source tells where a read was answered from.
type Source string

const (
	SourceCache  Source = "cache"
	SourceRemote Source = "remote"
)

// WriteRequest is a key/value pair to store. Value is nil when the request
// omitted it; an empty string is a legitimate value.
type WriteRequest struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

// ReadResult is a positive read. Misses are reported as apperr not_found.
type ReadResult struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source Source `json:"source"`
}
