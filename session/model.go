package session

// Record is one stored session. SID is the backend key; Credentials is an
// opaque payload that this package never interprets.
type Record struct {
	SID         string `json:"sid"`
	Credentials string `json:"credentials"`
}
