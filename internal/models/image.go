package models

// Image is an uploaded photograph as received from the caller.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}
