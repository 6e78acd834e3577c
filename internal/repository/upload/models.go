package upload

import "time"

// File is one stored upload. StoredName is the on-disk name under the
// uploads directory, Url the public path clients play it from.
type File struct {
	Id         string
	Filename   string
	StoredName string
	Url        string
	Size       int64
	UploadedAt time.Time
}
