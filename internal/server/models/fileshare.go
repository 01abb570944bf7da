package models

// FileShare is the metadata payload for a set of uploaded files. The bytes
// themselves live in blob storage under the owning object's id; deleting the
// object must cascade to that prefix on every termination path.
type FileShare struct {
	Files []FileMeta `json:"files"`
}

// FileMeta describes one uploaded file. StoredName is the randomized blob
// key component; Name is the original filename shown to downloaders.
type FileMeta struct {
	Name       string `json:"name"`
	StoredName string `json:"storedName"`
	Size       int64  `json:"size"`
}
