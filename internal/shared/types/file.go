package types

import "time"

// EntryType tags a FileEntry as a file or a directory
type EntryType string

const (
	EntryFile      EntryType = "file"
	EntryDirectory EntryType = "directory"
)

// WriteRequest carries a write-file payload
type WriteRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// RenameRequest carries a rename-file payload
type RenameRequest struct {
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}

// FileEntry describes one child of a listed directory
type FileEntry struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	IsDirectory bool      `json:"isDirectory"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
	ModifiedAt  time.Time `json:"modifiedAt"`
	Extension   string    `json:"extension"`
	Type        EntryType `json:"type"`
}

// EntryTypeOf returns the tag matching isDir
func EntryTypeOf(isDir bool) EntryType {
	if isDir {
		return EntryDirectory
	}
	return EntryFile
}
