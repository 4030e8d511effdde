package model

import (
	"path/filepath"
	"strings"
)

// UploadRequest describes one input file as declared by the caller.
// DeclaredSize is the size the caller claims; -1 when unknown.
type UploadRequest struct {
	Filename     string
	DeclaredMIME string
	DeclaredSize int64
	Language     string
}

// Ext returns the lower-cased extension of the declared filename, with the dot.
func (r UploadRequest) Ext() string {
	return strings.ToLower(filepath.Ext(r.Filename))
}
