package mrpacker

import "errors"

var (
	ErrNotFound      = errors.New("no matching version")
	ErrSumsMismatch  = errors.New("checksum mismatch")
	ErrMissingFile   = errors.New("referenced file missing")
	ErrBadManifest   = errors.New("malformed modpack index")
	ErrBadConfig     = errors.New("malformed updater config")
	ErrUnknownLoader = errors.New("unknown mod loader")
	ErrNoProjectID   = errors.New("no project ID in download URL")
	ErrBadFilename   = errors.New("unusable download filename")
	ErrDuplicatePath = errors.New("duplicate file path")
)
