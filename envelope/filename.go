package envelope

import (
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Extension is the envelope file extension.
const Extension = ".md"

// defaultUploadName substitutes for attachments uploaded without a
// filename, so they still get a usable extension.
const defaultUploadName = "attachment.bin"

// NewID returns a fresh opaque envelope id: 32 lowercase hex
// characters (a random UUID without dashes).
func NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// Filename builds the envelope filename "<sent_at>-<id>.md". The
// timestamp is the fixed-width RFC 3339 Z form, so a lexicographic
// directory listing yields chronological order with the id as
// tiebreak. This ordering is the delivery order guarantee.
func Filename(sentAt time.Time, id string) string {
	return FormatTime(sentAt) + "-" + id + Extension
}

// AttachmentName builds the storage name "<id>-attachment<N><ext>"
// for the index-th attachment (1-based, upload order). Only the
// extension of the original upload name is preserved.
func AttachmentName(id string, index int, originalName string) string {
	if originalName == "" {
		originalName = defaultUploadName
	}
	ext := path.Ext(path.Base(originalName))
	return fmt.Sprintf("%s-attachment%d%s", id, index, ext)
}

// ArchiveName maps an envelope filename to its archive name in done/:
// the envelope stem with a .zip extension.
func ArchiveName(envelopeFilename string) string {
	return strings.TrimSuffix(envelopeFilename, path.Ext(envelopeFilename)) + ".zip"
}

// timestampLen is the fixed width of the Z-form timestamp prefix.
const timestampLen = len("2006-01-02T15:04:05Z")

// IsEnvelopeName reports whether a filename has the exact envelope
// shape "<sent_at>-<id>.md". Attachments live in the same inbox and
// may carry any extension the uploader chose, including .md, so inbox
// scans must match the full name shape rather than the extension.
func IsEnvelopeName(name string) bool {
	stem, ok := strings.CutSuffix(name, Extension)
	if !ok {
		return false
	}
	if len(stem) != timestampLen+1+32 || stem[timestampLen] != '-' {
		return false
	}
	if _, err := time.Parse(time.RFC3339, stem[:timestampLen]); err != nil {
		return false
	}
	for _, r := range stem[timestampLen+1:] {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}
