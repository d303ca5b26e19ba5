package ingest

import (
	"fmt"
	"path"
	"strings"
)

// Content types recorded on stored blobs.
const (
	ContentTypeCSV         = "text/csv"
	ContentTypePDF         = "application/pdf"
	ContentTypePlainText   = "text/plain"
	ContentTypeJSON        = "application/json"
	ContentTypeOctetStream = "application/octet-stream"
	ContentTypeExcel       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeWord        = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePowerPoint  = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

var contentTypes = map[string]string{
	".pdf":  ContentTypePDF,
	".csv":  ContentTypeCSV,
	".json": ContentTypeJSON,
	".doc":  ContentTypeWord,
	".docx": ContentTypeWord,
	".xls":  ContentTypeExcel,
	".xlsx": ContentTypeExcel,
	".txt":  ContentTypePlainText,
	".ppt":  ContentTypePowerPoint,
	".pptx": ContentTypePowerPoint,
}

// ContentType maps a file name's extension to its MIME type. Unknown
// extensions are application/octet-stream.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return ContentTypeOctetStream
}

// NormalizeURL trims and lower-cases u. Index entries and blob metadata
// always hold the normalized form.
func NormalizeURL(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

var pastTense = map[string]string{
	OpUpload: "uploaded",
	OpIngest: "ingested",
	OpDelete: "deleted",
}

// Describe renders the outcome of a document operation for callers.
func Describe(op, name string, ok bool) string {
	if ok {
		return fmt.Sprintf("%s has been %s successfully.", name, pastTense[op])
	}
	return fmt.Sprintf("Failed to %s %s.", op, name)
}
