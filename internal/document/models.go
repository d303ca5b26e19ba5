// Package document holds the document reference and chunk records shared by
// the fetch, chunking, search and ingestion layers.
package document

import (
	"fmt"
	"strings"
)

// VectorDimension is the embedding size for the deployed embedding model.
const VectorDimension = 1536

// Field names of the pre-vectorized index. They double as the JSON keys of an
// indexed chunk document.
const (
	FieldID            = "Id"
	FieldURL           = "URL"
	FieldName          = "Name"
	FieldItemID        = "ItemId"
	FieldTitle         = "Title"
	FieldDriveID       = "DriveId"
	FieldPageNumber    = "PageNumber"
	FieldSecurityData  = "SecurityData"
	FieldContent       = "Content"
	FieldTitleVector   = "TitleVector"
	FieldContentVector = "ContentVector"
)

// Reference identifies a source document in the repository.
// It is created by the caller and never modified.
type Reference struct {
	DriveID      string `json:"driveId"`
	ItemID       string `json:"itemId"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	SecurityData string `json:"securityData,omitempty"` // Opaque, carried through untouched
}

// Validate reports ErrInvalidReference when any of driveId, itemId, name or
// url is empty.
func (r Reference) Validate() error {
	var missing []string
	if strings.TrimSpace(r.DriveID) == "" {
		missing = append(missing, "driveId")
	}
	if strings.TrimSpace(r.ItemID) == "" {
		missing = append(missing, "itemId")
	}
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(r.URL) == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidReference, strings.Join(missing, ", "))
	}
	return nil
}

// Chunk is one analyzed page of a document with its title and content vectors.
type Chunk struct {
	ID            string // UUID, new on every ingest
	URL           string // Same as the source reference
	Name          string
	ItemID        string
	Title         string
	DriveID       string
	PageNumber    int // 1-based
	SecurityData  string
	Content       string    // Newline-joined lines of the page
	TitleVector   []float32 // Shared by every chunk of a document
	ContentVector []float32
}

// Fields returns the chunk as an index document keyed by field name.
func (c Chunk) Fields() map[string]any {
	return map[string]any{
		FieldID:            c.ID,
		FieldURL:           c.URL,
		FieldName:          c.Name,
		FieldItemID:        c.ItemID,
		FieldTitle:         c.Title,
		FieldDriveID:       c.DriveID,
		FieldPageNumber:    c.PageNumber,
		FieldSecurityData:  c.SecurityData,
		FieldContent:       c.Content,
		FieldTitleVector:   c.TitleVector,
		FieldContentVector: c.ContentVector,
	}
}

// CheckDimensions returns ErrDimensionMismatch if either vector is not
// VectorDimension long.
func (c Chunk) CheckDimensions() error {
	if len(c.TitleVector) != VectorDimension {
		return fmt.Errorf("%w: title vector has %d dimensions, expected %d",
			ErrDimensionMismatch, len(c.TitleVector), VectorDimension)
	}
	if len(c.ContentVector) != VectorDimension {
		return fmt.Errorf("%w: content vector has %d dimensions, expected %d",
			ErrDimensionMismatch, len(c.ContentVector), VectorDimension)
	}
	return nil
}
