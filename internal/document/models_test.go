package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceValidate(t *testing.T) {
	valid := Reference{DriveID: "d", ItemID: "i", Name: "report.pdf", URL: "https://contoso/x"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(r *Reference)
		missing string
	}{
		{"drive", func(r *Reference) { r.DriveID = "" }, "driveId"},
		{"item", func(r *Reference) { r.ItemID = " " }, "itemId"},
		{"name", func(r *Reference) { r.Name = "" }, "name"},
		{"url", func(r *Reference) { r.URL = "" }, "url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := valid
			tt.mutate(&ref)
			err := ref.Validate()
			require.ErrorIs(t, err, ErrInvalidReference)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestReferenceValidateTitleOptional(t *testing.T) {
	ref := Reference{DriveID: "d", ItemID: "i", Name: "n", URL: "u"}
	assert.NoError(t, ref.Validate())
}

func TestChunkFields(t *testing.T) {
	c := Chunk{ID: "id-1", URL: "u", Name: "n", PageNumber: 2, Content: "text"}
	fields := c.Fields()

	assert.Equal(t, "id-1", fields[FieldID])
	assert.Equal(t, 2, fields[FieldPageNumber])
	assert.Equal(t, "text", fields[FieldContent])
	assert.Len(t, fields, 11)
}

func TestChunkCheckDimensions(t *testing.T) {
	good := make([]float32, VectorDimension)
	c := Chunk{TitleVector: good, ContentVector: good}
	require.NoError(t, c.CheckDimensions())

	c.ContentVector = good[:10]
	assert.ErrorIs(t, c.CheckDimensions(), ErrDimensionMismatch)
}
