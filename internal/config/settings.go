package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrMissingSetting is returned when a settings bundle has an empty required field.
var ErrMissingSetting = errors.New("missing required setting")

var validate = validator.New()

// FoundrySettings configures the embedding and document-analysis services.
type FoundrySettings struct {
	AccountKey                     string `validate:"required"`
	OpenAIEndpoint                 string `validate:"required"`
	EmbeddingModel                 string `validate:"required"` // Deployment name
	EmbeddingAPIVersion            string `validate:"required"`
	DocumentIntelligenceEndpoint   string `validate:"required"`
	DocumentIntelligenceAPIVersion string `validate:"required"`
}

// SearchSettings configures the managed search service.
type SearchSettings struct {
	Endpoint          string `validate:"required"`
	AdminKey          string `validate:"required"`
	StorageResourceID string `validate:"required"` // Blob account bound by the pull-pipeline data source
	APIVersion        string `validate:"required"`
}

// AzureBlobSettings configures the storage account the pull-pipeline data
// source reads from.
type AzureBlobSettings struct {
	AccountName      string `validate:"required"`
	ConnectionString string `validate:"required"`
	Container        string `validate:"required"`
}

// BlobStorageSettings configures the S3-compatible object store used with
// the qdrant backend.
type BlobStorageSettings struct {
	Endpoint        string `validate:"required"`
	AccessKeyID     string `validate:"required"`
	SecretAccessKey string `validate:"required"`
	UseSSL          bool
	Container       string `validate:"required"`
}

// GraphSettings holds the app registration used to read from the document repository.
type GraphSettings struct {
	TenantID     string `validate:"required"`
	ClientID     string `validate:"required"`
	ClientSecret string `validate:"required"`
}

// Validate reports every empty required field.
func (s FoundrySettings) Validate() error { return validateNonEmpty("foundry", s) }

// Validate reports every empty required field.
func (s SearchSettings) Validate() error { return validateNonEmpty("search", s) }

// Validate reports every empty required field.
func (s AzureBlobSettings) Validate() error { return validateNonEmpty("azure blob", s) }

// Validate reports every empty required field.
func (s BlobStorageSettings) Validate() error { return validateNonEmpty("blob storage", s) }

// Validate reports every empty required field.
func (s GraphSettings) Validate() error { return validateNonEmpty("graph", s) }

// validateNonEmpty runs the struct's required tags and names each failing field.
func validateNonEmpty(bundle string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%s settings: %w", bundle, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("%w: %s settings: %s", ErrMissingSetting, bundle, strings.Join(fields, ", "))
}
