package integration

import "context"

// FieldCatalog lists the fields available on both sides of a mapping.
// SourceFields are CRM field names, TargetFields are internal field names.
type FieldCatalog struct {
	SourceFields []string `json:"source_fields"`
	TargetFields []string `json:"target_fields"`
}

// CatalogProvider is the port to the CRM metadata API.
type CatalogProvider interface {
	// DescribeFields returns the field names of a CRM object.
	DescribeFields(ctx context.Context, creds Credentials, sobjectName string) ([]string, error)
}

// ModelRegistry is the port to the internal model schema.
type ModelRegistry interface {
	// Fields returns the field names of an internal model, or false if unknown.
	Fields(modelName string) ([]string, bool)
}
