// Package integration contains the CRM Integration bounded context.
// This context manages the connection to a Salesforce org and the field
// mappings that drive data synchronization between the CRM and internal models.
//
// Key concepts:
//   - RecordType: the mapped object kinds (Account, Contract, Opportunity, Quote, User, Org Hierarchy)
//   - FieldCatalog: CRM source fields and internal target fields available for one record type
//   - Mapping: persisted inbound/outbound field associations plus record-type specific configuration
//   - Credentials: the Salesforce connected-app credentials for a tenant
//   - Role: internal role catalog entry referenced by the User mapping configuration
//
// Design Pattern: Ports & Adapters
//   - Ports (repositories, CatalogProvider) are defined here in the domain layer
//   - Adapters (gorm repositories, Salesforce describe client) are in the infrastructure layer
package integration
