package integration

import "slices"

// StaticModelRegistry is a ModelRegistry backed by a fixed field list per model.
type StaticModelRegistry map[string][]string

// Fields implements ModelRegistry
func (r StaticModelRegistry) Fields(modelName string) ([]string, bool) {
	fields, ok := r[modelName]
	if !ok {
		return nil, false
	}
	return slices.Clone(fields), true
}

// DefaultModelRegistry lists the mappable fields of every internal model.
var DefaultModelRegistry = StaticModelRegistry{
	"account": {
		"name", "account_number", "industry", "website", "phone",
		"billing_street", "billing_city", "billing_state", "billing_postal_code", "billing_country",
		"annual_revenue", "employee_count", "owner_email", "description",
	},
	"contract": {
		"contract_number", "account_name", "status", "start_date", "end_date",
		"term_months", "owner_email", "description",
	},
	"opportunity": {
		"name", "account_name", "stage", "amount", "close_date",
		"probability", "lead_source", "owner_email", "next_step", "description",
	},
	"quote": {
		"quote_number", "name", "opportunity_name", "status", "expiration_date",
		"subtotal", "discount", "tax", "grand_total", "description",
	},
	"user": {
		"email", "first_name", "last_name", "username", "title",
		"department", "phone", "role_name", "manager_email", "is_active",
	},
	"org_hierarchy": {
		"name", "parent_name", "developer_name", "description",
	},
}
