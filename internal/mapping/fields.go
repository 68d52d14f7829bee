package mapping

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm/schema"
)

// Field maps one database column to the payload keys it may be read from,
// in priority order. The canonical spelling always comes first; known vendor
// misspellings and casing variants follow.
type Field struct {
	Column  string
	Keys    []string
	Convert Converter // nil means TextColumn
}

// CallHistoryFields is the column mapping for call-history webhooks.
var CallHistoryFields = []Field{
	{Column: "contact_id", Keys: []string{"contactId"}},
	{Column: "call_date_utc", Keys: []string{"callDateUTC"}},
	{Column: "comment", Keys: []string{"comment"}},
	{Column: "result_code", Keys: []string{"resultCode"}},
	{Column: "result_group", Keys: []string{"resultGroup"}},
	{Column: "time_offset", Keys: []string{"timeOffset"}},
	{Column: "username", Keys: []string{"username"}},
	{Column: "event_date_utc", Keys: []string{"eventDateUTC"}},
	{Column: "modified_utc", Keys: []string{"modifiedUTC", "modifiedTUC"}},
	{Column: "scheduled_call_username", Keys: []string{"scheduledCallUsername"}},
	{Column: "call_id", Keys: []string{"callId"}},
}

// ContactFields is the column mapping for contact webhooks.
var ContactFields = []Field{
	{Column: "contact_id", Keys: []string{"contactId"}},
	{Column: "first_name", Keys: []string{"firstName"}},
	{Column: "last_name", Keys: []string{"lastName"}},
	{Column: "company", Keys: []string{"company"}},
	{Column: "email", Keys: []string{"email"}},
	{Column: "address1", Keys: []string{"address1"}},
	{Column: "address2", Keys: []string{"address2"}},
	{Column: "city", Keys: []string{"city"}},
	{Column: "state", Keys: []string{"state"}},
	{Column: "postal_code", Keys: []string{"postalCode"}},
	{Column: "country", Keys: []string{"country"}},
	{Column: "annual_revenue", Keys: []string{"annualRevenue"}},
	{Column: "number_of_employees", Keys: []string{"numberofEmployees", "numberOfEmployees"}, Convert: EmployeeCount},
	{Column: "number_of_owners", Keys: []string{"numberofOwners", "numberOfOwners"}},
	{Column: "industry", Keys: []string{"industry"}},
	{Column: "primary_sic_code", Keys: []string{"primarySICCode"}},
	{Column: "primary_sic_code_description", Keys: []string{"primarySICCodeDescription"}},
	{Column: "classification", Keys: []string{"classification"}},
	{Column: "hvt", Keys: []string{"hvt"}},
	{Column: "market", Keys: []string{"market", "merket"}},
	{Column: "website", Keys: []string{"website"}},
	{Column: "modified_utc", Keys: []string{"modifiedUTC"}},
	{Column: "created_utc", Keys: []string{"createdUTC"}},
	{Column: "contact_owner_username", Keys: []string{"contactOwnerUsername", "contactownerUsername"}},
	{Column: "call_flag", Keys: []string{"callFlag"}},
	{Column: "closed_flag", Keys: []string{"closedFlag"}},
}

var schemaCache sync.Map

// Apply resolves every field against p and assigns the converted value to
// the matching column of dst, which must be a pointer to a GORM model.
// Columns are matched through the model's GORM schema, so the mapping tables
// stay in terms of database column names.
func Apply(ctx context.Context, p Payload, fields []Field, dst any) error {
	s, err := schema.Parse(dst, &schemaCache, schema.NamingStrategy{})
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("apply: destination must be a non-nil pointer, got %T", dst)
	}
	rv = rv.Elem()

	for _, f := range fields {
		col := s.LookUpField(f.Column)
		if col == nil {
			return fmt.Errorf("apply: %s has no column %q", s.Name, f.Column)
		}
		conv := f.Convert
		if conv == nil {
			conv = TextColumn
		}
		v, ok := Lookup(p, f.Keys...)
		val, err := conv(v, ok)
		if err != nil {
			return fmt.Errorf("column %s: %w", f.Column, err)
		}
		if err := col.Set(ctx, rv, val); err != nil {
			return fmt.Errorf("column %s: %w", f.Column, err)
		}
	}
	return nil
}
