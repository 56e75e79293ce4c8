package engine

import (
	"fmt"
	"os"

	"realty_leads_backend/platform/apperr"

	"gopkg.in/yaml.v3"
)

// Sanitizer names accepted by a mapping entry.
const (
	SanitizeText     = "text"
	SanitizeEmail    = "email"
	SanitizeTextarea = "textarea"
	SanitizeURL      = "url"
	SanitizeNumber   = "number"
	SanitizeInteger  = "integer"
)

// Transform names accepted by a mapping entry.
const (
	TransformSplitName   = "split_name"
	TransformCombineName = "combine_name"
	TransformFormatPhone = "format_phone"
	TransformCapitalize  = "capitalize"
	TransformUppercase   = "uppercase"
	TransformLowercase   = "lowercase"
)

var validSanitizers = map[string]bool{
	SanitizeText:     true,
	SanitizeEmail:    true,
	SanitizeTextarea: true,
	SanitizeURL:      true,
	SanitizeNumber:   true,
	SanitizeInteger:  true,
}

var validTransforms = map[string]bool{
	TransformSplitName:   true,
	TransformCombineName: true,
	TransformFormatPhone: true,
	TransformCapitalize:  true,
	TransformUppercase:   true,
	TransformLowercase:   true,
}

// FieldMapping declares how one canonical field is populated: an ordered
// list of source aliases, a sanitizer, and an optional transform.
type FieldMapping struct {
	Canonical string   `yaml:"canonical"`
	Sources   []string `yaml:"sources"`
	Sanitize  string   `yaml:"sanitize"`
	Transform string   `yaml:"transform"`
}

// MappingTable is a validated, ordered set of field mappings.
type MappingTable struct {
	entries []FieldMapping
}

// NewMappingTable validates the entries and builds a table. Unknown
// sanitizer or transform names are configuration errors: they fail here,
// at load time, never per request.
func NewMappingTable(entries []FieldMapping) (*MappingTable, error) {
	for _, entry := range entries {
		if entry.Canonical == "" {
			return nil, apperr.Config("mapping entry missing canonical name")
		}
		if len(entry.Sources) == 0 {
			return nil, apperr.Config(fmt.Sprintf("mapping entry %q has no sources", entry.Canonical))
		}
		sanitize := entry.Sanitize
		if sanitize == "" {
			sanitize = SanitizeText
		}
		if !validSanitizers[sanitize] {
			return nil, apperr.Config(fmt.Sprintf("mapping entry %q: unknown sanitizer %q", entry.Canonical, entry.Sanitize))
		}
		if entry.Transform != "" && !validTransforms[entry.Transform] {
			return nil, apperr.Config(fmt.Sprintf("mapping entry %q: unknown transform %q", entry.Canonical, entry.Transform))
		}
	}

	table := make([]FieldMapping, len(entries))
	copy(table, entries)
	for i := range table {
		if table[i].Sanitize == "" {
			table[i].Sanitize = SanitizeText
		}
	}
	return &MappingTable{entries: table}, nil
}

// LoadMappingTable reads a YAML mapping file and validates it.
func LoadMappingTable(path string) (*MappingTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, "read mapping file", err)
	}

	var doc struct {
		Fields []FieldMapping `yaml:"fields"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, "parse mapping file", err)
	}
	return NewMappingTable(doc.Fields)
}

// DefaultMappingTable covers the field aliases seen across the standard
// lead-capture, valuation, and showing forms.
func DefaultMappingTable() *MappingTable {
	table, err := NewMappingTable([]FieldMapping{
		{Canonical: "first_name", Sources: []string{"first_name", "firstname", "fname", "given_name"}, Sanitize: SanitizeText, Transform: TransformCapitalize},
		{Canonical: "last_name", Sources: []string{"last_name", "lastname", "lname", "surname", "family_name"}, Sanitize: SanitizeText, Transform: TransformCapitalize},
		{Canonical: "full_name", Sources: []string{"name", "full_name", "fullname", "your_name", "your-name"}, Sanitize: SanitizeText, Transform: TransformSplitName},
		{Canonical: "email", Sources: []string{"email", "e-mail", "email_address", "mail", "your-email"}, Sanitize: SanitizeEmail},
		{Canonical: "phone", Sources: []string{"phone", "phone_number", "tel", "telephone", "mobile", "cell", "your-phone"}, Sanitize: SanitizeText, Transform: TransformFormatPhone},
		{Canonical: "message", Sources: []string{"message", "comments", "comment", "notes", "inquiry", "question", "your-message"}, Sanitize: SanitizeTextarea},
		{Canonical: "listing_id", Sources: []string{"listing_id", "listing", "mls_id"}, Sanitize: SanitizeInteger},
		{Canonical: "property_id", Sources: []string{"property_id", "property"}, Sanitize: SanitizeInteger},
		{Canonical: "agent_id", Sources: []string{"agent_id", "agent"}, Sanitize: SanitizeText},
		{Canonical: "address", Sources: []string{"address", "property_address", "street_address"}, Sanitize: SanitizeText},
		{Canonical: "budget", Sources: []string{"budget", "price_range", "max_price"}, Sanitize: SanitizeNumber},
		{Canonical: "timeline", Sources: []string{"timeline", "timeframe", "when"}, Sanitize: SanitizeText, Transform: TransformLowercase},
		{Canonical: "source_page", Sources: []string{"source_page", "page_url", "referrer"}, Sanitize: SanitizeURL},
	})
	if err != nil {
		// The compiled default is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return table
}
