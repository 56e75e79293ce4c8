package engine

import (
	"strings"
	"unicode"

	"realty_leads_backend/platform/phone"
	"realty_leads_backend/platform/sanitize"
)

// utmAllowList names the UTM parameters always captured into submission
// metadata, whether or not the mapping table mentions them.
var utmAllowList = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}

// Extract normalizes a raw form payload into a canonical submission.
//
// For each mapping entry the source aliases are scanned in order and the
// first present, non-empty raw value wins; later aliases are never
// consulted. Sanitization runs before the transform. No field is required
// at this stage: absence simply omits the canonical key, and validation is
// the caller's responsibility.
func (m *MappingTable) Extract(raw map[string]string, meta Metadata) *Submission {
	fields := make(map[string]string, len(m.entries))

	for _, entry := range m.entries {
		value := firstNonEmpty(raw, entry.Sources)
		if value == "" {
			continue
		}

		value = applySanitizer(entry.Sanitize, value)
		if value == "" {
			continue
		}

		// split_name fans one mapping entry out into two canonical
		// fields instead of one; the entry's own canonical name is not
		// set.
		if entry.Transform == TransformSplitName {
			first, last := splitName(value)
			setIfEmpty(fields, "first_name", first)
			setIfEmpty(fields, "last_name", last)
			continue
		}

		if entry.Transform != "" {
			value = applyTransform(entry.Transform, value)
		}
		if value != "" {
			fields[entry.Canonical] = value
		}
	}

	// UTM parameters bypass the mapping table entirely.
	if meta.UTM == nil {
		meta.UTM = make(map[string]string)
	}
	for _, key := range utmAllowList {
		if v := strings.TrimSpace(raw[key]); v != "" {
			meta.UTM[key] = v
		}
	}

	return &Submission{Fields: fields, Metadata: meta}
}

func firstNonEmpty(raw map[string]string, sources []string) string {
	for _, alias := range sources {
		if v := strings.TrimSpace(raw[alias]); v != "" {
			return v
		}
	}
	return ""
}

// setIfEmpty writes the value only when the key is not already populated,
// so a dedicated first_name field beats a split full name regardless of
// mapping order.
func setIfEmpty(fields map[string]string, key, value string) {
	if value == "" {
		return
	}
	if _, exists := fields[key]; !exists {
		fields[key] = value
	}
}

func applySanitizer(name, value string) string {
	switch name {
	case SanitizeEmail:
		return sanitize.Email(value)
	case SanitizeTextarea:
		return sanitize.Textarea(value)
	case SanitizeURL:
		return sanitize.URL(value)
	case SanitizeNumber:
		return sanitize.Number(value)
	case SanitizeInteger:
		return sanitize.Integer(value)
	default:
		return sanitize.Text(value)
	}
}

func applyTransform(name, value string) string {
	switch name {
	case TransformCombineName:
		return strings.Join(strings.Fields(value), " ")
	case TransformFormatPhone:
		return phone.NormalizeE164(value)
	case TransformCapitalize:
		return capitalizeWords(value)
	case TransformUppercase:
		return strings.ToUpper(value)
	case TransformLowercase:
		return strings.ToLower(value)
	default:
		return value
	}
}

func splitName(value string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	first = capitalizeWords(parts[0])
	if len(parts) > 1 {
		last = capitalizeWords(strings.TrimSpace(parts[1]))
	}
	return first, last
}

func capitalizeWords(value string) string {
	words := strings.Fields(value)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
