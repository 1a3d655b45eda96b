// Package fieldmap translates extraction-capability field names into the
// case record's canonical role-prefixed attribute names.
package fieldmap

import (
	"strings"

	"casedesk/internal/domain"
)

// Map translates extracted fields for one document into case-record fields,
// limited to the fields relevant to the role/kind combination. Unknown
// extraction fields are dropped.
func Map(extracted map[string]string, role domain.PersonRole, kind domain.DocumentKind) map[string]string {
	prefix, ok := rolePrefixes[role]
	if !ok {
		prefix = string(domain.RoleApplicant)
	}

	out := make(map[string]string)
	for name, value := range extracted {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(name))

		if suffix, ok := baseFields[key]; ok {
			out[prefix+"_"+suffix] = value
			continue
		}
		if table, ok := kindFields[kind]; ok {
			if suffix, ok := table[key]; ok {
				out[prefix+"_"+suffix] = value
				continue
			}
		}
		if table, ok := globalFields[kind]; ok {
			if field, ok := table[key]; ok {
				out[field] = value
			}
		}
	}

	applyNameSplit(out, prefix)
	return out
}

// applyNameSplit derives first/last name from the full name when the
// extraction supplied only a full name. Best-effort: the final whitespace
// token becomes the last name and everything preceding it the first name, so
// particle surnames ("van der Berg") may misparse.
func applyNameSplit(fields map[string]string, prefix string) {
	full, hasFull := fields[prefix+"_full_name"]
	if !hasFull {
		return
	}
	_, hasFirst := fields[prefix+"_first_name"]
	_, hasLast := fields[prefix+"_last_name"]
	if hasFirst || hasLast {
		return
	}

	first, last := SplitFullName(full)
	if first != "" {
		fields[prefix+"_first_name"] = first
	}
	if last != "" {
		fields[prefix+"_last_name"] = last
	}
}

// SplitFullName splits a full name on whitespace. A single token yields an
// empty last name; with multiple tokens the final one is the last name.
func SplitFullName(full string) (first, last string) {
	tokens := strings.Fields(full)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], ""
	default:
		return strings.Join(tokens[:len(tokens)-1], " "), tokens[len(tokens)-1]
	}
}
