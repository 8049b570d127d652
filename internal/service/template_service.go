// internal/service/template_service.go
package service

import (
	"sort"
	"strings"
)

// UnknownValue replaces placeholders whose value is empty.
const UnknownValue = "<unknown>"

// RenderTemplate substitutes {key} placeholders in one pass, so substituted
// values are never themselves expanded.
func RenderTemplate(template string, data map[string]string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		v := data[k]
		if strings.TrimSpace(v) == "" {
			v = UnknownValue
		}
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
