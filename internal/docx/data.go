package docx

import "strings"

// Data is the context a template is rendered with. Fields holds the flat keys
// (customer_name, loan_amount, ...); Groups holds the same values by record so that
// templates written with dotted tags such as {customer.full_name} resolve as well.
type Data struct {
	Fields map[string]string            `yaml:"fields"`
	Groups map[string]map[string]string `yaml:"groups"`
}

// Lookup resolves a tag name. Unknown keys resolve to the empty string.
func (d Data) Lookup(key string) string {
	key = strings.TrimSpace(key)
	if v, ok := d.Fields[key]; ok {
		return v
	}
	group, field, ok := strings.Cut(key, ".")
	if !ok {
		return ""
	}
	return d.Groups[group][field]
}
