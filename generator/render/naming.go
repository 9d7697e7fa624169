package render

import "strings"

// pascalCase turns a technical name like "res.partner" or "company_id" into
// "ResPartner" / "CompanyId".
func pascalCase(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		switch r {
		case '.', '_', '-', ' ':
			upper = true
		default:
			if upper {
				b.WriteString(strings.ToUpper(string(r)))
				upper = false
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// constCase turns "res.partner" into "RES_PARTNER".
func constCase(name string) string {
	replaced := strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(name)
	return strings.ToUpper(replaced)
}

// slugCase turns "res.partner" into "res_partner", usable in CSS class names.
func slugCase(name string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(strings.ToLower(name))
}
