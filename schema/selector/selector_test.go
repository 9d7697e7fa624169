package selector

import (
	"reflect"
	"testing"

	"github.com/modelkit/odoogen/odoo"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Selector
	}{
		{"res.partner", Selector{Model: "res.partner"}},
		{"res.partner[name,email]", Selector{Model: "res.partner", Include: []string{"name", "email"}}},
		{"res.partner[-message_ids]", Selector{Model: "res.partner", Exclude: []string{"message_ids"}}},
		{"res.partner[name, -message_ids]", Selector{Model: "res.partner", Include: []string{"name"}, Exclude: []string{"message_ids"}}},
		{"  crm.lead  ", Selector{Model: "crm.lead"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"   ",
		"res.partner[",
		"res.partner[name",
		"res.partner[]",
		"res.partner[name,]",
		"res.partner[child.name]",
	} {
		t.Run(input, func(t *testing.T) {
			if _, err := Parse(input); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", input)
			}
		})
	}
}

func TestParseAllFailsFast(t *testing.T) {
	sels, err := ParseAll([]string{"res.partner", "bad["})
	if err == nil {
		t.Fatal("want error for malformed selector")
	}
	if sels != nil {
		t.Errorf("ParseAll must return nil on error, got %v", sels)
	}
}

func TestApply(t *testing.T) {
	metas := []odoo.FieldMetadata{
		{Name: "name"},
		{Name: "email"},
		{Name: "message_ids"},
	}

	tests := []struct {
		name string
		sel  Selector
		want []string
	}{
		{"empty passes all", Selector{Model: "m"}, []string{"name", "email", "message_ids"}},
		{"include filters", Selector{Model: "m", Include: []string{"email", "name"}}, []string{"name", "email"}},
		{"exclude drops", Selector{Model: "m", Exclude: []string{"message_ids"}}, []string{"name", "email"}},
		{"exclude beats include", Selector{Model: "m", Include: []string{"name", "email"}, Exclude: []string{"email"}}, []string{"name"}},
		{"unknown include yields nothing", Selector{Model: "m", Include: []string{"missing"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sel.Apply(metas)
			var names []string
			for _, m := range got {
				names = append(names, m.Name)
			}
			if !reflect.DeepEqual(names, tt.want) {
				t.Errorf("Apply = %v, want %v", names, tt.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, input := range []string{
		"res.partner",
		"res.partner[name,email]",
		"res.partner[name,-message_ids]",
	} {
		sel, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		back, err := Parse(sel.String())
		if err != nil {
			t.Fatalf("Parse(String()) of %q: %v", input, err)
		}
		if !reflect.DeepEqual(sel, back) {
			t.Errorf("round trip of %q: %+v != %+v", input, sel, back)
		}
	}
}
