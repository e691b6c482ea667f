package aggregate

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/sells-group/company-intel/internal/model"
)

// SectionText renders one section struct as "key: value" lines keyed by
// JSON name. Lists and nested values are written as indented JSON.
func SectionText(section any) string {
	v := reflect.Indirect(reflect.ValueOf(section))
	if v.Kind() != reflect.Struct {
		return fmt.Sprint(section)
	}
	t := v.Type()

	lines := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		key := jsonName(t.Field(i))
		if key == "" {
			continue
		}
		f := v.Field(i)
		switch f.Kind() {
		case reflect.Slice, reflect.Map, reflect.Struct:
			b, err := json.MarshalIndent(f.Interface(), "", "  ")
			if err != nil {
				lines = append(lines, fmt.Sprintf("%s: %v", key, f.Interface()))
				continue
			}
			lines = append(lines, fmt.Sprintf("%s: %s", key, b))
		default:
			lines = append(lines, fmt.Sprintf("%s: %v", key, f.Interface()))
		}
	}
	return strings.Join(lines, "\n")
}

// SectionTexts renders every section of agg, keyed by section name.
func SectionTexts(agg model.SectionAggregate) map[model.Section]string {
	return map[model.Section]string{
		model.SectionCompanyOverview:   SectionText(agg.CompanyOverview),
		model.SectionSalesIntelligence: SectionText(agg.SalesIntelligence),
		model.SectionPricing:           SectionText(agg.Pricing),
		model.SectionFirmographic:      SectionText(agg.Firmographic),
		model.SectionGTMStrategy:       SectionText(agg.GTMStrategy),
	}
}

func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}
