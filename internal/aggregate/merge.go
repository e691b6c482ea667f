// Package aggregate folds per-page records into one record per section and
// narrates the result.
package aggregate

import (
	"reflect"
	"sort"

	"github.com/sells-group/company-intel/internal/model"
)

// Merge folds records into a SectionAggregate. Records are applied in
// ascending URL order and every field a record sets overwrites the merged
// value, so the last URL wins. Lists are replaced whole, never unioned.
// A string field is set when non-empty, a list when non-nil; booleans are
// always set.
func Merge(records map[string]model.PageRecord) model.SectionAggregate {
	urls := make([]string, 0, len(records))
	for u := range records {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	var agg model.SectionAggregate
	for _, u := range urls {
		rec := records[u]
		overwrite(&agg.CompanyOverview, rec.CompanyOverview)
		overwrite(&agg.SalesIntelligence, rec.SalesIntelligence)
		overwrite(&agg.Pricing, rec.Pricing)
		overwrite(&agg.Firmographic, rec.Firmographic)
		overwrite(&agg.GTMStrategy, rec.GTMStrategy)
	}
	return agg
}

// overwrite copies each set field of src into *dst.
func overwrite[T any](dst *T, src T) {
	d := reflect.ValueOf(dst).Elem()
	s := reflect.ValueOf(src)
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		switch f.Kind() {
		case reflect.String:
			if f.Len() == 0 {
				continue
			}
		case reflect.Slice:
			if f.IsNil() {
				continue
			}
		}
		d.Field(i).Set(f)
	}
}
