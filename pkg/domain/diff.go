package domain

import (
	"reflect"
)

// Changes returns the schema fields whose values differ between oldRec and newRec.
// If oldRec is nil, every non-zero field of newRec is reported (initial load).
func Changes(oldRec, newRec *Record) []string {
	if newRec == nil {
		return nil
	}

	var changed []string
	nv := reflect.ValueOf(*newRec)
	t := nv.Type()

	var ov reflect.Value
	if oldRec != nil {
		ov = reflect.ValueOf(*oldRec)
	}

	for _, name := range Fields() {
		idx := fieldIndex(t, name)
		if idx < 0 {
			continue
		}
		newVal := nv.Field(idx).Interface()
		if oldRec == nil {
			if !nv.Field(idx).IsZero() {
				changed = append(changed, name)
			}
			continue
		}
		if !reflect.DeepEqual(ov.Field(idx).Interface(), newVal) {
			changed = append(changed, name)
		}
	}
	return changed
}

func fieldIndex(t reflect.Type, name string) int {
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("mapstructure") == name {
			return i
		}
	}
	return -1
}
