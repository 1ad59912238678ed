package runtime

import (
	"reflect"
	"slices"

	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// merge applies u to a copy of rec after checking it against the schema and
// the step's ownership declaration. Violations are fatal.
func merge(step ports.Step, rec *domain.Record, u domain.Update) (*domain.Record, error) {
	owns := step.Owns()
	for _, key := range u.Keys() {
		if !domain.IsField(key) {
			return nil, &domain.UnknownFieldError{Step: step.Name(), Field: key}
		}
		if !mayWrite(owns, key, u[key]) {
			return nil, &domain.OwnershipError{Step: step.Name(), Field: key}
		}
	}

	next := rec.Clone()
	if len(u) == 0 {
		return next, nil
	}

	values := make(map[string]any, len(u))
	for key, v := range u {
		if v == nil {
			clearField(next, key)
			continue
		}
		values[key] = v
	}

	// Named fields are overwritten, never merged: slices and maps start fresh.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "mapstructure",
		ErrorUnused: true,
		ZeroFields:  true,
		Result:      next,
	})
	if err != nil {
		return nil, &domain.MergeError{Step: step.Name(), Err: err}
	}
	if err := decoder.Decode(values); err != nil {
		return nil, &domain.MergeError{Step: step.Name(), Err: err}
	}
	return next, nil
}

// mayWrite reports whether a step with the given ownership may write value to key.
// Any step may set errorMessage; only its owner may clear it.
func mayWrite(owns []string, key string, value any) bool {
	if slices.Contains(owns, key) {
		return true
	}
	if key != domain.FieldErrorMessage {
		return false
	}
	msg, ok := value.(string)
	return ok && msg != ""
}

func clearField(rec *domain.Record, key string) {
	v := reflect.ValueOf(rec).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("mapstructure") == key {
			f := v.Field(i)
			f.Set(reflect.Zero(f.Type()))
			return
		}
	}
}
