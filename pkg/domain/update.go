package domain

import (
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Update is the partial result of a step: record field names mapped to new values.
// Keys use the camelCase names of the Record schema (e.g. "editedContent").
type Update map[string]any

// Field names of the Record schema.
const (
	FieldQuery              = "query"
	FieldStyle              = "style"
	FieldSearchResults      = "searchResults"
	FieldSummary            = "summary"
	FieldHumanInstructions  = "humanInstructions"
	FieldEditedContent      = "editedContent"
	FieldValidationApproved = "validationApproved"
	FieldFeedback           = "feedback"
	FieldSavedToMemory      = "savedToMemory"
	FieldFinalResult        = "finalResult"
	FieldErrorMessage       = "errorMessage"
)

// Fail builds the update a step returns when its collaborator faulted.
func Fail(message string) Update {
	return Update{FieldErrorMessage: message}
}

// Keys returns the update keys in lexical order.
func (u Update) Keys() []string {
	keys := make([]string, 0, len(u))
	for k := range u {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var (
	schemaOnce   sync.Once
	schemaFields map[string]struct{}
)

// IsField reports whether name belongs to the Record schema.
func IsField(name string) bool {
	schemaOnce.Do(loadSchema)
	_, ok := schemaFields[name]
	return ok
}

// Fields returns the Record schema names in lexical order.
func Fields() []string {
	schemaOnce.Do(loadSchema)
	names := make([]string, 0, len(schemaFields))
	for name := range schemaFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func loadSchema() {
	schemaFields = make(map[string]struct{})
	t := reflect.TypeOf(Record{})
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("mapstructure"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		schemaFields[tag] = struct{}{}
	}
}
