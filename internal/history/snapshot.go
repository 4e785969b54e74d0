package history

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

const redactedValue = "[redacted]"

var (
	// protectedFields are maintained by the engine and cannot be updated.
	protectedFields = map[string]bool{
		"id":        true,
		"createdAt": true,
		"createdBy": true,
		"updatedAt": true,
		"updatedBy": true,
		"version":   true,
	}
	// diffExcluded never appear in a change set.
	diffExcluded = map[string]bool{
		"history":   true,
		"updatedAt": true,
		"updatedBy": true,
		"version":   true,
	}
)

var fieldCache sync.Map

// jsonFields returns the top-level json names declared by the record type.
func jsonFields(rec domain.Record) map[string]bool {
	t := reflect.TypeOf(rec)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := fieldCache.Load(t); ok {
		return cached.(map[string]bool)
	}
	fields := map[string]bool{}
	collectFields(t, fields)
	fieldCache.Store(t, fields)
	return fields
}

func collectFields(t reflect.Type, fields map[string]bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct {
			collectFields(f.Type, fields)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields[name] = true
	}
}

// toMap converts a record or raw JSON body to a generic field map.
func toMap(v any) (map[string]any, error) {
	raw, ok := v.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(v)
		if err != nil {
			return nil, err
		}
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	delete(out, "history")
	return out, nil
}

func redactedSet(rec domain.Record) map[string]bool {
	r, ok := rec.(domain.Redactor)
	if !ok {
		return nil
	}
	set := map[string]bool{}
	for _, f := range r.RedactedFields() {
		set[f] = true
	}
	return set
}

// redact masks declared secret fields in place.
func redact(rec domain.Record, doc map[string]any) map[string]any {
	for field := range redactedSet(rec) {
		if _, ok := doc[field]; ok {
			doc[field] = redactedValue
		}
	}
	return doc
}

// load resets rec and decodes body into it.
func load(rec domain.Record, body []byte) error {
	v := reflect.ValueOf(rec).Elem()
	v.Set(reflect.Zero(v.Type()))
	return json.Unmarshal(body, rec)
}
