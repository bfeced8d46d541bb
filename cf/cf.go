package cf

import (
	"fmt"
	"github.com/pkg/errors"
	"reflect"
	"sort"
)

// Load binds the values in data onto the exported fields of the struct pointed to by cf. Keys are taken from the
// `cf:"..."` tag, falling back to the field name. Keys missing from data leave the field untouched.
//
func Load(data map[string]interface{}, cf interface{}) error {
	cfV := reflect.ValueOf(cf)
	if cfV.Kind() != reflect.Ptr {
		return errors.Errorf("cf type [%s] not pointer", cfV.Type())
	}
	cfV = cfV.Elem()
	if cfV.Kind() != reflect.Struct {
		return errors.Errorf("cf type [%s] not struct", cfV.Type())
	}
	for i := 0; i < cfV.NumField(); i++ {
		field := cfV.Field(i)
		if !field.CanSet() {
			continue
		}
		key := keyName(cfV.Type().Field(i))
		v, found := data[key]
		if !found {
			continue
		}
		if err := setField(field, v); err != nil {
			return errors.Wrapf(err, "field '%s'", key)
		}
	}
	return nil
}

func setField(field reflect.Value, v interface{}) error {
	switch field.Interface().(type) {
	case int, int64:
		if j, ok := v.(int); ok {
			field.SetInt(int64(j))
		} else {
			return mismatch(field, v)
		}

	case uint32:
		if j, ok := v.(int); ok && j >= 0 && uint64(j) <= 0xffffffff {
			field.SetUint(uint64(j))
		} else {
			return mismatch(field, v)
		}

	case float64:
		switch f := v.(type) {
		case float64:
			field.SetFloat(f)
		case int:
			field.SetFloat(float64(f))
		default:
			return mismatch(field, v)
		}

	case bool:
		if b, ok := v.(bool); ok {
			field.SetBool(b)
		} else {
			return mismatch(field, v)
		}

	case string:
		if s, ok := v.(string); ok {
			field.SetString(s)
		} else {
			return mismatch(field, v)
		}

	case []int:
		vs, ok := v.([]interface{})
		if !ok {
			return mismatch(field, v)
		}
		out := make([]int, 0, len(vs))
		for _, e := range vs {
			j, ok := e.(int)
			if !ok {
				return errors.Errorf("list element type mismatch, got [%s], expected [int]", reflect.TypeOf(e))
			}
			out = append(out, j)
		}
		field.Set(reflect.ValueOf(out))

	case map[string]interface{}:
		switch m := normalize(v).(type) {
		case map[string]interface{}:
			field.Set(reflect.ValueOf(m))
		default:
			return mismatch(field, v)
		}

	default:
		return errors.Errorf("unsupported field type [%s]", field.Type())
	}
	return nil
}

func mismatch(field reflect.Value, v interface{}) error {
	return errors.Errorf("type mismatch, got [%s], expected [%s]", reflect.TypeOf(v), field.Type())
}

func Dump(label string, cf interface{}) string {
	cfV := reflect.ValueOf(cf)
	if cfV.Kind() == reflect.Ptr {
		cfV = cfV.Elem()
	}
	if cfV.Kind() != reflect.Struct {
		return ""
	}
	out := label + " {\n"
	format := fmt.Sprintf("\t%%-%ds %%v\n", maxKeyLength(cfV))
	for i := 0; i < cfV.NumField(); i++ {
		if cfV.Field(i).CanInterface() {
			key := keyName(cfV.Type().Field(i))
			out += fmt.Sprintf(format, key, dumpValue(cfV.Field(i).Interface()))
		}
	}
	out += "}\n"
	return out
}

func dumpValue(v interface{}) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := "{"
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s: %v", k, m[k])
	}
	return out + "}"
}

func keyName(v reflect.StructField) string {
	key := v.Name
	tag := v.Tag.Get("cf")
	if tag != "" {
		key = tag
	}
	return key
}

func maxKeyLength(cfV reflect.Value) int {
	maxKeyLength := 0
	for i := 0; i < cfV.NumField(); i++ {
		key := keyName(cfV.Type().Field(i))
		keyLength := len(key)
		if keyLength > maxKeyLength {
			maxKeyLength = keyLength
		}
	}
	return maxKeyLength
}
