package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/cleared-dev/receivables/internal/period"
)

// Generic wrapper keys under which REST backends commonly nest a list.
var wrapperKeys = []string{"data", "items", "results"}

// Layouts carrying a zone or offset name an instant.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

// Layouts without a zone are calendar dates or wall-clock times; they are
// parsed as period.Floating so bucketing never shifts them across days.
var floatingLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// list returns the object elements of a collection payload. The payload may
// be a bare array or an object wrapping the array under collection or one
// of the generic wrapper keys.
func list(raw []byte, collection string) []gjson.Result {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	root := gjson.ParseBytes(raw)

	var arr gjson.Result
	switch {
	case root.IsArray():
		arr = root
	case root.IsObject():
		keys := append([]string{collection}, wrapperKeys...)
		for _, k := range keys {
			if k == "" {
				continue
			}
			if v := root.Get(k); v.IsArray() {
				arr = v
				break
			}
		}
	}
	if !arr.IsArray() {
		return nil
	}

	var out []gjson.Result
	for _, el := range arr.Array() {
		if el.IsObject() {
			out = append(out, el)
		}
	}
	return out
}

// text returns a trimmed string for string and number values.
func text(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return strings.TrimSpace(v.Str)
	case gjson.Number:
		return strings.TrimSpace(v.Raw)
	default:
		return ""
	}
}

// ident coerces an identity that may be a bare string, a number, or an
// embedded object id ({"$oid": ...} or a populated document with _id).
func ident(v gjson.Result) string {
	if v.IsObject() {
		for _, k := range []string{"_id", "$oid", "id"} {
			if id := ident(v.Get(k)); id != "" {
				return id
			}
		}
		return ""
	}
	return text(v)
}

// recordID returns the identity of a record.
func recordID(obj gjson.Result) string {
	if id := ident(obj.Get("_id")); id != "" {
		return id
	}
	return ident(obj.Get("id"))
}

// number parses a JSON number or numeric string. Anything else is zero.
func number(v gjson.Result) decimal.Decimal {
	switch v.Type {
	case gjson.Number:
		d, err := decimal.NewFromString(v.Raw)
		if err != nil {
			return decimal.NewFromFloat(v.Num)
		}
		return d
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, " ", "")
		if s == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// amount is number clamped to be non-negative.
func amount(v gjson.Result) decimal.Decimal {
	d := number(v)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// date parses a timestamp string or epoch milliseconds. Unparsable,
// absent and non-positive values yield nil.
func date(v gjson.Result) *time.Time {
	switch v.Type {
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return nil
		}
		for _, layout := range zonedLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
		for _, layout := range floatingLayouts {
			if t, err := time.ParseInLocation(layout, s, period.Floating); err == nil {
				return &t
			}
		}
		return nil
	case gjson.Number:
		ms := v.Int()
		if ms <= 0 {
			return nil
		}
		t := time.UnixMilli(ms).UTC()
		return &t
	default:
		return nil
	}
}

// firstDate returns the first parsable date among keys.
func firstDate(obj gjson.Result, keys ...string) *time.Time {
	for _, k := range keys {
		if t := date(obj.Get(k)); t != nil {
			return t
		}
	}
	return nil
}

// present reports whether key exists with a non-null value.
func present(obj gjson.Result, key string) bool {
	v := obj.Get(key)
	return v.Exists() && v.Type != gjson.Null
}

// displayName resolves name, company, person in that order. Empty when
// none is set.
func displayName(obj gjson.Result) string {
	for _, k := range []string{"name", "company", "person"} {
		if s := text(obj.Get(k)); s != "" {
			return s
		}
	}
	return ""
}
