package cms

import "strings"

// FieldClass tells how a block content field behaves across translations
type FieldClass string

const (
	FieldTranslatable FieldClass = "translatable"
	FieldStructural   FieldClass = "structural"
	FieldMedia        FieldClass = "media"
	FieldStyle        FieldClass = "style"
)

var (
	mediaKeys = map[string]struct{}{
		"image": {}, "images": {}, "src": {}, "video": {}, "icon": {}, "logo": {},
		"avatar": {}, "background_image": {}, "thumbnail": {},
	}
	styleKeys = map[string]struct{}{
		"color": {}, "background": {}, "variant": {}, "theme": {}, "alignment": {},
		"layout": {}, "size": {}, "style": {}, "class_name": {}, "columns": {},
	}
	structuralKeys = map[string]struct{}{
		"id": {}, "type": {}, "position": {}, "order": {}, "link": {}, "href": {},
		"url": {}, "slug": {}, "enabled": {}, "visible": {}, "count": {},
		"rating": {}, "price": {}, "product_id": {}, "product_ids": {},
	}
)

// ClassifyField decides which bucket a content key belongs to.
// Exact names win over suffix rules.
func ClassifyField(key string) FieldClass {
	lower := strings.ToLower(key)
	if _, ok := mediaKeys[lower]; ok {
		return FieldMedia
	}
	if _, ok := styleKeys[lower]; ok {
		return FieldStyle
	}
	if _, ok := structuralKeys[lower]; ok {
		return FieldStructural
	}

	switch {
	case strings.HasSuffix(key, "_image"), strings.HasSuffix(key, "_url"),
		strings.HasSuffix(key, "Image"), strings.HasSuffix(key, "Url"):
		return FieldMedia
	case strings.HasSuffix(key, "_color"), strings.HasSuffix(key, "Color"):
		return FieldStyle
	case strings.HasSuffix(key, "_id"), strings.HasSuffix(key, "Id"):
		return FieldStructural
	}
	return FieldTranslatable
}

// Buckets is content split by field class. Each bucket keeps the original nesting.
type Buckets struct {
	Translatable map[string]interface{} `json:"translatable"`
	Structural   map[string]interface{} `json:"structural"`
	Media        map[string]interface{} `json:"media"`
	Style        map[string]interface{} `json:"style"`
}

func newBuckets() Buckets {
	return Buckets{
		Translatable: map[string]interface{}{},
		Structural:   map[string]interface{}{},
		Media:        map[string]interface{}{},
		Style:        map[string]interface{}{},
	}
}

func (b Buckets) get(c FieldClass) map[string]interface{} {
	switch c {
	case FieldStructural:
		return b.Structural
	case FieldMedia:
		return b.Media
	case FieldStyle:
		return b.Style
	default:
		return b.Translatable
	}
}

var allClasses = []FieldClass{FieldTranslatable, FieldStructural, FieldMedia, FieldStyle}

// Split partitions content into the four buckets. Nested objects under
// translatable keys are split recursively, arrays of objects element by
// element. Non-string scalars under translatable keys are structural.
func Split(content map[string]interface{}) Buckets {
	out := newBuckets()
	for key, value := range content {
		class := ClassifyField(key)
		if class != FieldTranslatable {
			out.get(class)[key] = cloneValue(value)
			continue
		}
		switch v := value.(type) {
		case map[string]interface{}:
			sub := Split(v)
			for _, c := range allClasses {
				if m := sub.get(c); len(m) > 0 {
					out.get(c)[key] = m
				}
			}
		case []interface{}:
			splitArray(out, key, v)
		case string:
			out.Translatable[key] = v
		default:
			out.Structural[key] = cloneValue(v)
		}
	}
	return out
}

func splitArray(out Buckets, key string, items []interface{}) {
	parts := map[FieldClass][]interface{}{}
	used := map[FieldClass]bool{}
	for _, c := range allClasses {
		parts[c] = make([]interface{}, len(items))
	}
	for i, item := range items {
		switch v := item.(type) {
		case map[string]interface{}:
			sub := Split(v)
			for _, c := range allClasses {
				parts[c][i] = sub.get(c)
				if len(sub.get(c)) > 0 {
					used[c] = true
				}
			}
		case string:
			parts[FieldTranslatable][i] = v
			used[FieldTranslatable] = true
		default:
			parts[FieldStructural][i] = cloneValue(v)
			used[FieldStructural] = true
		}
	}
	for _, c := range allClasses {
		if used[c] {
			out.get(c)[key] = parts[c]
		}
	}
}

// Merge returns a deep copy of base in which every translatable string leaf
// is replaced by the translation's string at the same path. Arrays merge by
// index; extra translation elements are ignored. Keys missing from base are
// never introduced. Neither argument is modified.
func Merge(base, translation map[string]interface{}) map[string]interface{} {
	if base == nil {
		return map[string]interface{}{}
	}
	return mergeObject(base, translation)
}

func mergeObject(base, translation map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base))
	for key, bv := range base {
		tv, present := translation[key]
		if !present || ClassifyField(key) != FieldTranslatable {
			out[key] = cloneValue(bv)
			continue
		}
		out[key] = mergeValue(bv, tv)
	}
	return out
}

func mergeValue(base, translation interface{}) interface{} {
	switch b := base.(type) {
	case string:
		if s, ok := translation.(string); ok {
			return s
		}
		return b
	case map[string]interface{}:
		if t, ok := translation.(map[string]interface{}); ok {
			return mergeObject(b, t)
		}
	case []interface{}:
		if t, ok := translation.([]interface{}); ok {
			out := make([]interface{}, len(b))
			for i := range b {
				if i < len(t) {
					out[i] = mergeValue(b[i], t[i])
				} else {
					out[i] = cloneValue(b[i])
				}
			}
			return out
		}
	}
	return cloneValue(base)
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return t
	}
}
