package schema

// applyDefaults fills absent values from schema defaults. data must be
// normalized; maps and slices are modified in place. The boolean reports
// whether anything was filled.
func applyDefaults(data any, s *Schema) (any, bool) {
	if s == nil {
		return data, false
	}
	if data == nil {
		if s.Default == nil {
			return nil, false
		}
		return Normalize(s.Default), true
	}

	changed := false
	switch d := data.(type) {
	case map[string]any:
		for name, prop := range s.Properties {
			if prop == nil {
				continue
			}
			filled, ok := applyDefaults(d[name], prop)
			if !ok {
				continue
			}
			d[name] = filled
			changed = true
		}
	case []any:
		if s.Items != nil {
			for i, item := range d {
				if filled, ok := applyDefaults(item, s.Items); ok {
					d[i] = filled
					changed = true
				}
			}
		}
	}

	for _, sub := range s.AllOf {
		var ok bool
		if data, ok = applyDefaults(data, sub); ok {
			changed = true
		}
	}
	return data, changed
}
