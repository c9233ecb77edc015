package api

import (
	"fmt"
	"strings"
)

// Method is an HTTP verb as used in endpoint descriptions (lower case).
type Method string

// HTTP Method Constants
const (
	MethodGet    Method = "get"
	MethodHead   Method = "head"
	MethodPost   Method = "post"
	MethodPut    Method = "put"
	MethodPatch  Method = "patch"
	MethodDelete Method = "delete"
)

// QueryMethods are safe verbs that carry no body by default.
var QueryMethods = []Method{MethodGet, MethodHead}

// MutationMethods are verbs that may carry a request body.
var MutationMethods = []Method{MethodPost, MethodPut, MethodPatch, MethodDelete}

// Methods lists every supported verb, query verbs first.
var Methods = append(append([]Method{}, QueryMethods...), MutationMethods...)

// ParseMethod normalizes s to a supported Method.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unsupported http method %q", s)
	}
	return m, nil
}

// Valid reports whether m is one of the supported verbs.
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// IsQuery reports whether m is a query verb.
func (m Method) IsQuery() bool {
	return m == MethodGet || m == MethodHead
}

// IsMutation reports whether m is a mutation verb.
func (m Method) IsMutation() bool {
	return m.Valid() && !m.IsQuery()
}

// HTTP returns the upper-case form expected by net/http.
func (m Method) HTTP() string {
	return strings.ToUpper(string(m))
}

func (m Method) String() string {
	return string(m)
}
