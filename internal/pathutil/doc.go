// Package pathutil parses and expands endpoint path templates.
//
// A template such as "/users/:id/posts/:postId" names its parameters with a
// leading ':'. [ParseTemplate] parses one template; [Cached] does the same but
// keeps the result for later lookups; [Template.Expand] substitutes
// URL-escaped values:
//
//	t, err := pathutil.ParseTemplate("/users/:id")
//	if err != nil {
//	    return err
//	}
//	p, err := t.Expand(map[string]any{"id": 7}) // "/users/7"
package pathutil
