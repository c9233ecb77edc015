package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveAlias(t *testing.T) {
	tests := []struct {
		ep   Endpoint
		want string
	}{
		{ep: Endpoint{Method: MethodGet, Path: "/users"}, want: "getUsers"},
		{ep: Endpoint{Method: MethodGet, Path: "/users/:id/posts"}, want: "getUsersByIdPosts"},
		{ep: Endpoint{Method: MethodPost, Path: "/user-groups/:groupId"}, want: "postUserGroupsByGroupId"},
		{ep: Endpoint{Method: MethodDelete, Path: "/"}, want: "delete"},
		{ep: Endpoint{Method: MethodGet, Path: "/users", Alias: "listUsers"}, want: "listUsers"},
	}
	for _, tt := range tests {
		t.Run(tt.ep.Key(), func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveAlias(&tt.ep))
		})
	}
}
