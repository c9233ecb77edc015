package plugin

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richiexuetang/zodmon/api"
	"github.com/richiexuetang/zodmon/logging"
	"github.com/richiexuetang/zodmon/transport"
	"github.com/richiexuetang/zodmon/zerrors"
)

var testEndpoint = &api.Endpoint{Method: api.MethodGet, Path: "/test", Alias: "getTest"}

// tagRequest appends tag to the "trace" header so tests can observe order.
func tagRequest(tag string) *Plugin {
	return &Plugin{
		Name: tag,
		Request: func(_ context.Context, _ *api.Endpoint, cfg *transport.Config) (*transport.Config, error) {
			trace, _ := cfg.Header("trace")
			return cfg.SetHeader("trace", trace+tag), nil
		},
	}
}

// tagResponse appends tag to string response data.
func tagResponse(tag string) *Plugin {
	return &Plugin{
		Name: tag,
		Response: func(_ context.Context, _ *api.Endpoint, _ *transport.Config, resp *transport.Response) (*transport.Response, error) {
			out := resp.Clone()
			out.Data = resp.Data.(string) + tag
			return out, nil
		},
	}
}

func mustUse(t *testing.T, r *Registry, f Filter, p *Plugin, prio Priority) ID {
	t.Helper()
	id, err := r.Use(f, p, prio)
	require.NoError(t, err)
	return id
}

func TestRegistry_UseReturnsSequentialIDs(t *testing.T) {
	r := NewRegistry(nil)
	assert.Equal(t, ID(0), mustUse(t, r, Filter{}, tagRequest("a"), Normal))
	assert.Equal(t, ID(1), mustUse(t, r, Filter{}, tagRequest("b"), Normal))
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_UseRejectsInvalid(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Use(Filter{}, nil, Normal)
	require.ErrorIs(t, err, zerrors.ErrConfig)
	assert.Contains(t, err.Error(), "invalid plugin registration")

	_, err = r.Use(Filter{}, tagRequest("a"), Priority(42))
	assert.ErrorIs(t, err, zerrors.ErrConfig)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Eject(t *testing.T) {
	r := NewRegistry(nil)
	first := mustUse(t, r, Filter{}, tagRequest("a"), Normal)
	mustUse(t, r, Filter{}, tagRequest("b"), Normal)

	r.Eject(first)
	r.Eject(first)
	r.Eject(ID(99))
	r.Eject(ID(-1))

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 1, r.Active())

	third := mustUse(t, r, Filter{}, tagRequest("c"), Normal)
	assert.Equal(t, ID(2), third, "ids are never reused")

	cfg, err := r.InterceptRequest(context.Background(), testEndpoint, &transport.Config{})
	require.NoError(t, err)
	assert.Equal(t, "bc", cfg.Headers["trace"])

	infos := r.Plugins()
	require.Len(t, infos, 3)
	assert.True(t, infos[0].Ejected)
	assert.Empty(t, infos[0].Name)
	assert.Equal(t, "b", infos[1].Name)
}

func TestRegistry_RequestOrder(t *testing.T) {
	r := NewRegistry(nil)
	mustUse(t, r, Filter{}, tagRequest("L"), Low)
	mustUse(t, r, Filter{}, tagRequest("H"), High)
	mustUse(t, r, Filter{}, tagRequest("N1"), Normal)
	mustUse(t, r, Filter{}, tagRequest("N2"), Normal)

	orig := &transport.Config{}
	cfg, err := r.InterceptRequest(context.Background(), testEndpoint, orig)
	require.NoError(t, err)
	assert.Equal(t, "HN1N2L", cfg.Headers["trace"])
	assert.Nil(t, orig.Headers, "input config is not modified")
}

func TestRegistry_RequestStopsOnError(t *testing.T) {
	r := NewRegistry(nil)
	boom := errors.New("boom")
	mustUse(t, r, Filter{}, &Plugin{Request: func(context.Context, *api.Endpoint, *transport.Config) (*transport.Config, error) {
		return nil, boom
	}}, High)
	called := false
	mustUse(t, r, Filter{}, &Plugin{Request: func(_ context.Context, _ *api.Endpoint, cfg *transport.Config) (*transport.Config, error) {
		called = true
		return cfg, nil
	}}, Normal)

	_, err := r.InterceptRequest(context.Background(), testEndpoint, &transport.Config{})
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestRegistry_ResponseOrder(t *testing.T) {
	t.Run("same priority runs last registered first", func(t *testing.T) {
		r := NewRegistry(nil)
		mustUse(t, r, Filter{}, tagResponse("1"), Normal)
		mustUse(t, r, Filter{}, tagResponse("2"), Normal)

		resp, err := r.InterceptResponse(context.Background(), testEndpoint, &transport.Config{}, &transport.Response{Data: "test1:"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "test1:21", resp.Data)
	})

	t.Run("tiers run low normal high", func(t *testing.T) {
		r := NewRegistry(nil)
		mustUse(t, r, Filter{}, tagResponse("H"), High)
		mustUse(t, r, Filter{}, tagResponse("N"), Normal)
		mustUse(t, r, Filter{}, tagResponse("L1"), Low)
		mustUse(t, r, Filter{}, tagResponse("L2"), Low)

		resp, err := r.InterceptResponse(context.Background(), testEndpoint, &transport.Config{}, &transport.Response{Data: ""}, nil)
		require.NoError(t, err)
		assert.Equal(t, "L2L1NH", resp.Data)
	})
}

func TestRegistry_ErrorHooks(t *testing.T) {
	fetchErr := errors.New("fetch failed")
	recovered := &transport.Response{Status: 200, Data: "recovered"}

	t.Run("error passes through plugins without error hook", func(t *testing.T) {
		r := NewRegistry(nil)
		mustUse(t, r, Filter{}, tagResponse("x"), Normal)

		resp, err := r.InterceptResponse(context.Background(), testEndpoint, &transport.Config{}, nil, fetchErr)
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, fetchErr)
	})

	t.Run("error hook recovers and later response hooks run", func(t *testing.T) {
		r := NewRegistry(nil)
		mustUse(t, r, Filter{}, tagResponse("!"), Normal)
		mustUse(t, r, Filter{}, &Plugin{Error: func(_ context.Context, _ *api.Endpoint, _ *transport.Config, err error) (*transport.Response, error) {
			assert.ErrorIs(t, err, fetchErr)
			return recovered, nil
		}}, Normal)

		resp, err := r.InterceptResponse(context.Background(), testEndpoint, &transport.Config{}, nil, fetchErr)
		require.NoError(t, err)
		assert.Equal(t, "recovered!", resp.Data)
	})

	t.Run("own response failure is not seen by own error hook", func(t *testing.T) {
		r := NewRegistry(nil)
		hookErr := errors.New("response hook failed")
		errorHookCalls := 0
		mustUse(t, r, Filter{}, &Plugin{
			Response: func(context.Context, *api.Endpoint, *transport.Config, *transport.Response) (*transport.Response, error) {
				return nil, hookErr
			},
			Error: func(_ context.Context, _ *api.Endpoint, _ *transport.Config, err error) (*transport.Response, error) {
				errorHookCalls++
				return nil, err
			},
		}, Normal)

		_, err := r.InterceptResponse(context.Background(), testEndpoint, &transport.Config{}, &transport.Response{}, nil)
		assert.ErrorIs(t, err, hookErr)
		assert.Zero(t, errorHookCalls)
	})
}

func TestRegistry_NilResponseIsAnError(t *testing.T) {
	tests := []struct {
		name   string
		plugin *Plugin
		resp   *transport.Response
		err    error
		want   string
	}{
		{
			name: "response hook",
			plugin: &Plugin{Name: "drop", Response: func(context.Context, *api.Endpoint, *transport.Config, *transport.Response) (*transport.Response, error) {
				return nil, nil
			}},
			resp: &transport.Response{Status: 200},
			want: "configuration error for plugin (value: drop)",
		},
		{
			name: "error hook",
			plugin: &Plugin{Name: "swallow", Error: func(context.Context, *api.Endpoint, *transport.Config, error) (*transport.Response, error) {
				return nil, nil
			}},
			err:  errors.New("down"),
			want: "configuration error for plugin (value: swallow)",
		},
		{
			name:   "fetcher",
			plugin: tagResponse("x"),
			want:   "configuration error for fetcher: returned neither a response nor an error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(nil)
			mustUse(t, r, Filter{}, tt.plugin, Normal)

			resp, err := r.InterceptResponse(context.Background(), testEndpoint, &transport.Config{}, tt.resp, tt.err)
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.ErrorIs(t, err, zerrors.ErrConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRegistry_LogsErrorHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	r := NewRegistry(logger)
	mustUse(t, r, Filter{}, &Plugin{Name: "recover", Error: func(context.Context, *api.Endpoint, *transport.Config, error) (*transport.Response, error) {
		return &transport.Response{}, nil
	}}, Normal)

	_, err := r.InterceptResponse(context.Background(), testEndpoint, &transport.Config{}, nil, errors.New("down"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `msg="plugin error"`)
	assert.Contains(t, buf.String(), "plugin=recover")
	assert.Contains(t, buf.String(), "error=down")
}

func TestRegistry_Filters(t *testing.T) {
	r := NewRegistry(nil)
	mustUse(t, r, ForAlias("getTest"), tagRequest("alias"), Normal)
	mustUse(t, r, ForAlias("other"), tagRequest("other"), Normal)
	mustUse(t, r, ForEndpoint(api.MethodGet, "/test"), tagRequest("path"), Normal)
	mustUse(t, r, ForEndpoint(api.MethodPost, "/test"), tagRequest("post"), Normal)

	cfg, err := r.InterceptRequest(context.Background(), testEndpoint, &transport.Config{})
	require.NoError(t, err)
	assert.Equal(t, "aliaspath", cfg.Headers["trace"])
}

func TestFilter_Matches(t *testing.T) {
	withAlias := &api.Endpoint{Method: api.MethodGet, Path: "/users/:id", Alias: "getUser"}
	noAlias := &api.Endpoint{Method: api.MethodPost, Path: "/users"}

	tests := []struct {
		name   string
		filter Filter
		ep     *api.Endpoint
		want   bool
	}{
		{"empty filter", Filter{}, noAlias, true},
		{"exact method", Filter{Method: Exact("get")}, withAlias, true},
		{"exact method mismatch", Filter{Method: Exact("get")}, noAlias, false},
		{"exact alias absent", Filter{Alias: Exact("getUser")}, noAlias, false},
		{"empty exact never matches", Filter{Alias: Exact("")}, noAlias, false},
		{"pattern path", Filter{Path: Pattern(regexp.MustCompile(`^/users`))}, noAlias, true},
		{"pattern alias absent", Filter{Alias: Pattern(regexp.MustCompile(`.*`))}, noAlias, false},
		{"func sees empty alias", Filter{Alias: MatchFunc(func(s string) bool { return s == "" })}, noAlias, true},
		{"all fields anded", Filter{Method: Exact("get"), Path: Exact("/users")}, withAlias, false},
		{"declared with alias", ForDeclared(withAlias), withAlias, true},
		{"declared without alias", ForDeclared(noAlias), noAlias, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.ep))
		})
	}
}

func TestPriority(t *testing.T) {
	for _, s := range []string{"high", "normal", "low"} {
		p, err := ParsePriority(s)
		require.NoError(t, err)
		assert.Equal(t, s, p.String())
	}
	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, Normal, p)

	_, err = ParsePriority("urgent")
	assert.Error(t, err)
	assert.Equal(t, "Priority(9)", Priority(9).String())
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	r := NewRegistry(nil)
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := r.Use(Filter{}, tagRequest("x"), Normal)
			if !assert.NoError(t, err) {
				return
			}
			if i%2 == 0 {
				r.Eject(id)
			}
			_, err = r.InterceptRequest(context.Background(), testEndpoint, &transport.Config{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, r.Len())
	assert.Equal(t, 10, r.Active())
}
