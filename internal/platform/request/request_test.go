// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/refcatalog/internal/platform/apperr"
	requestutil "github.com/taibuivan/refcatalog/internal/platform/request"
	"github.com/taibuivan/refcatalog/internal/platform/validate"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name": "Dune"}`, false},
		{"malformed", `{"name": `, true},
		{"unknown_field", `{"name": "Dune", "publisher_id": 3}`, true},
		{"wrong_type", `{"name": 42}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var target payload
			err := requestutil.DecodeJSON(request, &target)
			if tt.wantErr {
				assert.Same(t, validate.ErrInvalidJSON, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Dune", target.Name)
		})
	}
}

func TestDecodeOptionalJSON(t *testing.T) {
	type payload struct {
		Name *string `json:"name"`
	}

	t.Run("empty_body", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(""))

		var target payload
		require.NoError(t, requestutil.DecodeOptionalJSON(request, &target))
		assert.Nil(t, target.Name)
	})

	t.Run("fields", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"name": "Dune"}`))

		var target payload
		require.NoError(t, requestutil.DecodeOptionalJSON(request, &target))
		assert.Equal(t, "Dune", *target.Name)
	})

	t.Run("malformed", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"name"`))

		var target payload
		assert.Same(t, validate.ErrInvalidJSON, requestutil.DecodeOptionalJSON(request, &target))
	})
}

/*
TestInt64Param checks identifier parsing from the chi route context.
*/
func TestInt64Param(t *testing.T) {
	tests := []struct {
		raw   string
		want  int64
		valid bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-7", 0, false},
		{"abc", 0, false},
		{"9223372036854775808", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			routeContext := chi.NewRouteContext()
			routeContext.URLParams.Add("id", tt.raw)
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request = request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, routeContext))

			id, err := requestutil.Int64Param(request, "id")
			if !tt.valid {
				assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestBoolQuery(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/?authors=true&tags=1&series=YES&publisher=false&magazine=", nil)

	assert.True(t, requestutil.BoolQuery(request, "authors"))
	assert.True(t, requestutil.BoolQuery(request, "tags"))
	assert.True(t, requestutil.BoolQuery(request, "series"))
	assert.False(t, requestutil.BoolQuery(request, "publisher"))
	assert.False(t, requestutil.BoolQuery(request, "magazine"))
	assert.False(t, requestutil.BoolQuery(request, "featureTags"))
}
