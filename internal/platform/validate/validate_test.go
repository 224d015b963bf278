// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/refcatalog/internal/platform/apperr"
	"github.com/taibuivan/refcatalog/internal/platform/validate"
	"github.com/taibuivan/refcatalog/pkg/pointer"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		hasError bool
	}{
		{"valid_string", "The Hobbit", false},
		{"empty_string", "", true},
		{"whitespace_only", " \t ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required("name", tt.value)

			if !tt.hasError {
				assert.False(t, v.HasErrors())
				assert.NoError(t, v.Err())
				return
			}

			ae := apperr.As(v.Err())
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeValidation, ae.Code)
			assert.Equal(t, "name", ae.Details[0].Field)
		})
	}
}

func TestValidator_MaxLen_CountsRunes(t *testing.T) {
	v := &validate.Validator{}
	v.MaxLen("name", "東京物語", 4)
	assert.False(t, v.HasErrors())

	v.MaxLen("name", strings.Repeat("é", 5), 4)
	assert.True(t, v.HasErrors())
}

func TestValidator_OptionalMaxLen(t *testing.T) {
	v := &validate.Validator{}
	v.OptionalMaxLen("language", nil, 2)
	v.OptionalMaxLen("language", pointer.To("en"), 2)
	assert.False(t, v.HasErrors())

	v.OptionalMaxLen("language", pointer.To("english"), 2)
	assert.True(t, v.HasErrors())
}

/*
TestValidator_PositiveID checks optional identifier validation.
*/
func TestValidator_PositiveID(t *testing.T) {
	tests := []struct {
		name    string
		id      *int64
		isValid bool
	}{
		{"absent", nil, true},
		{"positive", pointer.To(int64(3)), true},
		{"zero", pointer.To(int64(0)), false},
		{"negative", pointer.To(int64(-1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.PositiveID("publisherId", tt.id)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("name", "").                              // Fails
		MaxLen("name", "abcdef", 3).                       // Fails
		PositiveID("book.seriesId", pointer.To(int64(0))). // Fails
		Custom("referenceTypeId", false, "unused").        // Passes
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	assert.Len(t, ae.Details, 3)
	assert.Equal(t, "Validation failed", ae.Message)
}

func TestErrInvalidJSON(t *testing.T) {
	assert.Equal(t, apperr.CodeValidation, validate.ErrInvalidJSON.Code)
}
