// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/refcatalog/pkg/pointer"
)

func TestToAndVal(t *testing.T) {
	p := pointer.To("Shueisha")
	assert.Equal(t, "Shueisha", *p)
	assert.Equal(t, "Shueisha", pointer.Val(p))

	var missing *int64
	assert.Equal(t, int64(0), pointer.Val(missing))
}
