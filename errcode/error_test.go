package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errTest = New(99, 1, "test", "error.test.failed", "test failed")

func TestLayeredError_Basics(t *testing.T) {
	assert.Equal(t, 990001, errTest.Code())
	assert.Equal(t, "test", errTest.Module())
	assert.Equal(t, "error.test.failed", errTest.MsgKey())
	assert.Equal(t, "test failed", errTest.Error())
	assert.Empty(t, errTest.Data())
}

func TestLayeredError_WrapAndIs(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := errTest.Wrap(cause).WithData("server", "1.2.3.4:8848")

	assert.Equal(t, "test failed: connection refused", wrapped.Error())
	assert.True(t, errors.Is(wrapped, errTest))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, "1.2.3.4:8848", wrapped.Data()["server"])

	// original untouched
	assert.Nil(t, errTest.Unwrap())
	assert.Empty(t, errTest.Data())

	outer := fmt.Errorf("boot: %w", wrapped)
	var le *LayeredError
	assert.True(t, errors.As(outer, &le))
	assert.Equal(t, 990001, le.Code())

	assert.Same(t, errTest, errTest.Wrap(nil))
}

func TestLayeredError_WithMsgf(t *testing.T) {
	e := errTest.WithMsgf("data-id %s missing", "a")
	assert.Equal(t, "data-id a missing", e.Message())
	assert.Equal(t, "test failed", errTest.Message())
	assert.Contains(t, e.Wrap(errors.New("x")).String(), "cause:x")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(New(98, 1, "m", "k1", "one"))
	r.Register(New(98, 1, "m", "k1", "one again"))
	assert.Equal(t, 1, r.Count())

	assert.Panics(t, func() {
		r.Register(New(98, 1, "m", "k2", "conflict"))
	})
}
