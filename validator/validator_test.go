package validator

import (
	"errors"
	"testing"

	"github.com/KOMKZ/go-yogan-nacos/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInvalid = errcode.New(99, 1, "test", "error.test.invalid", "invalid")

type item struct {
	Name string
}

func (i item) Validate() error {
	return validation.ValidateStruct(&i, validation.Field(&i.Name, validation.Required))
}

type settings struct {
	Addr  string
	Items []item
}

func (s settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Addr, validation.Required),
		validation.Field(&s.Items),
	)
}

type plain struct{ err error }

func (p plain) Validate() error { return p.err }

func TestValidate_FieldErrors(t *testing.T) {
	err := Validate(settings{Items: []item{{Name: "ok"}, {}}}, errInvalid)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errInvalid))

	var layered *errcode.LayeredError
	require.True(t, errors.As(err, &layered))
	fields := layered.Data()["fields"].(map[string]string)
	assert.Contains(t, fields, "Addr")
	assert.Contains(t, fields, "Items.1.Name")
	assert.Len(t, fields, 2)
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(settings{Addr: "x"}, errInvalid))
}

func TestValidate_PlainError(t *testing.T) {
	cause := errors.New("boom")
	err := Validate(plain{err: cause}, errInvalid)
	assert.True(t, errors.Is(err, cause))

	var layered *errcode.LayeredError
	require.True(t, errors.As(err, &layered))
	assert.Nil(t, layered.Data()["fields"])
}
