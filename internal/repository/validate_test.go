package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateProperties(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{`{}`, ""},
		{`[]`, ""},
		{`{"a": [1, {"b": null}]}`, ""},
		{"not json", "invalid JSON: properties must be an object or array"},
		{`"string"`, "invalid JSON: properties must be an object or array"},
		{`true`, "invalid JSON: properties must be an object or array"},
		{`{"a":1}}`, "invalid JSON"},
		{`[1,2`, "invalid JSON"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateProperties(tt.in), "input %q", tt.in)
	}
}

func TestValidateName_CountsCharacters(t *testing.T) {
	assert.Empty(t, ValidateName(strings.Repeat("日", MaxNameLen)))
	assert.Equal(t, "name too long", ValidateName(strings.Repeat("日", MaxNameLen+1)))
	assert.Equal(t, "name required", ValidateName(" \t\n"))
}

func TestValidateNode_Nil(t *testing.T) {
	err := ValidateNode(nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\tmp`, escapeLike(`c:\tmp`))
}
