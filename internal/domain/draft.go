package domain

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/belovedzguard/beloved-api/pkg/errors"
)

// DraftFlag is a boolean that also accepts its string spelling ("true",
// "false", "1", "0", ...) on the wire.
type DraftFlag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *DraftFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = DraftFlag(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.ErrValidationFailed.WithMessage("isDraft must be a boolean")
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return errors.ErrValidationFailed.WithMessage("isDraft must be a boolean, got %q", s)
	}
	*f = DraftFlag(b)
	return nil
}

// Bool returns the flag's value; a nil flag is false.
func (f *DraftFlag) Bool() bool {
	return f != nil && bool(*f)
}
