package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexibleString accepts a JSON string or number. Spreadsheet-backed forms
// send room numbers such as 101 either way.
type FlexibleString string

func (fs *FlexibleString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*fs = FlexibleString(strings.TrimSpace(s))
	default:
		var num json.Number
		if err := json.Unmarshal(trimmed, &num); err != nil {
			return fmt.Errorf("expected string or number, got %s", trimmed)
		}
		*fs = FlexibleString(num.String())
	}
	return nil
}

func (fs FlexibleString) String() string {
	return string(fs)
}
