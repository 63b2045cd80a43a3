package channel

import (
	"fmt"
	"strconv"
	"strings"
)

// IdentifierParseError reports a malformed identifier received from outside.
type IdentifierParseError struct {
	Kind  string
	Value string
	Err   error
}

func (e *IdentifierParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Kind, e.Value, e.Err)
}

func (e *IdentifierParseError) Unwrap() error { return e.Err }

// ParseSnowflake parses a platform id: a non-zero unsigned 64-bit decimal.
func ParseSnowflake(kind, value string) (uint64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, &IdentifierParseError{Kind: kind, Value: value, Err: fmt.Errorf("empty")}
	}
	id, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, &IdentifierParseError{Kind: kind, Value: value, Err: err}
	}
	if id == 0 {
		return 0, &IdentifierParseError{Kind: kind, Value: value, Err: fmt.Errorf("zero id")}
	}
	return id, nil
}
