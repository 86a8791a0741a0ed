package orders

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrFlowerNotFound = errors.New("flower not found")
	ErrUnknownAuthor  = errors.New("author does not exist")
)

// ValidationError carries per-field messages keyed by the payload's wire names,
// e.g. "full_name" or "order_flower_data[1].quantity".
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid fields: %s", strings.Join(names, ", "))
}
