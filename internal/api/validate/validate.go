package validate

import (
	"regexp"
	"strings"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

// local format 0XXXXXXXXX or already-international 256XXXXXXXXX
var phoneRe = regexp.MustCompile(`^(0|256)\d{9}$`)

func Phone(field, value string) *ErrField {
	if !phoneRe.MatchString(strings.TrimSpace(value)) {
		return &ErrField{Field: field, Msg: "invalid phone number"}
	}
	return nil
}
