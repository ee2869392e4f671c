package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected", "key" or "value").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in English dictionary.
type dictTranslator struct{}

func (dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch code {
	case "invalid_type":
		msg = "invalid type"
		if e := data["expected"]; e != "" {
			msg = "expected " + e
		}
		if g := data["got"]; g != "" {
			msg += ", got " + g
		}
		if v := data["value"]; v != "" {
			msg += " (" + v + ")"
		}
		return msg
	case "required":
		if k := data["key"]; k != "" {
			return "missing key: '" + k + "'"
		}
		return "required property missing"
	case "unknown_key":
		if k := data["key"]; k != "" {
			return "wrong key '" + k + "'"
		}
		return "unknown key"
	case "predicate_failed":
		if n := data["name"]; n != "" {
			return n + "(" + data["value"] + ") should evaluate to True"
		}
		return "predicate failed"
	case "too_short":
		return withBound("too short", "min", data)
	case "too_long":
		return withBound("too long", "max", data)
	case "length":
		if n := data["name"]; n != "" {
			return n + "(" + data["count"] + ") should evaluate to True"
		}
		return "length constraint failed"
	case "custom":
		return "custom validation failed"
	case "duplicate_key":
		return "duplicate key"
	case "parse_error":
		return "parse error"
	}
	return code
}

func withBound(base, name string, data map[string]string) string {
	b := data[name]
	if b == "" {
		return base
	}
	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString(" (")
	sb.WriteString(name)
	sb.WriteString(" ")
	sb.WriteString(b)
	if c := data["count"]; c != "" {
		sb.WriteString(", got ")
		sb.WriteString(c)
	}
	sb.WriteString(")")
	return sb.String()
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{}
)

// SetTranslator replaces the Translator implementation. nil restores the
// built-in dictionary.
func SetTranslator(tr Translator) {
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
