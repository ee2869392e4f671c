package treeskema

import (
	"errors"
	"fmt"

	"github.com/reoring/treeskema/i18n"
)

// Issue codes.
const (
	CodeRequired    = "required"
	CodeUnknownKey  = "unknown_key"
	CodeInvalidType = "invalid_type"
	CodePredicate   = "predicate_failed"
	CodeCustom      = "custom"
	CodeTooShort    = "too_short"
	CodeTooLong     = "too_long"
	CodeLength      = "length"
	// Loader-side codes; the engine never produces these.
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
)

// ErrorKind groups issue codes into the broad failure classes a caller may
// want to branch on.
type ErrorKind int

const (
	ErrorOther ErrorKind = iota
	ErrorMissingKey
	ErrorUnexpectedKey
	ErrorTypeMismatch
	ErrorPredicateFailed
	ErrorCustomDiagnostic
	ErrorLengthViolation
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorMissingKey:
		return "MissingRequiredKey"
	case ErrorUnexpectedKey:
		return "UnexpectedKey"
	case ErrorTypeMismatch:
		return "TypeMismatch"
	case ErrorPredicateFailed:
		return "PredicateFailed"
	case ErrorCustomDiagnostic:
		return "CustomDiagnostic"
	case ErrorLengthViolation:
		return "LengthViolation"
	default:
		return "Other"
	}
}

// KindOf maps an issue code to its ErrorKind.
func KindOf(code string) ErrorKind {
	switch code {
	case CodeRequired:
		return ErrorMissingKey
	case CodeUnknownKey:
		return ErrorUnexpectedKey
	case CodeInvalidType:
		return ErrorTypeMismatch
	case CodePredicate:
		return ErrorPredicateFailed
	case CodeCustom:
		return ErrorCustomDiagnostic
	case CodeTooShort, CodeTooLong, CodeLength:
		return ErrorLengthViolation
	default:
		return ErrorOther
	}
}

// Issue is the single validation failure reported by Validate. Validation is
// fail-fast, so one Issue describes the whole failure.
type Issue struct {
	Path    Path
	Code    string
	Message string
	Hint    string // Optional: a suggested fix, e.g. the closest declared key.
	Cause   error  // Optional: underlying error.
}

// Error renders e.g. `required at /vmware/host: missing key: 'host'`, with
// the hint appended in parentheses when there is one.
func (it Issue) Error() string {
	msg := it.Message
	if msg == "" {
		msg = i18n.T(it.Code, nil)
	}
	if it.Hint != "" {
		return fmt.Sprintf("%s at %s: %s (%s)", it.Code, it.Path.Pointer(), msg, it.Hint)
	}
	return fmt.Sprintf("%s at %s: %s", it.Code, it.Path.Pointer(), msg)
}

func (it Issue) Unwrap() error { return it.Cause }

// Kind classifies the issue.
func (it Issue) Kind() ErrorKind { return KindOf(it.Code) }

// AsIssue extracts an Issue from err using errors.As.
func AsIssue(err error) (Issue, bool) {
	if err == nil {
		return Issue{}, false
	}
	var it Issue
	if errors.As(err, &it) {
		return it, true
	}
	var pit *Issue
	if errors.As(err, &pit) && pit != nil {
		return *pit, true
	}
	return Issue{}, false
}

func newIssue(at Path, code string, data map[string]string, hint string) Issue {
	return Issue{Path: at, Code: code, Message: i18n.T(code, data), Hint: hint}
}
