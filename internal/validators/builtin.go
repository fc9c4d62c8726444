package validators

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/paramstore/internal/domain"
)

// Names of the built-in validators.
const (
	MinValue      = "MinValueValidator"
	MaxValue      = "MaxValueValidator"
	MinLength     = "MinLengthValidator"
	MaxLength     = "MaxLengthValidator"
	Regex         = "RegexValidator"
	Email         = "EmailValidator"
	URL           = "URLValidator"
	Slug          = "validate_slug"
	IPv4          = "validate_ipv4_address"
	IPv6          = "validate_ipv6_address"
	FileExtension = "FileExtensionValidator"
)

type builtin struct {
	label       string
	constructor Constructor
}

var (
	validate = validator.New()

	slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

	defaultURLSchemes = []string{"http", "https", "ftp", "ftps"}

	builtins = map[string]builtin{
		MinValue:      {"Minimum value", Factory(minValue)},
		MaxValue:      {"Maximum value", Factory(maxValue)},
		MinLength:     {"Minimum length", Factory(minLength)},
		MaxLength:     {"Maximum length", Factory(maxLength)},
		Regex:         {"Regular expression", Factory(regexValidator)},
		Email:         {"Email validation", Factory(emailValidator)},
		URL:           {"URL validation", Factory(urlValidator)},
		Slug:          {"Slug validation", Func(validateSlug)},
		IPv4:          {"IPv4 address validation", Func(validateIPv4)},
		IPv6:          {"IPv6 address validation", Func(validateIPv6)},
		FileExtension: {"File extension validation", Factory(fileExtension)},
	}
)

// Builtin returns the built-in constructor registered under name.
func Builtin(name string) (Constructor, bool) {
	b, ok := builtins[name]
	return b.constructor, ok
}

func minValue(p Params) (Predicate, error) {
	limit, err := p.Number("limit_value")
	if err != nil {
		return nil, err
	}
	return func(v any) error {
		n, ok := Number(v)
		if !ok {
			return domain.NewValidationError("min_value", fmt.Sprintf("%v is not a number", v))
		}
		if n.LessThan(limit) {
			return domain.NewValidationError("min_value",
				fmt.Sprintf("Ensure this value is greater than or equal to %s.", limit))
		}
		return nil
	}, nil
}

func maxValue(p Params) (Predicate, error) {
	limit, err := p.Number("limit_value")
	if err != nil {
		return nil, err
	}
	return func(v any) error {
		n, ok := Number(v)
		if !ok {
			return domain.NewValidationError("max_value", fmt.Sprintf("%v is not a number", v))
		}
		if n.GreaterThan(limit) {
			return domain.NewValidationError("max_value",
				fmt.Sprintf("Ensure this value is less than or equal to %s.", limit))
		}
		return nil
	}, nil
}

func minLength(p Params) (Predicate, error) {
	limit, err := p.Int("limit_value")
	if err != nil {
		return nil, err
	}
	return func(v any) error {
		n, ok := length(v)
		if !ok {
			return domain.NewValidationError("min_length", fmt.Sprintf("%T has no length", v))
		}
		if n < limit {
			return domain.NewValidationError("min_length",
				fmt.Sprintf("Ensure this value has at least %d characters (it has %d).", limit, n))
		}
		return nil
	}, nil
}

func maxLength(p Params) (Predicate, error) {
	limit, err := p.Int("limit_value")
	if err != nil {
		return nil, err
	}
	return func(v any) error {
		n, ok := length(v)
		if !ok {
			return domain.NewValidationError("max_length", fmt.Sprintf("%T has no length", v))
		}
		if n > limit {
			return domain.NewValidationError("max_length",
				fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", limit, n))
		}
		return nil
	}, nil
}

func regexValidator(p Params) (Predicate, error) {
	if !p.Has("regex") {
		return nil, fmt.Errorf("%w: missing %q", ErrInvalidParams, "regex")
	}
	pattern, err := p.String("regex", "")
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: bad regex: %v", ErrInvalidParams, err)
	}
	message, err := p.String("message", "Enter a valid value.")
	if err != nil {
		return nil, err
	}
	code, err := p.String("code", "invalid")
	if err != nil {
		return nil, err
	}
	inverse, err := p.Bool("inverse_match", false)
	if err != nil {
		return nil, err
	}
	return func(v any) error {
		if re.MatchString(stringOf(v)) == inverse {
			return domain.NewValidationError(code, message)
		}
		return nil
	}, nil
}

func emailValidator(p Params) (Predicate, error) {
	message, err := p.String("message", "Enter a valid email address.")
	if err != nil {
		return nil, err
	}
	return func(v any) error {
		s := stringOf(v)
		if s == "" || validate.Var(s, "email") != nil {
			return domain.NewValidationError("invalid", message)
		}
		return nil
	}, nil
}

func urlValidator(p Params) (Predicate, error) {
	schemes, ok, err := p.Strings("schemes")
	if err != nil {
		return nil, err
	}
	if !ok {
		schemes = defaultURLSchemes
	}
	message, err := p.String("message", "Enter a valid URL.")
	if err != nil {
		return nil, err
	}
	return func(v any) error {
		s := stringOf(v)
		if s == "" || validate.Var(s, "url") != nil {
			return domain.NewValidationError("invalid", message)
		}
		u, err := url.Parse(s)
		if err != nil || u.Host == "" || !containsFold(schemes, u.Scheme) {
			return domain.NewValidationError("invalid", message)
		}
		return nil
	}, nil
}

func validateSlug(v any) error {
	if !slugPattern.MatchString(stringOf(v)) {
		return domain.NewValidationError("invalid",
			"Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}
	return nil
}

func validateIPv4(v any) error {
	if validate.Var(stringOf(v), "required,ipv4") != nil {
		return domain.NewValidationError("invalid", "Enter a valid IPv4 address.")
	}
	return nil
}

func validateIPv6(v any) error {
	if validate.Var(stringOf(v), "required,ipv6") != nil {
		return domain.NewValidationError("invalid", "Enter a valid IPv6 address.")
	}
	return nil
}

func fileExtension(p Params) (Predicate, error) {
	allowed, ok, err := p.Strings("allowed_extensions")
	if err != nil {
		return nil, err
	}
	return func(v any) error {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(stringOf(v)), "."))
		if !ok || containsFold(allowed, ext) {
			return nil
		}
		return domain.NewValidationError("invalid_extension",
			fmt.Sprintf("File extension %q is not allowed. Allowed extensions are: %s.",
				ext, strings.Join(allowed, ", ")))
	}, nil
}

func length(v any) (int, bool) {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x), true
	case []string:
		return len(x), true
	case []any:
		return len(x), true
	case map[string]any:
		return len(x), true
	case fmt.Stringer:
		return utf8.RuneCountInString(x.String()), true
	}
	return 0, false
}

func stringOf(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
