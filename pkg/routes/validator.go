package routes

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/vango-dev/deeplink/internal/errors"
)

var (
	uuidRegex     = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	idRegex       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)
	slugRegex     = regexp.MustCompile(`^[A-Za-z0-9]+(?:-[A-Za-z0-9]+)*$`)
)

// ValidateUUID validates that a string is a valid UUID.
func ValidateUUID(value string) error {
	if !uuidRegex.MatchString(value) {
		return fmt.Errorf("invalid UUID: %s", value)
	}
	return nil
}

// ValidateInt validates that a string is a valid integer.
func ValidateInt(value string) error {
	if _, err := strconv.ParseInt(value, 10, 64); err != nil {
		return fmt.Errorf("invalid integer: %s", value)
	}
	return nil
}

// ValidateParam validates a parameter value against a schema type name.
func ValidateParam(value, paramType string) error {
	switch paramType {
	case "int", "int64", "int32":
		return ValidateInt(value)
	case "uint", "uint64", "uint32":
		if _, err := strconv.ParseUint(value, 10, 64); err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
	case "uuid":
		return ValidateUUID(value)
	case "id":
		if !idRegex.MatchString(value) {
			return fmt.Errorf("invalid id: %s", value)
		}
	case "username":
		if !usernameRegex.MatchString(value) {
			return fmt.Errorf("invalid username: %s", value)
		}
	case "slug":
		if !slugRegex.MatchString(value) {
			return fmt.Errorf("invalid slug: %s", value)
		}
	case "string", "":
		// All strings are valid
	default:
		return errors.New("DL204").WithDetailf("type %q", paramType)
	}
	return nil
}

// knownTypes are the schema type names ValidateParam understands.
var knownTypes = map[string]bool{
	"": true, "string": true,
	"int": true, "int64": true, "int32": true,
	"uint": true, "uint64": true, "uint32": true,
	"uuid": true, "id": true, "username": true, "slug": true,
}

// Schema maps parameter names to type names, e.g. {"id": "uuid"}.
// Every listed parameter is required.
type Schema map[string]string

// Validator compiles the schema into a ParamsValidator.
// Unknown type names are reported up front rather than at match time.
func (s Schema) Validator() (ParamsValidator, error) {
	names := make([]string, 0, len(s))
	for name, typ := range s {
		if !knownTypes[typ] {
			return nil, errors.New("DL204").WithDetailf("param %q has type %q", name, typ)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	return func(params map[string]string) error {
		for _, name := range names {
			v, ok := params[name]
			if !ok {
				return fmt.Errorf("missing param %q", name)
			}
			if err := ValidateParam(v, s[name]); err != nil {
				return fmt.Errorf("param %q: %w", name, err)
			}
		}
		return nil
	}, nil
}

// MustValidator is like Validator but panics on an unknown type.
func (s Schema) MustValidator() ParamsValidator {
	v, err := s.Validator()
	if err != nil {
		panic(err)
	}
	return v
}

// All combines validators; every one must accept.
func All(validators ...ParamsValidator) ParamsValidator {
	return func(params map[string]string) error {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if err := v(params); err != nil {
				return err
			}
		}
		return nil
	}
}
