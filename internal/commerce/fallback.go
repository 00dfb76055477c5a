package commerce

import "strings"

// fieldFallback names an optional input field that may be stripped and the
// error signature that identifies a rejection of that field.
type fieldFallback struct {
	field     string
	signature string
}

// optionalFieldFallbacks is evaluated top-down against the error returned by a
// profile-adjacent mutation. The first entry whose signature matches and whose
// field is present in the input triggers a single retry with the field removed.
// The platform rejects some optional fields (phone numbers most often) with
// region-specific validation the client cannot predict; dropping the field is
// preferable to failing the whole mutation.
var optionalFieldFallbacks = []fieldFallback{
	{field: "phone", signature: "phone"},
	{field: "acceptsMarketing", signature: "marketing"},
}

// withFieldFallback runs do with input and, on a matching field-level
// validation error, retries exactly once with the offending optional field
// stripped. Any other error, and the retry's own error, propagate unchanged.
func withFieldFallback(input map[string]any, do func(map[string]any) error) error {
	err := do(input)
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	for _, fb := range optionalFieldFallbacks {
		if _, present := input[fb.field]; !present {
			continue
		}
		if !strings.Contains(msg, fb.signature) {
			continue
		}

		trimmed := make(map[string]any, len(input))
		for k, v := range input {
			if k != fb.field {
				trimmed[k] = v
			}
		}
		return do(trimmed)
	}

	return err
}
