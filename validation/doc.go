// Package validation checks query parameters and config sections.
//
// Request structs are validated from `validate` tags; field names in the
// messages come from the form or json tag:
//
//	type getQuery struct {
//	    Expiry int `form:"expiry" validate:"gt=600,lte=3024000"`
//	}
//	err := validation.Validate(q) // INVALID_INPUT, "expiry: must be greater than 600"
//
// Config sections use a Collector so every failing key is reported at once:
//
//	err := validation.New().
//	    Required("gateway.default_folder", s.DefaultFolder).
//	    Between("gateway.default_expiry", s.DefaultExpiry, 600, 3024000).
//	    Err()
package validation
