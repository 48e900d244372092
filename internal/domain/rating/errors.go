package rating

import "errors"

// ErrInvalidParams is returned when a Params set cannot drive the model.
var ErrInvalidParams = errors.New("invalid rating parameters")
