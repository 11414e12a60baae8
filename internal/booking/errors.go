package booking

import "errors"

// ErrInvalidPolicy is returned by Save for a policy that cannot be stored.
var ErrInvalidPolicy = errors.New("invalid booking policy")
