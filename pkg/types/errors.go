package types

import "net/http"

// HTTPError lets a domain error carry the HTTP status code it maps to.
type HTTPError interface {
	error
	StatusCode() int
	Kind() string
}

type domainError struct {
	kind    string
	status  int
	message string
}

func (e domainError) Error() string    { return e.message }
func (e domainError) StatusCode() int  { return e.status }
func (e domainError) Kind() string     { return e.kind }

// ErrModelNotFound is returned when an alias or canonical name is unknown.
func ErrModelNotFound(name string) error {
	return domainError{kind: "ModelNotFound", status: http.StatusNotFound, message: "model not found: " + name}
}

// IsModelNotFound reports whether err is a ModelNotFound error.
func IsModelNotFound(err error) bool { return kindIs(err, "ModelNotFound") }

// ErrModeMismatch is returned when a path is incompatible with a model's mode.
func ErrModeMismatch(path string, mode Mode) error {
	return domainError{kind: "ModeMismatch", status: http.StatusBadRequest, message: "path " + path + " incompatible with mode " + string(mode)}
}

// IsModeMismatch reports whether err is a ModeMismatch error.
func IsModeMismatch(err error) bool { return kindIs(err, "ModeMismatch") }

// ErrNoUsableDevice is returned when no launch variant's required devices are online.
func ErrNoUsableDevice(model string) error {
	return domainError{kind: "NoUsableDevice", status: http.StatusServiceUnavailable, message: "no usable device for model: " + model}
}

// IsNoUsableDevice reports whether err is a NoUsableDevice error.
func IsNoUsableDevice(err error) bool { return kindIs(err, "NoUsableDevice") }

// ErrInsufficientMemory is returned when admission fails even after idle eviction.
func ErrInsufficientMemory(model string) error {
	return domainError{kind: "InsufficientMemory", status: http.StatusServiceUnavailable, message: "insufficient memory to admit model: " + model}
}

// IsInsufficientMemory reports whether err is an InsufficientMemory error.
func IsInsufficientMemory(err error) bool { return kindIs(err, "InsufficientMemory") }

// ErrStartTimeout is returned when the health probe does not pass in time.
func ErrStartTimeout(model string) error {
	return domainError{kind: "StartTimeout", status: http.StatusServiceUnavailable, message: "start timed out for model: " + model}
}

// IsStartTimeout reports whether err is a StartTimeout error.
func IsStartTimeout(err error) bool { return kindIs(err, "StartTimeout") }

// ErrBackendUnavailable is returned when a model is Failed; reason is the recorded cause.
func ErrBackendUnavailable(model, reason string) error {
	msg := "backend unavailable for model " + model
	if reason != "" {
		msg += ": " + reason
	}
	return domainError{kind: "BackendUnavailable", status: http.StatusServiceUnavailable, message: msg}
}

// IsBackendUnavailable reports whether err is a BackendUnavailable error.
func IsBackendUnavailable(err error) bool { return kindIs(err, "BackendUnavailable") }

// ErrBackendError is returned when forwarding fails but the model is not
// terminal. Not one of the explicitly 503'd kinds, so it falls to the
// catch-all 500 rather than a more specific gateway status.
func ErrBackendError(reason string) error {
	return domainError{kind: "BackendError", status: http.StatusInternalServerError, message: "backend error: " + reason}
}

// IsBackendError reports whether err is a BackendError error.
func IsBackendError(err error) bool { return kindIs(err, "BackendError") }

// ErrTierConflict is returned on ambiguous or overlapping tier definitions.
func ErrTierConflict(msg string) error {
	return domainError{kind: "TierConflict", status: http.StatusBadRequest, message: msg}
}

// IsTierConflict reports whether err is a TierConflict error.
func IsTierConflict(err error) bool { return kindIs(err, "TierConflict") }

// ErrLastTierDeletion is returned when deleting the only remaining tier.
func ErrLastTierDeletion(model string) error {
	return domainError{kind: "LastTierDeletion", status: http.StatusBadRequest, message: "cannot delete the last tier for model: " + model}
}

// IsLastTierDeletion reports whether err is a LastTierDeletion error.
func IsLastTierDeletion(err error) bool { return kindIs(err, "LastTierDeletion") }

// ErrPricingInvalid is returned for malformed pricing configuration.
func ErrPricingInvalid(msg string) error {
	return domainError{kind: "PricingInvalid", status: http.StatusBadRequest, message: msg}
}

// IsPricingInvalid reports whether err is a PricingInvalid error.
func IsPricingInvalid(err error) bool { return kindIs(err, "PricingInvalid") }

// ErrInvalidRequest is returned for a malformed or incomplete request body.
func ErrInvalidRequest(msg string) error {
	return domainError{kind: "InvalidRequest", status: http.StatusBadRequest, message: msg}
}

// IsInvalidRequest reports whether err is an InvalidRequest error.
func IsInvalidRequest(err error) bool { return kindIs(err, "InvalidRequest") }

// ErrOrphanProtected is returned when attempting to drop a catalogued model.
func ErrOrphanProtected(model string) error {
	return domainError{kind: "OrphanProtected", status: http.StatusBadRequest, message: "model is still catalogued, not an orphan: " + model}
}

// IsOrphanProtected reports whether err is an OrphanProtected error.
func IsOrphanProtected(err error) bool { return kindIs(err, "OrphanProtected") }

func kindIs(err error, kind string) bool {
	de, ok := err.(domainError)
	return ok && de.kind == kind
}
