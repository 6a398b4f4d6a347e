package bonk

import "fmt"

// RateLimitPong is the status code the server sends when a ping reply was
// throttled. It is bookkeeping, not an error condition.
const RateLimitPong = "rate_limit_pong"

// ErrorType classifies the error codes returned by the bonk.io API and
// game server. One type can cover several wire codes.
type ErrorType int

const (
	ErrUndefined ErrorType = iota
	ErrRateLimited
	ErrHostChangeRateLimited
	ErrPassword
	ErrUsernameInvalid
	ErrNotHost
	ErrInvalidBalance
	ErrRoomNotFound
	ErrNewHostNotPresent
	ErrAvatarDataInvalid
	ErrMapUnpublished
	ErrNotFaved

	// Username validation failures raised locally before any request.
	ErrUsernameMustBeASCII
	ErrUsernameTooShort
	ErrUsernameTooLong
	ErrUsernameInvalidChars
	ErrUsernameInvalidStart
)

// errorCodes maps every known wire code onto its type.
var errorCodes = map[string]ErrorType{
	"ratelimited":              ErrRateLimited,
	"rate_limit":               ErrRateLimited,
	"host change rate limited": ErrHostChangeRateLimited,
	"password":                 ErrPassword,
	"username_invalid":         ErrUsernameInvalid,
	"username_fail":            ErrUsernameInvalid,
	"invalid guest name":       ErrUsernameInvalid,
	"not_host":                 ErrNotHost,
	"invalid_balance":          ErrInvalidBalance,
	"roomnotfound":             ErrRoomNotFound,
	"room_not_found":           ErrRoomNotFound,
	"new_host_not_present":     ErrNewHostNotPresent,
	"avatar_data_invalid":      ErrAvatarDataInvalid,
	"map_unpublished":          ErrMapUnpublished,
	"not_faved":                ErrNotFaved,
}

// ErrorTypeFromCode resolves a wire code; unknown codes map to
// ErrUndefined rather than failing.
func ErrorTypeFromCode(code string) ErrorType {
	if t, ok := errorCodes[code]; ok {
		return t
	}
	return ErrUndefined
}

func (t ErrorType) String() string {
	switch t {
	case ErrRateLimited:
		return "rate_limited"
	case ErrHostChangeRateLimited:
		return "host_change_rate_limited"
	case ErrPassword:
		return "password"
	case ErrUsernameInvalid:
		return "username_invalid"
	case ErrNotHost:
		return "not_host"
	case ErrInvalidBalance:
		return "invalid_balance"
	case ErrRoomNotFound:
		return "room_not_found"
	case ErrNewHostNotPresent:
		return "new_host_not_present"
	case ErrAvatarDataInvalid:
		return "avatar_data_invalid"
	case ErrMapUnpublished:
		return "map_unpublished"
	case ErrNotFaved:
		return "not_faved"
	case ErrUsernameMustBeASCII:
		return "username_must_be_ascii"
	case ErrUsernameTooShort:
		return "username_too_short"
	case ErrUsernameTooLong:
		return "username_too_long"
	case ErrUsernameInvalidChars:
		return "username_invalid_chars"
	case ErrUsernameInvalidStart:
		return "username_invalid_start"
	}
	return "undefined"
}

// APIError is an error response from the bonk.io API or game server.
// Code preserves the exact wire code for logging.
type APIError struct {
	Type ErrorType
	Code string
}

func NewAPIError(code string) *APIError {
	return &APIError{Type: ErrorTypeFromCode(code), Code: code}
}

func (e *APIError) Error() string {
	if e.Code != "" && e.Code != e.Type.String() {
		return fmt.Sprintf("bonk: api error %s (%s)", e.Type, e.Code)
	}
	return fmt.Sprintf("bonk: api error %s", e.Type)
}

// Is lets errors.Is match two API errors by type.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Type == e.Type
}

// criticalStatusCodes are the join/create failures after which the server
// tears the connection down; the client must treat them as fatal.
var criticalStatusCodes = map[string]struct{}{
	"room_not_found":       {},
	"room_full":            {},
	"banned":               {},
	"no_client_entry":      {},
	"already_in_this_room": {},
	"join_rate_limited":    {},
	"password_wrong":       {},
	"invalid_params":       {},
	"players_xp_too_high":  {},
	"players_xp_too_low":   {},
	"guests_not_allowed":   {},
	"avatar_data_invalid":  {},
}

// CriticalStatus reports whether a status code ends the session.
func CriticalStatus(code string) bool {
	_, ok := criticalStatusCodes[code]
	return ok
}
