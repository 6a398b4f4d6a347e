package bonk

import "fmt"

// Balance bounds accepted by the server.
const (
	MinBalance = -100
	MaxBalance = 100
)

// ValidateUsername checks a name against the game's rules before it is
// ever sent: ASCII only, 2 to 15 characters, letters, digits, underscores
// and spaces, no leading space. Account names additionally may not start
// with an underscore or contain consecutive spaces.
func ValidateUsername(name string, guest bool) error {
	for i := 0; i < len(name); i++ {
		if name[i] > 0x7F {
			return &APIError{Type: ErrUsernameMustBeASCII}
		}
	}
	if len(name) < 2 {
		return &APIError{Type: ErrUsernameTooShort}
	}
	if len(name) > 15 {
		return &APIError{Type: ErrUsernameTooLong}
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '_', c == ' ':
		default:
			return &APIError{Type: ErrUsernameInvalidChars}
		}
	}
	if name[0] == ' ' {
		return &APIError{Type: ErrUsernameInvalidStart}
	}
	if !guest {
		if name[0] == '_' {
			return &APIError{Type: ErrUsernameInvalidStart}
		}
		for i := 1; i < len(name); i++ {
			if name[i] == ' ' && name[i-1] == ' ' {
				return &APIError{Type: ErrUsernameInvalidChars}
			}
		}
	}
	return nil
}

// ValidateBalance checks a handicap value against the server's range.
func ValidateBalance(balance int) error {
	if balance < MinBalance || balance > MaxBalance {
		return fmt.Errorf("bonk: balance %d outside [%d, %d]", balance, MinBalance, MaxBalance)
	}
	return nil
}
