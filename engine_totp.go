package authcore

import "time"

// GenerateTOTPSecret returns a fresh MFA secret as unpadded base32 text.
// The caller persists it against the enrolling user; it must never be
// logged in plaintext.
//
// GenerateTOTPSecret may return an error when the system randomness source fails.
func (e *Engine) GenerateTOTPSecret() (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	return e.totp.GenerateSecret()
}

// TOTPCode computes the code for secret at the given instant. Enrollment
// flows use it to confirm the user's authenticator before enabling MFA.
//
// TOTPCode may return an error when the secret decodes to nothing or the configured algorithm is unsupported.
func (e *Engine) TOTPCode(secret string, at time.Time) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	return e.totp.CodeAt(secret, at)
}

// VerifyTOTP reports whether code matches secret at the given instant,
// accepting the configured skew window either side. It never returns an
// error; malformed input reads as a mismatch.
func (e *Engine) VerifyTOTP(secret, code string, at time.Time) bool {
	if e == nil {
		return false
	}
	return e.totp.Verify(secret, code, at)
}

// ProvisionURI builds the otpauth:// URI authenticator apps import during
// enrollment.
func (e *Engine) ProvisionURI(secret, account string) string {
	if e == nil {
		return ""
	}
	return e.totp.ProvisionURI(secret, account)
}
