package authcore

import (
	"strings"
	"testing"
	"time"

	"github.com/hostelops/authcore/internal/otpcodec"
)

func rfcManager(digits int, algorithm string, skew int) *totpManager {
	return newTOTPManager(TOTPConfig{
		Issuer:      "authcore",
		Digits:      digits,
		Period:      30,
		Algorithm:   algorithm,
		Skew:        skew,
		SecretBytes: 20,
	})
}

func TestHOTPRFC4226Vectors(t *testing.T) {
	secret := []byte("12345678901234567890")
	want := []string{
		"755224", "287082", "359152", "969429", "338314",
		"254676", "287922", "162583", "399871", "520489",
	}

	for counter, code := range want {
		got, err := hotpCode(secret, int64(counter), 6, "SHA1")
		if err != nil {
			t.Fatalf("counter %d: %v", counter, err)
		}
		if got != code {
			t.Fatalf("counter %d: got %s, want %s", counter, got, code)
		}
	}
}

func TestTOTPVerifyRFCVectorsSHA1(t *testing.T) {
	m := rfcManager(8, "SHA1", 0)
	secret := otpcodec.Encode([]byte("12345678901234567890"))
	cases := []struct {
		ts   int64
		code string
	}{
		{59, "94287082"},
		{1111111109, "07081804"},
		{1111111111, "14050471"},
		{1234567890, "89005924"},
		{2000000000, "69279037"},
		{20000000000, "65353130"},
	}

	for _, tc := range cases {
		if !m.Verify(secret, tc.code, time.Unix(tc.ts, 0)) {
			t.Fatalf("SHA1 vector failed at t=%d", tc.ts)
		}
	}
}

func TestTOTPVerifyRFCVectorsSHA256(t *testing.T) {
	m := rfcManager(8, "SHA256", 0)
	secret := otpcodec.Encode([]byte("12345678901234567890123456789012"))
	cases := []struct {
		ts   int64
		code string
	}{
		{59, "46119246"},
		{1111111109, "68084774"},
		{1111111111, "67062674"},
		{1234567890, "91819424"},
		{2000000000, "90698825"},
		{20000000000, "77737706"},
	}

	for _, tc := range cases {
		if !m.Verify(secret, tc.code, time.Unix(tc.ts, 0)) {
			t.Fatalf("SHA256 vector failed at t=%d", tc.ts)
		}
	}
}

func TestTOTPVerifyRFCVectorsSHA512(t *testing.T) {
	m := rfcManager(8, "SHA512", 0)
	secret := otpcodec.Encode([]byte("1234567890123456789012345678901234567890123456789012345678901234"))
	cases := []struct {
		ts   int64
		code string
	}{
		{59, "90693936"},
		{1111111109, "25091201"},
		{1111111111, "99943326"},
		{1234567890, "93441116"},
		{2000000000, "38618901"},
		{20000000000, "47863826"},
	}

	for _, tc := range cases {
		if !m.Verify(secret, tc.code, time.Unix(tc.ts, 0)) {
			t.Fatalf("SHA512 vector failed at t=%d", tc.ts)
		}
	}
}

func TestTOTPRoundTripFreshSecret(t *testing.T) {
	m := rfcManager(6, "SHA1", 1)

	secret, err := m.GenerateSecret()
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}

	now := time.Now()
	code, err := m.CodeAt(secret, now)
	if err != nil {
		t.Fatalf("code: %v", err)
	}
	if !m.Verify(secret, code, now) {
		t.Fatal("freshly generated code did not verify")
	}
}

func TestTOTPDriftWindowBoundaries(t *testing.T) {
	secret := otpcodec.Encode([]byte("12345678901234567890"))
	base := time.Unix(1234567890, 0)

	withSkew := rfcManager(6, "SHA1", 1)
	noSkew := rfcManager(6, "SHA1", 0)

	code, err := withSkew.CodeAt(secret, base)
	if err != nil {
		t.Fatalf("code: %v", err)
	}

	// One step of drift either side passes with skew=1.
	if !withSkew.Verify(secret, code, base.Add(30*time.Second)) {
		t.Fatal("code rejected one step late with skew=1")
	}
	if !withSkew.Verify(secret, code, base.Add(-30*time.Second)) {
		t.Fatal("code rejected one step early with skew=1")
	}

	// Two steps out fails with skew=0.
	if noSkew.Verify(secret, code, base.Add(60*time.Second)) {
		t.Fatal("stale code accepted two steps out with skew=0")
	}
}

func TestTOTPVerifyNeverErrors(t *testing.T) {
	m := rfcManager(6, "SHA1", 1)
	now := time.Now()

	// Garbage secrets and codes must read as mismatches, not failures.
	inputs := []struct{ secret, code string }{
		{"", "123456"},
		{"!!!!", "123456"},
		{"JBSWY3DPEHPK3PXP", ""},
		{"JBSWY3DPEHPK3PXP", "abcdef"},
		{"JBSWY3DPEHPK3PXP", "12345"},
		{"JBSWY3DPEHPK3PXP", " 123456 7"},
		{"====", "000000"},
	}
	for _, in := range inputs {
		if m.Verify(in.secret, in.code, now) {
			t.Fatalf("verify(%q, %q) unexpectedly true", in.secret, in.code)
		}
	}
}

func TestTOTPCodeRejectsEmptySecret(t *testing.T) {
	m := rfcManager(6, "SHA1", 1)
	if _, err := m.CodeAt("!!!!", time.Now()); err == nil {
		t.Fatal("expected error for unrecoverable secret")
	}
}

func TestProvisionURI(t *testing.T) {
	m := rfcManager(6, "SHA1", 1)
	uri := m.ProvisionURI("JBSWY3DPEHPK3PXP", "alice@example.com")

	for _, want := range []string{
		"otpauth://totp/",
		"secret=JBSWY3DPEHPK3PXP",
		"issuer=authcore",
		"period=30",
		"digits=6",
		"algorithm=SHA1",
	} {
		if !strings.Contains(uri, want) {
			t.Fatalf("uri %q missing %q", uri, want)
		}
	}
}
