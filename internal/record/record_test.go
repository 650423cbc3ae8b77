package record

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFingerprint_Stable(t *testing.T) {
	a := LogRecord{
		Timestamp: "2025-08-29T10:00:00Z",
		UserID:    json.Number("42"),
		Message:   "login",
		Metadata:  map[string]any{"b": "2", "a": "1"},
	}
	// Same content, different metadata key insertion order and extra
	// non-identity fields.
	b := LogRecord{
		Timestamp: "2025-08-29T10:00:00Z",
		UserID:    json.Number("42"),
		Message:   "login",
		Metadata:  map[string]any{"a": "1", "b": "2"},
		Level:     "info",
		Service:   "be",
		SessionID: "sess-9",
	}

	if Fingerprint(&a) != Fingerprint(&b) {
		t.Errorf("identical identity fields must produce equal fingerprints: %s != %s",
			Fingerprint(&a), Fingerprint(&b))
	}

	if len(Fingerprint(&a)) != FingerprintLength {
		t.Errorf("expected fingerprint length %d, got %d", FingerprintLength, len(Fingerprint(&a)))
	}
}

func TestFingerprint_Diverges(t *testing.T) {
	base := LogRecord{
		Timestamp: "2025-08-29T10:00:00Z",
		UserID:    "42",
		Message:   "login",
		Metadata:  map[string]any{"k": "v"},
	}

	variants := map[string]LogRecord{
		"timestamp": {Timestamp: "2025-08-29T10:00:01Z", UserID: "42", Message: "login", Metadata: map[string]any{"k": "v"}},
		"userId":    {Timestamp: "2025-08-29T10:00:00Z", UserID: "43", Message: "login", Metadata: map[string]any{"k": "v"}},
		"message":   {Timestamp: "2025-08-29T10:00:00Z", UserID: "42", Message: "logout", Metadata: map[string]any{"k": "v"}},
		"metadata":  {Timestamp: "2025-08-29T10:00:00Z", UserID: "42", Message: "login", Metadata: map[string]any{"k": "w"}},
	}

	for name, v := range variants {
		if Fingerprint(&base) == Fingerprint(&v) {
			t.Errorf("changing %s must change the fingerprint", name)
		}
	}
}

func TestUserIDString(t *testing.T) {
	tests := []struct {
		name string
		id   any
		want string
	}{
		{"absent", nil, ""},
		{"string", "abc", "abc"},
		{"number", json.Number("1234"), "1234"},
		{"float", 12.5, "12.5"},
	}

	for _, tt := range tests {
		r := LogRecord{UserID: tt.id}
		if got := r.UserIDString(); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestCanonicalMetadata(t *testing.T) {
	r := LogRecord{Metadata: map[string]any{"z": "1", "a": json.Number("2")}}
	if got := r.CanonicalMetadata(); got != `{"a":2,"z":"1"}` {
		t.Errorf("expected sorted compact JSON, got %s", got)
	}

	empty := LogRecord{}
	if got := empty.CanonicalMetadata(); got != "{}" {
		t.Errorf("expected {} for absent metadata, got %s", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2025-08-29T10:00:00Z", true},
		{"2025-08-29T10:00:00.123+07:00", true},
		{"2025-08-29 10:00:00.123", true},
		{"2025-08-29 10:00:00", true},
		{"not-a-timestamp", false},
		{"", false},
	}

	for _, tt := range tests {
		_, err := ParseTimestamp(tt.in)
		if tt.ok && err != nil {
			t.Errorf("ParseTimestamp(%q): unexpected error %v", tt.in, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseTimestamp(%q): expected error", tt.in)
		}
	}
}

func TestLocalDate(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)

	// 22:00 UTC on the 29th is 05:00 on the 30th in UTC+7.
	r := LogRecord{Timestamp: "2025-08-29T22:00:00Z"}
	d, err := r.LocalDate(loc)
	if err != nil {
		t.Fatalf("LocalDate: %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.August || d.Day() != 30 {
		t.Errorf("expected 2025-08-30, got %s", d.Format("2006-01-02"))
	}
}

func TestParseRaw(t *testing.T) {
	raw := `{"timestamp":"2025-08-29T10:00:00Z","category":"user_action","message":"login","userId":42,"metadata":{"ip":"10.0.0.1"},"extra":"dropped"}`

	rec, err := ParseRaw(raw, "", "user_action")
	if err != nil {
		t.Fatalf("ParseRaw: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Message != "login" {
		t.Errorf("expected message login, got %q", rec.Message)
	}
	if rec.UserIDString() != "42" {
		t.Errorf("expected userId 42, got %q", rec.UserIDString())
	}
	if rec.Metadata["ip"] != "10.0.0.1" {
		t.Errorf("expected metadata to round-trip, got %v", rec.Metadata)
	}
}

func TestParseRaw_RowTimestampOverrides(t *testing.T) {
	raw := `{"timestamp":"2025-08-29T10:00:00Z","category":"user_action","message":"x"}`

	rec, err := ParseRaw(raw, "2025-08-29 10:00:01.000", "user_action")
	if err != nil {
		t.Fatalf("ParseRaw: %v", err)
	}
	if rec.Timestamp != "2025-08-29 10:00:01.000" {
		t.Errorf("row timestamp must win, got %q", rec.Timestamp)
	}
}

func TestParseRaw_OtherCategory(t *testing.T) {
	rec, err := ParseRaw(`{"category":"system","message":"boot"}`, "", "user_action")
	if err != nil {
		t.Fatalf("ParseRaw: %v", err)
	}
	if rec != nil {
		t.Error("non-matching category must be filtered out")
	}
}

func TestParseRaw_Malformed(t *testing.T) {
	if _, err := ParseRaw(`not json at all`, "", "user_action"); err == nil {
		t.Error("expected error for malformed message")
	}
}
