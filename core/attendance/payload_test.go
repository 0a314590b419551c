package attendance

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestBuildPayload(t *testing.T) {
	key := SessionKey{Year: "2026", Term: "T1", SubjectID: "math"}
	want := "RATIBA|2026|T1|math|abc123"
	if got := BuildPayload("RATIBA", key, "abc123"); got != want {
		t.Errorf("BuildPayload() = %q, want %q", got, want)
	}
}

func TestParsePayload(t *testing.T) {
	wantKey := SessionKey{Year: "2026", Term: "T1", SubjectID: "math"}

	tests := []struct {
		name     string
		payload  string
		wantKey  SessionKey
		wantCode string
		wantErr  bool
	}{
		{name: "round trip", payload: "RATIBA|2026|T1|math|abc123", wantKey: wantKey, wantCode: "abc123"},
		{name: "too few fields", payload: "RATIBA|2026|T1|math", wantErr: true},
		{name: "too many fields", payload: "RATIBA|2026|T1|math|abc|extra", wantErr: true},
		{name: "wrong marker", payload: "LOL|2026|T1|math|abc123", wantErr: true},
		{name: "empty", payload: "", wantErr: true},
		{name: "blank segment", payload: "RATIBA|2026||math|abc123", wantErr: true},
		{name: "slash in segment", payload: "RATIBA|2026|T1|ma/th|abc123", wantErr: true},
		{name: "colon in segment", payload: "RATIBA|2026|T1|math|ab:c", wantErr: true},
		{name: "control char in segment", payload: "RATIBA|2026|T1|ma\tth|abc123", wantErr: true},
		{name: "oversized segment", payload: "RATIBA|2026|T1|" + strings.Repeat("x", 201) + "|abc123", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, code, err := ParsePayload("RATIBA", tt.payload)
			if tt.wantErr {
				if errors.Cause(err) != ErrInvalidPayload {
					t.Fatalf("ParsePayload() error = %v, want %v", err, ErrInvalidPayload)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePayload() failed: %v", err)
			}
			if key != tt.wantKey || code != tt.wantCode {
				t.Errorf("ParsePayload() = (%v, %q), want (%v, %q)", key, code, tt.wantKey, tt.wantCode)
			}
		})
	}
}

func TestValidSessionKey(t *testing.T) {
	tests := []struct {
		name string
		key  SessionKey
		want bool
	}{
		{name: "valid", key: SessionKey{Year: "2026", Term: "T1", SubjectID: "math"}, want: true},
		{name: "blank year", key: SessionKey{Term: "T1", SubjectID: "math"}},
		{name: "pipe in term", key: SessionKey{Year: "2026", Term: "T|1", SubjectID: "math"}},
		{name: "whitespace only subject", key: SessionKey{Year: "2026", Term: "T1", SubjectID: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidSessionKey(tt.key); got != tt.want {
				t.Errorf("ValidSessionKey(%v) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestSessionKey_String(t *testing.T) {
	key := SessionKey{Year: "2026", Term: "T1", SubjectID: "math"}
	if got := key.String(); got != "2026:T1:math" {
		t.Errorf("String() = %q, want %q", got, "2026:T1:math")
	}
}
