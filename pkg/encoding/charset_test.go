package encoding

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", Raw},
		{"RAW", Raw},
		{"utf8", UTF8},
		{"Shift_JIS", ShiftJIS},
		{"sjis", ShiftJIS},
		{"euc-kr", EUCKR},
		{"cp1252", Windows1252},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}
			if d.Name() != tt.want {
				t.Errorf("Name = %q, want %q", d.Name(), tt.want)
			}
		})
	}

	if _, err := Lookup("klingon"); !errors.Is(err, ErrUnknownCharset) {
		t.Errorf("got %v, want ErrUnknownCharset", err)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		charset string
		text    string
	}{
		{ShiftJIS, "リムサ・ロミンサ"},
		{EUCKR, "프론테라"},
		{Windows1252, "café"},
	}

	for _, tt := range tests {
		t.Run(tt.charset, func(t *testing.T) {
			d, err := Lookup(tt.charset)
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}
			raw, err := d.Encode(tt.text)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if string(raw) == tt.text {
				t.Fatal("encoding did not change the bytes")
			}
			got, err := d.Decode(string(raw))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got != tt.text {
				t.Errorf("got %q, want %q", got, tt.text)
			}
		})
	}
}

func TestDecode_RawAndUTF8(t *testing.T) {
	bad := "ab\xffc"

	raw, _ := Lookup(Raw)
	if got, _ := raw.Decode(bad); got != bad {
		t.Errorf("raw changed the text: %q", got)
	}

	u, _ := Lookup(UTF8)
	got, err := u.Decode(bad)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != "ab�c" {
		t.Errorf("got %q, want replacement char", got)
	}
	if u.DecodeOrRaw("plain") != "plain" {
		t.Error("DecodeOrRaw changed valid text")
	}
}

func TestTrimNull(t *testing.T) {
	if got := string(TrimNull([]byte("abc\x00def"))); got != "abc" {
		t.Errorf("got %q, want %q", got, "abc")
	}
	if got := string(TrimNull([]byte("abc"))); got != "abc" {
		t.Errorf("got %q, want %q", got, "abc")
	}
}

func TestDecode_ByName(t *testing.T) {
	got, err := Decode("windows-1252", "caf\xe9")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != "café" {
		t.Errorf("got %q, want %q", got, "café")
	}

	if _, err := Decode("klingon", "x"); !errors.Is(err, ErrUnknownCharset) {
		t.Errorf("got %v, want ErrUnknownCharset", err)
	}
}
