package auth

import "testing"

func TestParseToken(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantSig string
		wantErr bool
	}{
		{name: "well formed", raw: "aaa.bbb.ccc", wantSig: "ccc"},
		{name: "empty", raw: "", wantErr: true},
		{name: "two segments", raw: "aaa.bbb", wantErr: true},
		{name: "four segments", raw: "a.b.c.d", wantErr: true},
		{name: "empty signature", raw: "aaa.bbb.", wantErr: true},
		{name: "not a token", raw: "hello world", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tok, err := ParseToken(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseToken(%q) succeeded, want error", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseToken(%q): %v", tc.raw, err)
			}
			if tok.Signature != tc.wantSig || tok.Raw != tc.raw {
				t.Fatalf("got %+v, want signature %q", tok, tc.wantSig)
			}
		})
	}
}
