package patch

import "testing"

func TestParseIdentity(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    Identity
		wantErr bool
	}{
		"simple":       {in: "A U Thor <author@example.com>", want: Identity{Name: "A U Thor", Email: "author@example.com"}},
		"missingEmail": {in: "A U Thor", wantErr: true},
		"unclosed":     {in: "A U Thor <author@example.com", wantErr: true},
		"emptyName":    {in: "<author@example.com>", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseIdentity(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseDateUnix(t *testing.T) {
	d := ParseDate("1609459200")
	if !d.IsParsed() {
		t.Fatalf("expected parsed date for unix timestamp")
	}
}

func TestParseDateUnparseable(t *testing.T) {
	d := ParseDate("not a date")
	if d.IsParsed() {
		t.Fatalf("expected unparsed date")
	}
	if d.Raw != "not a date" {
		t.Fatalf("raw date not preserved: %q", d.Raw)
	}
}
