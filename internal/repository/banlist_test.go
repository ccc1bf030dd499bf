package repository

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseBanListFormats(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"sequence", "- Q1\n- Q2\n", []string{"Q1", "Q2"}},
		{"keyed", "athlets:\n  - Q3\n", []string{"Q3"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBanList([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseBanList error = %v", err)
			}
			got := b.IDs()
			if len(got) != len(tt.want) {
				t.Fatalf("IDs = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("IDs = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestLoadBanList(t *testing.T) {
	b, err := LoadBanList(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadBanList(missing) error = %v", err)
	}
	if b.Contains("Q1") {
		t.Fatalf("empty ban list contains Q1")
	}

	path := filepath.Join(t.TempDir(), "ban_list.yaml")
	if err := os.WriteFile(path, []byte("athlets: [Q11860]\n"), 0o600); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
	b, err = LoadBanList(path)
	if err != nil {
		t.Fatalf("LoadBanList error = %v", err)
	}
	if !b.Contains("Q11860") {
		t.Fatalf("ban list misses Q11860")
	}

	if err := os.WriteFile(path, []byte("athlets: {broken"), 0o600); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
	if _, err := LoadBanList(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
