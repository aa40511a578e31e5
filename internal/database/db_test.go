package database

import (
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	cfg := Config{User: "app", Pass: "s3cret", Host: "db.internal", Port: "3306", Name: "talenthub"}
	dsn := cfg.dsn()

	for _, want := range []string{
		"app:s3cret@tcp(db.internal:3306)/talenthub",
		"parseTime=true",
		"charset=utf8mb4",
	} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("dsn %q missing %q", dsn, want)
		}
	}
}

func TestDSNNoPassword(t *testing.T) {
	cfg := Config{User: "app", Host: "localhost", Port: "3307", Name: "talenthub"}
	dsn := cfg.dsn()

	if !strings.HasPrefix(dsn, "app@tcp(localhost:3307)/talenthub") {
		t.Fatalf("dsn %q should omit the password separator", dsn)
	}
}
