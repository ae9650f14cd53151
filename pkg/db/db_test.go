package db

import "testing"

func TestDebugHook(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"", false},
		{"0", false},
		{"1", true},
		{"2", true},
	}

	for _, tt := range tests {
		t.Run("BUNDEBUG="+tt.env, func(t *testing.T) {
			t.Setenv("BUNDEBUG", tt.env)
			if got := debugHook() != nil; got != tt.want {
				t.Errorf("debugHook() enabled = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	sqlite := Config{Driver: DriverSQLite, Path: "fina.db"}
	if got := sqlite.DSN(); got != "fina.db" {
		t.Errorf("sqlite DSN = %q", got)
	}

	pg := Config{Driver: DriverPostgres, Host: "h", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	if got, want := pg.DSN(), "postgres://u:p@h:5432/d?sslmode=disable"; got != want {
		t.Errorf("postgres DSN = %q, want %q", got, want)
	}
}
