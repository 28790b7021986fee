package testutil

import "testing"

func TestPostgresURLSkipsWithoutEnv(t *testing.T) {
	t.Setenv(PostgresURLEnv, "")
	var url string
	ok := t.Run("inner", func(t *testing.T) {
		url = PostgresURL(t)
		t.Fatal("PostgresURL did not skip")
	})
	if !ok {
		t.Fatal("inner test failed instead of skipping")
	}
	if url != "" {
		t.Fatalf("url = %q, want empty", url)
	}
}

func TestPostgresURLReturnsEnv(t *testing.T) {
	t.Setenv("HABITGRID_TEST_SKIP_NETWORK", "")
	t.Setenv(PostgresURLEnv, " postgres://localhost/habits ")
	if got := PostgresURL(t); got != "postgres://localhost/habits" {
		t.Fatalf("PostgresURL = %q", got)
	}
}
