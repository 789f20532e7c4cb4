package db

import (
	"context"
	"testing"
)

func TestInitPostgresNoDSN(t *testing.T) {
	// Should not panic or fatal, just log and return
	InitPostgres(context.Background(), "")
	if Pool != nil {
		t.Fatalf("pool should stay nil without a DSN")
	}
}
