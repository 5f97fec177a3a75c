package service_test

import (
	"testing"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/testutil"
)

func TestSystemService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestServices(t, db)

	if err := svc.System.CheckHealth(); err != nil {
		t.Errorf("CheckHealth() error: %v", err)
	}
	if svc.System.CheckVersion() == "" {
		t.Error("CheckVersion() returned empty version")
	}
	version, err := svc.System.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() error: %v", err)
	}
	if version != 2 {
		t.Errorf("SchemaVersion() = %d, want 2", version)
	}
}
