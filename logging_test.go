package walletauth

import "testing"

func TestLoggerConstruction(t *testing.T) {
	for _, debug := range []bool{false, true} {
		prod, err := NewProductionLogger(debug)
		if err != nil {
			t.Fatalf("NewProductionLogger(%v): %v", debug, err)
		}
		if prod == nil {
			t.Fatal("expected logger")
		}
		prod.Info("production logger ready")

		dev, err := NewDevelopmentLogger(debug)
		if err != nil {
			t.Fatalf("NewDevelopmentLogger(%v): %v", debug, err)
		}
		if dev == nil {
			t.Fatal("expected logger")
		}
		dev.Debug("development logger ready")
	}
}

func TestSyncLogger_NilLogger(t *testing.T) {
	if err := SyncLogger(nil); err != nil {
		t.Fatalf("SyncLogger(nil): %v", err)
	}
}
