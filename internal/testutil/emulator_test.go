package testutil

import (
	"os"
	"testing"
)

func TestSetupEmulatorSetsHost(t *testing.T) {
	SetupEmulator(t)
	if got := os.Getenv("FIRESTORE_EMULATOR_HOST"); got != FirestoreEmulatorHost {
		t.Fatalf("expected %s, got %q", FirestoreEmulatorHost, got)
	}
}
