package tournament_integration_tests

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"

	"github.com/axi1912/Easy-Customs/integration_tests/testutils"
)

var testEnv *testutils.TestEnvironment

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping tournament integration tests in -short mode")
		os.Exit(0)
	}

	env, err := testutils.NewTestEnvironment(context.Background())
	if err != nil {
		log.Fatalf("failed to set up test environment: %v", err)
	}
	testEnv = env

	code := m.Run()
	testEnv.Cleanup()
	os.Exit(code)
}

func resetDatabase(t *testing.T) {
	t.Helper()
	if err := testutils.CleanupDatabase(context.Background(), testEnv.DB); err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}
}
