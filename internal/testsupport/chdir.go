package testsupport

import (
	"os"
	"testing"
)

// Chdir changes the working directory to dir for the duration of the test,
// restoring the original directory during cleanup.
func Chdir(t testing.TB, dir string) {
	t.Helper()

	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatalf("restore working directory %s: %v", oldwd, err)
		}
	})
}
