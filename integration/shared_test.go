//go:build integration || database

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedFosdashPath holds the path to a shared fosdash binary built once for all tests.
	sharedFosdashPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

const complaintsCSV = `Firm Name,Year,Period,Complaints,Upheld,Closed within 3 days,Closed within 8 weeks
Acme Bank,2021,H1,100,40,50,90
Acme Bank,2023,H1,100,20,60,95
Beta Insurance,2021,H1,200,40,30,80
Beta Insurance,2023,H1,200,60,30,80
Broken Row,twenty,H1,10,1,5,5
`

const casesCSV = `reference,firm_name,product,decision_date,outcome,summary
DRN-0001,Acme Bank,Mortgages,2023-05-01,upheld,Arrears fees
DRN-0002,Acme Bank,Current accounts,2023-06-12,not upheld,Card declined
DRN-0003,Beta Insurance,Home insurance,2023-07-20,upheld,Claim delay
`

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getFosdashBinary returns the path to the fosdash binary, building it once if needed.
func getFosdashBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "fosdash-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		fosdashPath := filepath.Join(tempDir, "fosdash")
		buildCmd := exec.Command("go", "build", "-o", fosdashPath, "./cmd/fosdash")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build fosdash: %v\n%s", err, out))
		}

		sharedFosdashPath = fosdashPath
	})

	return sharedFosdashPath
}

// writeFixtures writes the complaint and decision CSVs into a test directory.
func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	complaints := filepath.Join(dir, "complaints.csv")
	cases := filepath.Join(dir, "cases.csv")
	if err := os.WriteFile(complaints, []byte(complaintsCSV), 0o600); err != nil {
		t.Fatalf("failed to write complaints fixture: %v", err)
	}
	if err := os.WriteFile(cases, []byte(casesCSV), 0o600); err != nil {
		t.Fatalf("failed to write cases fixture: %v", err)
	}
	return complaints, cases
}

// runFosdash runs the binary with env added to the environment and returns its stdout.
func runFosdash(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getFosdashBinary(), args...)
	cmd.Dir = t.TempDir() // keep .fosdash.yaml and .env lookups away from the repo
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
		return stdout.String(), err
	}
	return stdout.String(), nil
}
