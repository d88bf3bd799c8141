//go:build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// cleanupServer manages a running cleanup backend process.
type cleanupServer struct {
	cmd     *exec.Cmd
	dataDir string
	address string
	apiKey  string
	logFile string
}

// startCleanup launches the cleanup binary and waits for it to become healthy.
// The server is configured entirely through environment variables.
func startCleanup(t *testing.T) *cleanupServer {
	t.Helper()

	if cleanupBin == "" {
		t.Skip("cleanup binary not available (set CLEANUP_BIN or add to PATH)")
	}

	s := &cleanupServer{
		dataDir: t.TempDir(),
		apiKey:  "e2e-test-api-key",
	}
	s.launch(t, "cleanup.log")
	return s
}

func (s *cleanupServer) env(port int) []string {
	return append(os.Environ(),
		fmt.Sprintf("CLEANUP_PORT=%d", port),
		"CLEANUP_DB_PATH="+filepath.Join(s.dataDir, "cleanup.db"),
		"CLEANUP_API_KEY="+s.apiKey,
		"CLEANUP_ENV_FILE="+filepath.Join(s.dataDir, "missing.env"),
		"CLEANUP_CONFIG_PATH="+filepath.Join(s.dataDir, "missing.yaml"),
		"CLEANUP_SNAPSHOT_BUCKET=",
		"CLEANUP_LOG_FORMAT=json",
	)
}

func (s *cleanupServer) launch(t *testing.T, logName string) {
	t.Helper()

	port := freePort(t)
	s.address = fmt.Sprintf("127.0.0.1:%d", port)
	s.logFile = filepath.Join(s.dataDir, logName)

	lf, err := os.Create(s.logFile)
	if err != nil {
		t.Fatalf("create log file: %v", err)
	}

	cmd := exec.Command(cleanupBin)
	cmd.Env = s.env(port)
	cmd.Stdout = lf
	cmd.Stderr = lf
	if err := cmd.Start(); err != nil {
		lf.Close()
		t.Fatalf("start cleanup: %v", err)
	}
	s.cmd = cmd

	t.Cleanup(func() {
		s.stop()
		lf.Close()
	})

	if err := s.waitHealthy(10 * time.Second); err != nil {
		t.Fatalf("cleanup not healthy: %v\nlog:\n%s", err, s.logs())
	}
}

func (s *cleanupServer) stop() {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Signal(os.Interrupt)
		_ = s.cmd.Wait()
		s.cmd = nil
	}
}

// restart stops the server and starts it again on the same database.
func (s *cleanupServer) restart(t *testing.T) {
	t.Helper()
	s.stop()
	time.Sleep(200 * time.Millisecond) // allow port release
	s.launch(t, "cleanup-restart.log")
}

func (s *cleanupServer) baseURL() string {
	return "http://" + s.address
}

func (s *cleanupServer) logs() string {
	b, _ := os.ReadFile(s.logFile)
	return string(b)
}

func (s *cleanupServer) waitHealthy(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := s.baseURL() + "/api/v1/health"

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("cleanup not healthy after %s", timeout)
}

// health fetches the health document.
func (s *cleanupServer) health(t *testing.T) map[string]any {
	t.Helper()
	resp, err := http.Get(s.baseURL() + "/api/v1/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("health decode: %v", err)
	}
	return body
}

// cli runs a client subcommand of the binary against the server.
func (s *cleanupServer) cli(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return s.cliAs(t, s.apiKey, args...)
}

// cliAs runs a client subcommand with an explicit API key.
func (s *cleanupServer) cliAs(t *testing.T, apiKey string, args ...string) (string, error) {
	t.Helper()
	args = append(args, "--url", s.baseURL(), "--api-key", apiKey)
	cmd := exec.Command(cleanupBin, args...)
	cmd.Env = s.env(0)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// mustCLI runs a client subcommand and fails the test on error.
func (s *cleanupServer) mustCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := s.cli(t, args...)
	if err != nil {
		t.Fatalf("cleanup %s: %v\noutput: %s", strings.Join(args, " "), err, out)
	}
	return out
}

// backup runs the offline backup command on the server's database.
func (s *cleanupServer) backup(t *testing.T) map[string]string {
	t.Helper()
	cmd := exec.Command(cleanupBin, "backup", "--json")
	cmd.Env = s.env(0)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("cleanup backup: %v", err)
	}
	var result map[string]string
	if err := json.Unmarshal(out, &result); err != nil {
		t.Fatalf("backup output %q: %v", out, err)
	}
	return result
}

// freePort returns a free TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
