package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_chaoslearn/internal/engine"
	"github.com/anatolykoptev/go_chaoslearn/internal/engine/playlist"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "6000")
	t.Setenv("SEARCH_CONCURRENCY", "7")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg := loadConfig()
	if cfg.HTTPPort != "6000" {
		t.Errorf("HTTPPort = %q, want 6000", cfg.HTTPPort)
	}
	if cfg.SearchConcurrency != 7 {
		t.Errorf("SearchConcurrency = %d, want 7", cfg.SearchConcurrency)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("FetchTimeout = %v, want 3s", cfg.FetchTimeout)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.HTTPClient == nil {
		t.Error("HTTPClient must be set")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadConfig()
	if cfg.MaxKeywords <= 0 || cfg.StudyResultsPerKeyword <= 0 || cfg.FunResults <= 0 {
		t.Errorf("result caps must default to positive values: %+v", cfg)
	}
	if cfg.SearchMaxRetries < 0 {
		t.Errorf("SearchMaxRetries = %d", cfg.SearchMaxRetries)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "chaoslearn version "+version) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"serve": false, "playlist": false, "version": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing %q subcommand", name)
		}
	}
	if root.Flags().Lookup("rest-only") == nil {
		t.Error("root should accept the serve flags")
	}
}

func TestPlaylistCommandValidates(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("YOUTUBE_API_KEY", "")

	_, err := execute(t, "playlist", "--theme", "cats")
	if !errors.Is(err, engine.ErrValidation) {
		t.Fatalf("expected validation failure for missing topic, got %v", err)
	}

	_, err = execute(t, "playlist", "--topic", "go", "--theme", "cats", "--level", "6")
	if !errors.Is(err, engine.ErrValidation) {
		t.Fatalf("expected validation failure for level 6, got %v", err)
	}
}

func TestRunPlaylistNoContext(t *testing.T) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	cfg := engine.Config{}.WithDefaults()
	err := runPlaylist(cmd, cfg, playlist.Request{FunTheme: "cats"})
	if !errors.Is(err, engine.ErrValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be printed on failure, got %q", out.String())
	}
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return strconv.Itoa(port)
}

func TestServeFailsWhenRESTPortTaken(t *testing.T) {
	taken, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer taken.Close()

	t.Setenv("HTTP_PORT", strconv.Itoa(taken.Addr().(*net.TCPAddr).Port))
	t.Setenv("MCP_PORT", freePort(t))
	t.Setenv("REDIS_URL", "")

	for _, args := range [][]string{{"serve"}, {"serve", "--rest-only"}} {
		done := make(chan error, 1)
		go func() {
			_, err := execute(t, args...)
			done <- err
		}()
		select {
		case err := <-done:
			if err == nil || !strings.Contains(err.Error(), "rest api") {
				t.Errorf("%v: expected a rest api error, got %v", args, err)
			}
		case <-time.After(10 * time.Second):
			t.Fatalf("%v: serve kept running with its REST port taken", args)
		}
	}
}
