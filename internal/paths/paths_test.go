package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearHomeEnv(t *testing.T) {
	t.Helper()
	original := os.Getenv(HomeEnvVar)
	os.Unsetenv(HomeEnvVar)
	t.Cleanup(func() { os.Setenv(HomeEnvVar, original) })
}

func TestHomeDefault(t *testing.T) {
	clearHomeEnv(t)

	home, err := Home()
	if err != nil {
		t.Fatalf("Home failed: %v", err)
	}
	if !strings.HasSuffix(home, DefaultHomeDirName) {
		t.Errorf("expected path to end with %s, got %s", DefaultHomeDirName, home)
	}
}

func TestHomeRespectsEnvOverride(t *testing.T) {
	clearHomeEnv(t)

	custom := filepath.Join(t.TempDir(), "custom-home")
	os.Setenv(HomeEnvVar, custom)

	home, err := Home()
	if err != nil {
		t.Fatalf("Home failed: %v", err)
	}
	if home != custom {
		t.Errorf("expected %s, got %s", custom, home)
	}
}

func TestComputeRepoHashStableAndDistinct(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()

	h1 := ComputeRepoHash(a)
	h2 := ComputeRepoHash(a)
	if h1 != h2 {
		t.Fatalf("expected stable hash, got %s and %s", h1, h2)
	}

	h3 := ComputeRepoHash(b)
	if h1 == h3 {
		t.Fatalf("expected distinct hashes for distinct roots, got %s for both", h1)
	}
}

func TestRepoDataDirUnderHome(t *testing.T) {
	clearHomeEnv(t)
	home := t.TempDir()
	os.Setenv(HomeEnvVar, home)

	repoRoot := t.TempDir()
	dir, err := RepoDataDir(repoRoot)
	if err != nil {
		t.Fatalf("RepoDataDir failed: %v", err)
	}
	if !strings.HasPrefix(dir, filepath.Join(home, ReposSubdir)) {
		t.Errorf("expected %s under %s/%s, got %s", dir, home, ReposSubdir, dir)
	}
}

func TestEnsureRepoDataDirCreatesDirectory(t *testing.T) {
	clearHomeEnv(t)
	home := t.TempDir()
	os.Setenv(HomeEnvVar, home)

	repoRoot := t.TempDir()
	dir, err := EnsureRepoDataDir(repoRoot)
	if err != nil {
		t.Fatalf("EnsureRepoDataDir failed: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", dir)
	}
}

func TestIndexBaseDirDefault(t *testing.T) {
	clearHomeEnv(t)
	home := t.TempDir()
	os.Setenv(HomeEnvVar, home)

	repoRoot := t.TempDir()
	dir, err := IndexBaseDir(repoRoot, "")
	if err != nil {
		t.Fatalf("IndexBaseDir failed: %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join("index")) {
		t.Errorf("expected path ending in 'index', got %s", dir)
	}
}

func TestIndexBaseDirConfiguredAbsolute(t *testing.T) {
	configured := filepath.Join(t.TempDir(), "custom-index")
	dir, err := IndexBaseDir("/some/repo", configured)
	if err != nil {
		t.Fatalf("IndexBaseDir failed: %v", err)
	}
	if dir != configured {
		t.Errorf("expected %s, got %s", configured, dir)
	}
}

func TestIndexBaseDirConfiguredRelative(t *testing.T) {
	repoRoot := t.TempDir()
	dir, err := IndexBaseDir(repoRoot, "relative-index")
	if err != nil {
		t.Fatalf("IndexBaseDir failed: %v", err)
	}
	want := filepath.Join(repoRoot, "relative-index")
	if dir != want {
		t.Errorf("expected %s, got %s", want, dir)
	}
}

func TestLogPaths(t *testing.T) {
	clearHomeEnv(t)
	home := t.TempDir()
	os.Setenv(HomeEnvVar, home)

	repoRoot := t.TempDir()

	buildPath, err := GetBuildLogPath(repoRoot)
	if err != nil {
		t.Fatalf("GetBuildLogPath failed: %v", err)
	}
	if !strings.HasSuffix(buildPath, filepath.Join("logs", "build.log")) {
		t.Errorf("expected build.log suffix, got %s", buildPath)
	}

	queryPath, err := GetQueryLogPath(repoRoot)
	if err != nil {
		t.Fatalf("GetQueryLogPath failed: %v", err)
	}
	if !strings.HasSuffix(queryPath, filepath.Join("logs", "query.log")) {
		t.Errorf("expected query.log suffix, got %s", queryPath)
	}

	systemPath, err := GetSystemLogPath()
	if err != nil {
		t.Fatalf("GetSystemLogPath failed: %v", err)
	}
	if !strings.HasPrefix(systemPath, home) {
		t.Errorf("expected system log under home %s, got %s", home, systemPath)
	}
}

func TestEnsureLogsDirs(t *testing.T) {
	clearHomeEnv(t)
	home := t.TempDir()
	os.Setenv(HomeEnvVar, home)

	repoRoot := t.TempDir()

	repoLogsDir, err := EnsureRepoLogsDir(repoRoot)
	if err != nil {
		t.Fatalf("EnsureRepoLogsDir failed: %v", err)
	}
	if info, err := os.Stat(repoLogsDir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", repoLogsDir)
	}

	globalLogsDir, err := EnsureGlobalLogsDir()
	if err != nil {
		t.Fatalf("EnsureGlobalLogsDir failed: %v", err)
	}
	if info, err := os.Stat(globalLogsDir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", globalLogsDir)
	}
}

func TestGetRepoPaths(t *testing.T) {
	clearHomeEnv(t)
	home := t.TempDir()
	os.Setenv(HomeEnvVar, home)

	repoRoot := t.TempDir()
	rp, err := GetRepoPaths(repoRoot, "")
	if err != nil {
		t.Fatalf("GetRepoPaths failed: %v", err)
	}
	if rp.Hash == "" {
		t.Error("expected non-empty hash")
	}
	if !strings.HasPrefix(rp.IndexBaseDir, rp.DataDir) {
		t.Errorf("expected index base dir %s under data dir %s", rp.IndexBaseDir, rp.DataDir)
	}
	if !strings.HasPrefix(rp.LogsDir, rp.DataDir) {
		t.Errorf("expected logs dir %s under data dir %s", rp.LogsDir, rp.DataDir)
	}
}

func TestCanonicalizePath(t *testing.T) {
	repoRoot := t.TempDir()
	sub := filepath.Join(repoRoot, "pkg", "mod.py")
	if err := os.MkdirAll(filepath.Dir(sub), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sub, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	canonical, err := CanonicalizePath(sub, repoRoot)
	if err != nil {
		t.Fatalf("CanonicalizePath failed: %v", err)
	}
	if canonical != "pkg/mod.py" {
		t.Errorf("expected pkg/mod.py, got %s", canonical)
	}
}

func TestIsWithinRepo(t *testing.T) {
	repoRoot := t.TempDir()
	inside := filepath.Join(repoRoot, "a.py")
	outside := filepath.Join(t.TempDir(), "b.py")

	if !IsWithinRepo(inside, repoRoot) {
		t.Error("expected inside path to be within repo")
	}
	if IsWithinRepo(outside, repoRoot) {
		t.Error("expected outside path to not be within repo")
	}
}

func TestNormalizePath(t *testing.T) {
	if got := NormalizePath(`a\b\c`); got != "a/b/c" {
		t.Errorf("expected a/b/c, got %s", got)
	}
}

func TestJoinRepoPath(t *testing.T) {
	got := JoinRepoPath("/repo", "pkg/mod.py")
	want := filepath.Join("/repo", "pkg", "mod.py")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
