package main

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/capesgraph/authormerge/internal/config"
	"github.com/capesgraph/authormerge/internal/export"
	"github.com/capesgraph/authormerge/internal/logging"
	"github.com/capesgraph/authormerge/internal/storage"
)

func writeFixture(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func firstLine(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	if !s.Scan() {
		t.Fatalf("%s is empty", filepath.Base(path))
	}
	return s.Text()
}

// runResolveFixture runs the resolve command over a small batch and returns
// the output directory.
func runResolveFixture(t *testing.T) string {
	t.Helper()
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "run")

	cfg = config.Default()
	logger = logging.Nop()
	humanOutput = false
	resolveMentions = writeFixture(t, in, "authors.csv",
		"ID_ADD_PRODUCAO_INTELECTUAL;ID_PESSOA;NM_AUTOR;SG_ENTIDADE_ENSINO;TP_AUTOR",
		"10;7;Silva, Ana;UFMG;DOCENTE",
		"10;8;Costa, Rui;UFMG;DISCENTE",
		"11;;Ana Silva;UFMG;nan",
		"11;8;Costa, Rui;UFMG;DISCENTE",
	)
	resolveProductions = writeFixture(t, in, "productions.csv",
		"ID_ADD_PRODUCAO_INTELECTUAL;NM_LINHA_PESQUISA",
		"10;{'OPTICS': 2}",
		"11;OPTICS",
	)
	resolveReplacements = ""
	resolveOut = out
	t.Cleanup(func() {
		resolveMentions, resolveProductions, resolveOut = "", "", ""
	})

	resolveCmd.SetContext(context.Background())
	if err := runResolve(resolveCmd, nil); err != nil {
		t.Fatalf("runResolve() error = %v", err)
	}
	return out
}

func TestRunResolve_WritesRunDirectory(t *testing.T) {
	out := runResolveFixture(t)

	for _, name := range []string{
		export.PreliminaryFile,
		export.FinalAuthorsFile,
		export.CoauthorshipsFile,
		export.ProfilesFile,
	} {
		info, err := os.Stat(filepath.Join(out, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
	if got := firstLine(t, filepath.Join(out, export.CoauthorshipsFile)); got != "AUTHOR_1;AUTHOR_2;PROD_ID" {
		t.Errorf("co_authorships header = %q", got)
	}

	profiles, err := storage.ReadProfiles(filepath.Join(out, export.ProfilesFile))
	if err != nil {
		t.Fatalf("ReadProfiles() error = %v", err)
	}
	if len(profiles) != 2 {
		t.Errorf("profiles = %d, want 2 (orphan merged into its known spelling)", len(profiles))
	}
}

func TestLoadProfile(t *testing.T) {
	out := runResolveFixture(t)
	profiles, err := storage.ReadProfiles(filepath.Join(out, export.ProfilesFile))
	if err != nil || len(profiles) == 0 {
		t.Fatalf("ReadProfiles() = %d profiles, %v", len(profiles), err)
	}
	want := profiles[0]

	got, err := loadProfile(out, want.ID)
	if err != nil {
		t.Fatalf("loadProfile() error = %v", err)
	}
	if got == nil || got.DisplayName != want.DisplayName {
		t.Errorf("loadProfile(%d) = %+v, want %q", want.ID, got, want.DisplayName)
	}

	if got, err := loadProfile(out, -1); err != nil || got != nil {
		t.Errorf("unknown id = %+v, %v; want nil, nil", got, err)
	}
	if got, err := loadProfile(t.TempDir(), want.ID); err != nil || got != nil {
		t.Errorf("missing snapshot = %+v, %v; want nil, nil", got, err)
	}
}
