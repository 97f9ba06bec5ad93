package render_test

import (
	"strings"
	"testing"

	"github.com/soypat/cylmesh"
	"github.com/soypat/cylmesh/render"
	"github.com/spf13/afero"
)

func TestCreateOBJReplacesAtomically(t *testing.T) {
	fs := afero.NewMemMapFs()
	const path = "/models/cylinder.obj"
	if err := afero.WriteFile(fs, path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	m := cylmesh.Generate(mustShape(t, 8, 1, 0.5))
	if err := render.CreateOBJ(fs, path, m); err != nil {
		t.Fatal(err)
	}
	got, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(render.MarshalOBJ(m)) {
		t.Error("file content differs from MarshalOBJ output")
	}
	entries, err := afero.ReadDir(fs, "/models")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("got %d files in output directory, want 1", len(entries))
	}
}

func TestWriteFileAtomicReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	if err := render.WriteFileAtomic(fs, "/x.obj", []byte("v 0 0 0\n")); err == nil {
		t.Fatal("expected error writing to read-only filesystem")
	}
}
