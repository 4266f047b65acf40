package transcript

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

const sampleChat = `{
	"visitor": {"email": "a@b.com", "name": "Ana"},
	"location": {"city": "X", "country": "MX"},
	"chatDuration": 120,
	"createdOn": "2024-07-01",
	"messages": [
		{"msg": "Hola"},
		{"msg": "Bienvenido, en que podemos ayudarte?"},
		{"msg": "No puedo generar el reporte"}
	]
}`

func TestLoadDir_ReadsImmediateSubdirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "01", "a.json"), sampleChat)
	writeFile(t, filepath.Join(root, "02", "b.json"), `{"visitor": {}}`)
	writeFile(t, filepath.Join(root, "02", "notes.txt"), "not a transcript")
	writeFile(t, filepath.Join(root, "top.json"), sampleChat)                    // root-level file, ignored
	writeFile(t, filepath.Join(root, "03", "nested", "deep.json"), sampleChat) // too deep, ignored

	records, err := LoadDir(root, discardLogger())
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Path != filepath.Join(root, "01", "a.json") {
		t.Errorf("expected directory order, first path = %s", records[0].Path)
	}
	if records[0].Visitor.Email != "a@b.com" {
		t.Errorf("email = %q", records[0].Visitor.Email)
	}
	if records[0].Location.City != "X" {
		t.Errorf("city = %q", records[0].Location.City)
	}
	if records[0].ChatDuration.String() != "120" {
		t.Errorf("chatDuration = %q", records[0].ChatDuration)
	}
	if len(records[0].Messages) != 3 {
		t.Errorf("messages = %d", len(records[0].Messages))
	}
}

func TestLoadDir_SkipsMalformedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "01", "bad.json"), `{"visitor": `)
	writeFile(t, filepath.Join(root, "01", "list.json"), `[1, 2, 3]`)
	writeFile(t, filepath.Join(root, "01", "good.json"), sampleChat)

	records, err := LoadDir(root, discardLogger())
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if filepath.Base(records[0].Path) != "good.json" {
		t.Errorf("unexpected record %s", records[0].Path)
	}
}

func TestLoadDir_DropsEmptyDocuments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "01", "empty.json"), `{}`)

	records, err := LoadDir(root, discardLogger())
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestLoadDir_MissingRoot(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"), discardLogger())
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFile_NotObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "null.json")
	writeFile(t, path, `null`)

	_, err := LoadFile(path)
	if !errors.Is(err, ErrNotObject) {
		t.Fatalf("expected ErrNotObject, got %v", err)
	}
}

func TestRecord_Eligible(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want bool
	}{
		{"complete", sampleChat, true},
		{"null values still count", `{"visitor": null, "location": null, "chatDuration": 0, "messages": null}`, true},
		{"missing visitor", `{"location": {}, "chatDuration": 1, "messages": []}`, false},
		{"missing location", `{"visitor": {}, "chatDuration": 1, "messages": []}`, false},
		{"missing duration", `{"visitor": {}, "location": {}, "messages": []}`, false},
		{"missing messages", `{"visitor": {}, "location": {}, "chatDuration": 1}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "chat.json")
			writeFile(t, path, tc.doc)
			rec, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if got := rec.Eligible(); got != tc.want {
				t.Errorf("Eligible() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRecord_CreatedOnIsOptional(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.json")
	writeFile(t, path, `{"visitor": {"email": ""}, "location": {"city": ""}, "chatDuration": 3, "messages": []}`)

	rec, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if rec.CreatedOn != "" {
		t.Errorf("expected empty createdOn, got %q", rec.CreatedOn)
	}
	if rec.Has("createdOn") {
		t.Error("createdOn should not be reported as present")
	}
}
