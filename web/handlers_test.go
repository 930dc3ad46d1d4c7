package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/mogaika/m3_browser/pack"
	_ "github.com/mogaika/m3_browser/pack/m3"
	"github.com/mogaika/m3_browser/utils"
	"github.com/mogaika/m3_browser/vfs"
)

type fakeInstance struct {
	Name string
}

func (f *fakeInstance) Marshal() (interface{}, error) {
	return map[string]string{"name": f.Name}, nil
}

func (f *fakeInstance) HttpAction(w http.ResponseWriter, r *http.Request, action string) error {
	_, err := io.WriteString(w, action+":"+f.Name)
	return err
}

func init() {
	pack.SetHandler(".FAKE", func(src utils.ResourceSource, r *io.SectionReader) (interface{}, error) {
		return &fakeInstance{Name: src.Name()}, nil
	})
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"units/marine.m3":   "MD34",
		"units/Zealot.M3":   "MD34",
		"doodads/rock.m3":   "XXXX this is not a model file",
		"readme.txt":        "text",
		"props/crate.fake":  "fake",
		"props/barrel.fake": "fake",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0777); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0666); err != nil {
			t.Fatal(err)
		}
	}

	srv := httptest.NewServer(NewRouter(vfs.NewDirectoryDriver(dir), ""))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	return resp.StatusCode, string(body)
}

func TestHandlerAjaxFiles(t *testing.T) {
	srv := newTestServer(t)

	code, body := get(t, srv.URL+"/json/files")
	if code != http.StatusOK {
		t.Fatalf("status %d: %s", code, body)
	}
	var files []string
	if err := json.Unmarshal([]byte(body), &files); err != nil {
		t.Fatalf("bad json %q: %v", body, err)
	}
	expected := []string{"doodads/rock.m3", "units/Zealot.M3", "units/marine.m3"}
	if strings.Join(files, ",") != strings.Join(expected, ",") {
		t.Errorf("files %v; expected %v", files, expected)
	}
}

func TestHandlerAjaxFile(t *testing.T) {
	srv := newTestServer(t)

	code, body := get(t, srv.URL+"/json/file/props/crate.fake")
	if code != http.StatusOK || body != `{"name":"props/crate.fake"}` {
		t.Errorf("fake file: %d %s", code, body)
	}

	code, body = get(t, srv.URL+"/json/file/doodads/rock.m3")
	if code != http.StatusInternalServerError || !strings.Contains(body, `"error"`) || !strings.Contains(body, "format error") {
		t.Errorf("bad model: %d %s", code, body)
	}

	code, body = get(t, srv.URL+"/json/file/units/marine.m3")
	if code != http.StatusInternalServerError || !strings.Contains(body, "truncated") {
		t.Errorf("short model: %d %s", code, body)
	}

	code, body = get(t, srv.URL+"/json/file/readme.txt")
	if code != http.StatusNotFound {
		t.Errorf("unhandled extension: %d %s", code, body)
	}
}

func TestHandlerDumpFile(t *testing.T) {
	srv := newTestServer(t)

	code, body := get(t, srv.URL+"/dump/file/doodads/rock.m3")
	if code != http.StatusOK || body != "XXXX this is not a model file" {
		t.Errorf("dump: %d %q", code, body)
	}

	code, body = get(t, srv.URL+"/dump/file/doodads/missing.m3")
	if code != http.StatusInternalServerError {
		t.Errorf("missing file: %d %q", code, body)
	}
}

func TestHandlerActionFile(t *testing.T) {
	srv := newTestServer(t)

	code, body := get(t, srv.URL+"/action/props/barrel.fake/obj")
	if code != http.StatusOK || body != "obj:props/barrel.fake" {
		t.Errorf("action: %d %q", code, body)
	}

	code, body = get(t, srv.URL+"/action/readme.txt/obj")
	if code != http.StatusNotFound {
		t.Errorf("unhandled extension: %d %q", code, body)
	}
}
