package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// newTestClient points a Client at the given handler.
func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return New(Config{BaseURL: ts.URL + "/"})
}

// TestUploadSendsAllFilesInOneRequest checks the multipart shape of /audio/upload.
func TestUploadSendsAllFilesInOneRequest(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPost || r.URL.Path != "/audio/upload" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("content-type = %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		files := r.MultipartForm.File["files"]
		if len(files) != 3 {
			t.Fatalf("files parts = %d, want 3", len(files))
		}
		out := make([]UploadResult, 0, len(files))
		for i, fh := range files {
			f, _ := fh.Open()
			data, _ := io.ReadAll(f)
			f.Close()
			if string(data) != "data-"+fh.Filename {
				t.Errorf("part %s content = %q", fh.Filename, data)
			}
			out = append(out, UploadResult{ID: i + 1, Filename: fh.Filename})
		}
		json.NewEncoder(w).Encode(out)
	})

	var files []UploadFile
	for _, name := range []string{"a.wav", "b.mp3", "c.flac"} {
		files = append(files, FileFromBytes(name, []byte("data-"+name)))
	}
	got, err := c.Audio.Upload(context.Background(), files)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("requests = %d, want 1", calls)
	}
	if len(got) != 3 || got[2].Filename != "c.flac" {
		t.Fatalf("results = %+v", got)
	}
}

// TestUploadZeroFilesIsNoop checks no request is issued for an empty selection.
func TestUploadZeroFilesIsNoop(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})
	got, err := c.Audio.Upload(context.Background(), nil)
	if err != nil || got != nil {
		t.Fatalf("Upload(nil) = %v, %v", got, err)
	}
}

// TestSubmitBody checks the exact submit payload including the empty params object.
func TestSubmitBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/asr/submit" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		want := `{"audio_file_id":7,"model_name":"whisper","model_params":{}}`
		if string(body) != want {
			t.Errorf("body = %s, want %s", body, want)
		}
		fmt.Fprint(w, `{"id":1,"audio_file_id":7,"model_name":"whisper","model_params":"{}","status":"pending","progress":0.0,"submit_time":"2024-05-01T10:00:00","finish_time":null}`)
	})

	task, err := c.ASR.Submit(context.Background(), 7, "whisper", nil)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if task.ID != 1 || task.Status != types.StatusPending || task.FinishTime != "" {
		t.Fatalf("task = %+v", task)
	}
}

// TestErrorDetail checks non-2xx responses become *Error with the detail text.
func TestErrorDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/history/task/9":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"detail":"task not found"}`)
		case "/asr/result/9":
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"detail":[{"loc":["path","task_id"],"msg":"bad"}]}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, "internal error")
		}
	})
	ctx := context.Background()

	err := c.History.DeleteTask(ctx, 9)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T %v, want *Error", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Detail != "task not found" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
	if !IsNotFound(err) {
		t.Fatal("IsNotFound = false")
	}
	if got := Detail(err, "fallback"); got != "task not found" {
		t.Fatalf("Detail = %q", got)
	}

	_, err = c.ASR.Result(ctx, 9)
	if got := Detail(err, "fallback"); !strings.Contains(got, `"msg":"bad"`) {
		t.Fatalf("structured detail = %q", got)
	}

	_, err = c.Models.List(ctx)
	if got := Detail(err, "fallback"); got != "fallback" {
		t.Fatalf("plain-text error detail = %q, want fallback", got)
	}
}

// TestExportReturnsBytes checks the format query and raw payload passthrough.
func TestExportReturnsBytes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/export/result/3" || r.URL.Query().Get("format") != "srt" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "1\n00:00:00,000 --> 00:00:10,000\nhello\n")
	})
	p, err := c.Export.Result(context.Background(), 3, "srt")
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	if !strings.HasPrefix(string(p.Data), "1\n00:00:00,000") || p.ContentType != "text/plain" {
		t.Fatalf("payload = %+v", p)
	}
}

// TestModelEndpoints checks method, path and body of each model action.
func TestModelEndpoints(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		line := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			line += "?" + r.URL.RawQuery
		}
		if len(body) > 0 {
			line += " " + string(body)
		}
		seen = append(seen, line)
		switch {
		case r.Method == http.MethodPatch:
			fmt.Fprint(w, `{"id":4,"name":"w","display_name":"W","type":"asr","status":"active","config":{"beam":5}}`)
		default:
			fmt.Fprint(w, `{"message":"ok"}`)
		}
	})
	ctx := context.Background()

	if _, err := c.Models.Switch(ctx, 4); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Models.Load(ctx, 4); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Models.Unload(ctx, 4); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Models.Delete(ctx, 4, true); err != nil {
		t.Fatal(err)
	}
	m, err := c.Models.UpdateConfig(ctx, 4, map[string]any{"beam": 5})
	if err != nil {
		t.Fatal(err)
	}
	if string(m.Config) != `{"beam":5}` {
		t.Fatalf("config = %s", m.Config)
	}

	want := []string{
		`POST /api/models/switch {"id":4}`,
		`POST /api/models/4/load`,
		`POST /api/models/4/unload`,
		`DELETE /api/models/4?delete_file=true`,
		`PATCH /api/models/4/config {"config":{"beam":5}}`,
	}
	if len(seen) != len(want) {
		t.Fatalf("requests = %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("request %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

// TestSummaryConfigOmittedForTruncate checks config is only sent when present.
func TestSummaryConfigOmittedForTruncate(t *testing.T) {
	var bodies []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		fmt.Fprint(w, `{"summary":"short","algo":"truncate","length":100,"detail":1}`)
	})
	ctx := context.Background()

	if _, err := c.Summary.Generate(ctx, types.SummaryRequest{TaskID: 1, Algo: "truncate", Length: 100, Detail: 1}); err != nil {
		t.Fatal(err)
	}
	cfg := types.LLMConfig{APIKey: "k", Model: "m", APIBase: "b"}
	if _, err := c.Summary.Generate(ctx, types.SummaryRequest{TaskID: 1, Algo: "doubao", Length: 50, Detail: 2, Config: &cfg}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(bodies[0], "config") {
		t.Fatalf("truncate body carries config: %s", bodies[0])
	}
	if !strings.Contains(bodies[1], `"config":{"api_key":"k","model":"m","api_base":"b"}`) {
		t.Fatalf("doubao body = %s", bodies[1])
	}
}
