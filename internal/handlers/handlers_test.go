package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/codebuildervaibhav/asr-console/internal/api"
	"github.com/codebuildervaibhav/asr-console/internal/notify"
	"github.com/codebuildervaibhav/asr-console/internal/views"
)

// fakeBackend records requests and answers like the ASR backend
type fakeBackend struct {
	mu       sync.Mutex
	requests []string
	parts    int
}

func (b *fakeBackend) count(prefix string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/audio/list":
		io.WriteString(w, `[{"id":7,"filename":"a.wav","filepath":"/data/a.wav","upload_time":"2024-01-01T00:00:00"}]`)
	case r.Method == http.MethodPost && r.URL.Path == "/audio/upload":
		r.ParseMultipartForm(10 << 20)
		b.mu.Lock()
		b.parts = len(r.MultipartForm.File["files"])
		b.mu.Unlock()
		io.WriteString(w, `[{"id":8,"filename":"x.wav","filepath":"/data/x.wav"}]`)
	case r.Method == http.MethodGet && r.URL.Path == "/asr/list":
		io.WriteString(w, `[{"id":1,"audio_file_id":7,"model_name":"whisper","status":"finished","progress":1.0}]`)
	case r.Method == http.MethodGet && r.URL.Path == "/asr/result/1":
		io.WriteString(w, `{"id":3,"task_id":1,"recognized_text":"hello","summary":"","summary_algo":""}`)
	case r.Method == http.MethodGet && r.URL.Path == "/export/result/1":
		w.Header().Set("Content-Type", "application/x-subrip")
		io.WriteString(w, "1\n00:00:00,000 --> 00:00:01,000\nhello\n")
	case r.Method == http.MethodDelete && r.URL.Path == "/history/task/99":
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail":"Task not found"}`)
	case r.Method == http.MethodGet && r.URL.Path == "/api/models":
		io.WriteString(w, `[{"id":2,"name":"whisper","display_name":"Whisper","type":"asr","status":"ready","config":{"beam":5}}]`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail":"Not Found"}`)
	}
}

type testEnv struct {
	app     *fiber.App
	backend *fakeBackend
	center  *notify.Center
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := &fakeBackend{}
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)

	client := api.New(api.Config{BaseURL: ts.URL, Timeout: 5 * time.Second})
	center := notify.NewCenter(time.Minute, 50)
	exporter := views.NewExporter(client.Export, nil)

	audio := views.NewAudioManager(client.Audio, center.For("audio"))
	tasks := views.NewTaskManager(client.ASR, client.History, client.Audio, center.For("asr"),
		views.TaskOptions{Interval: time.Hour, StopOnTerminal: true})
	summary := views.NewSummaryExport(client.ASR, client.Summary, exporter, nil, nil, center.For("summary"))
	history := views.NewHistoryManager(client.History, exporter, center.For("history"))
	models := views.NewModelManager(client.Models, center.For("models"))

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(recover.New())
	Register(app.Group("/ui"), &Set{
		Audio:         NewAudioHandler(audio, 10),
		Tasks:         NewTasksHandler(tasks),
		Summary:       NewSummaryHandler(summary),
		History:       NewHistoryHandler(history, nil),
		Models:        NewModelsHandler(models),
		Notifications: NewNotificationsHandler(center),
	})
	app.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })

	return &testEnv{app: app, backend: backend, center: center}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := e.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, data
}

func (e *testEnv) doJSON(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, data := e.do(t, method, path, strings.NewReader(body), fiber.MIMEApplicationJSON)
	var out map[string]any
	json.Unmarshal(data, &out)
	return resp, out
}

// TestSubmitWithoutAudio verifies the no-selection guard reaches the client as 400.
func TestSubmitWithoutAudio(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.doJSON(t, http.MethodPost, "/ui/tasks", `{"audio_file_id":0,"model_name":"whisper"}`)
	if resp.StatusCode != http.StatusBadRequest || body["code"] != "ERR_NO_SELECTION" {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
	if n := e.backend.count("POST /asr/submit"); n != 0 {
		t.Fatalf("submit requests = %d, want 0", n)
	}
}

// TestAudioUploadForwardsAllFiles verifies one backend request per upload batch.
func TestAudioUploadForwardsAllFiles(t *testing.T) {
	e := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"one.wav", "two.mp3"} {
		fw, _ := mw.CreateFormFile("files", name)
		fw.Write([]byte("audio-" + name))
	}
	mw.Close()

	resp, _ := e.do(t, http.MethodPost, "/ui/audio/upload", &buf, mw.FormDataContentType())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if n := e.backend.count("POST /audio/upload"); n != 1 {
		t.Fatalf("upload requests = %d, want 1", n)
	}
	if e.backend.parts != 2 {
		t.Fatalf("parts = %d, want 2", e.backend.parts)
	}
}

// TestAudioUploadRejectsNonAudio verifies format validation before forwarding.
func TestAudioUploadRejectsNonAudio(t *testing.T) {
	e := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("files", "notes.txt")
	fw.Write([]byte("not audio"))
	mw.Close()

	resp, data := e.do(t, http.MethodPost, "/ui/audio/upload", &buf, mw.FormDataContentType())
	var body map[string]any
	json.Unmarshal(data, &body)
	if resp.StatusCode != http.StatusBadRequest || body["code"] != "ERR_INVALID_FORMAT" {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
	if n := e.backend.count("POST /audio/upload"); n != 0 {
		t.Fatalf("upload requests = %d", n)
	}

	notes := e.center.Since(0)
	if len(notes) != 1 || notes[0].Kind != notify.KindError || notes[0].View != "audio" {
		t.Fatalf("notifications = %+v, want one audio error", notes)
	}
}

// TestSummaryExportDownload verifies the attachment name and format guard.
func TestSummaryExportDownload(t *testing.T) {
	e := newTestEnv(t)

	if resp, _ := e.do(t, http.MethodGet, "/ui/summary", nil, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("mount status = %d", resp.StatusCode)
	}
	resp, body := e.doJSON(t, http.MethodPost, "/ui/summary/select", `{"task_id":1}`)
	if resp.StatusCode != http.StatusOK || body["text"] != "hello" {
		t.Fatalf("select = %d %v", resp.StatusCode, body)
	}

	resp, data := e.do(t, http.MethodGet, "/ui/summary/export?format=srt", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, `filename="asr_result_1.srt"`) {
		t.Fatalf("content-disposition = %q", cd)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("body = %q", data)
	}

	resp, body = e.doJSON(t, http.MethodGet, "/ui/summary/export?format=docx", "")
	if resp.StatusCode != http.StatusBadRequest || body["code"] != "ERR_INVALID_FORMAT" {
		t.Fatalf("docx = %d %v", resp.StatusCode, body)
	}
	if n := e.backend.count("GET /export/result/1"); n != 1 {
		t.Fatalf("export requests = %d, want 1", n)
	}
}

// TestBackendErrorDetailAndNotification verifies backend detail reaches both the response and notifications.
func TestBackendErrorDetailAndNotification(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.doJSON(t, http.MethodDelete, "/ui/tasks/99", "")
	if resp.StatusCode != http.StatusBadGateway || body["error"] != "Task not found" || body["backend_status"] != float64(404) {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}

	resp, data := e.do(t, http.MethodGet, "/ui/notifications?since=0", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var notes []notify.Notification
	if err := json.Unmarshal(data, &notes); err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].Kind != notify.KindError || notes[0].View != "asr" {
		t.Fatalf("notifications = %+v", notes)
	}
}

// TestModelConfigEditor verifies seeding and local rejection of invalid config.
func TestModelConfigEditor(t *testing.T) {
	e := newTestEnv(t)

	if resp, _ := e.do(t, http.MethodGet, "/ui/models", nil, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	resp, body := e.doJSON(t, http.MethodGet, "/ui/models/2/config", "")
	if resp.StatusCode != http.StatusOK || body["text"] != "{\n  \"beam\": 5\n}" {
		t.Fatalf("edit = %d %v", resp.StatusCode, body)
	}

	resp, body = e.doJSON(t, http.MethodPut, "/ui/models/2/config", `{"beam":`)
	if resp.StatusCode != http.StatusBadRequest || body["code"] != "ERR_INVALID_CONFIG" {
		t.Fatalf("save = %d %v", resp.StatusCode, body)
	}
	if n := e.backend.count("PATCH "); n != 0 {
		t.Fatalf("patch requests = %d, want 0", n)
	}

	resp, _ = e.doJSON(t, http.MethodGet, "/ui/models/77/config", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown model status = %d", resp.StatusCode)
	}
}

// TestErrorHandlerTrapsPanics verifies a panicking route yields a JSON 500.
func TestErrorHandlerTrapsPanics(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.doJSON(t, http.MethodGet, "/boom", "")
	if resp.StatusCode != http.StatusInternalServerError || body["code"] != "ERR_INTERNAL" {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}

	resp, body = e.doJSON(t, http.MethodGet, "/nowhere", "")
	if resp.StatusCode != http.StatusNotFound || body["code"] != "ERR_HTTP_404" {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
}

// TestExtractGDriveFileID verifies the accepted Drive link shapes.
func TestExtractGDriveFileID(t *testing.T) {
	id := "1AbCdEfGhIjKlMnOpQrStUvWxYz012345"
	cases := map[string]string{
		"https://drive.google.com/file/d/" + id + "/view?usp=sharing": id,
		"https://drive.google.com/open?id=" + id:                      id,
		id:                                                            id,
		"https://example.com/audio.mp3":                              "",
	}
	for in, want := range cases {
		if got := extractGDriveFileID(in); got != want {
			t.Errorf("extractGDriveFileID(%q) = %q, want %q", in, got, want)
		}
	}
}
