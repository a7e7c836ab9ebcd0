package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/neatrack/internal/backup"
	"github.com/pavelanni/neatrack/internal/model"
	"github.com/pavelanni/neatrack/internal/store"
)

type testApp struct {
	server *httptest.Server
	client *http.Client
	kv     *store.KV
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	kv, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	tracker := store.NewTracker(kv)
	auth := store.NewAuth(kv, model.KeyPasscode, model.KeyAuthSessions)
	if err := auth.SetPasscode("testing"); err != nil {
		t.Fatalf("SetPasscode: %v", err)
	}
	backups := backup.NewManager(kv, tracker)

	h := New(kv, tracker, auth, backups, Config{})
	r := chi.NewRouter()
	h.Routes(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar := newCookieJar(t)
	return &testApp{
		server: server,
		client: &http.Client{Jar: jar},
		kv:     kv,
	}
}

func newCookieJar(t *testing.T) http.CookieJar {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return jar
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/login", `{"passcode":"testing"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
}

func (a *testApp) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, a.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestRoutesRequireAuth(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodPost, "/api/students", `{"name":"Ada"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated POST status = %d, want 401", resp.StatusCode)
	}

	// Reads are gated too: pupil data never leaves without a session.
	resp = app.do(t, http.MethodGet, "/api/students", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated GET status = %d, want 401", resp.StatusCode)
	}

	// State stays readable without a session.
	resp = app.do(t, http.MethodGet, "/api/state", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("state status = %d, want 200", resp.StatusCode)
	}
}

func TestLoginRejectsWrongPasscode(t *testing.T) {
	app := newTestApp(t)
	resp := app.do(t, http.MethodPost, "/login", `{"passcode":"nope"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestStudentCRUDOverHTTP(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.do(t, http.MethodPost, "/api/students", `{"name":"Ada","class":"10A"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decodeBody[model.Student](t, resp)
	if created.ID == "" {
		t.Fatal("server did not mint an id")
	}

	resp = app.do(t, http.MethodPost, "/api/students", `{"class":"10A"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("nameless student status = %d, want 400", resp.StatusCode)
	}

	resp = app.do(t, http.MethodPut, "/api/students/"+created.ID, `{"name":"Ada Lovelace"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	updated := decodeBody[model.Student](t, resp)
	if updated.Name != "Ada Lovelace" {
		t.Errorf("updated name = %q", updated.Name)
	}

	resp = app.do(t, http.MethodGet, "/api/students", "")
	students := decodeBody[[]model.Student](t, resp)
	if len(students) != 1 {
		t.Fatalf("list length = %d", len(students))
	}

	resp = app.do(t, http.MethodDelete, "/api/students/"+created.ID, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	// Deleting a missing student succeeds and changes nothing.
	resp = app.do(t, http.MethodDelete, "/api/students/x", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete of missing id status = %d, want 200", resp.StatusCode)
	}
}

func TestScoreUpdateClampsOverHTTP(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.do(t, http.MethodPut, "/api/scores/nea/s1/section-a", `{"mark":42}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decodeBody[map[string]int](t, resp)
	if got["mark"] != 10 {
		t.Errorf("stored mark = %d, want clamped 10", got["mark"])
	}

	resp = app.do(t, http.MethodPut, "/api/scores/nea/s1/section-zz", `{"mark":5}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown section status = %d, want 400", resp.StatusCode)
	}

	resp = app.do(t, http.MethodPut, "/api/scores/bogus/s1/section-a", `{"mark":5}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown component status = %d, want 404", resp.StatusCode)
	}
}

func TestScoreUpdateRejectsCrossComponentSection(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.do(t, http.MethodPut, "/api/scores/nea/s1/paper1-section-a", `{"mark":5}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("mock section in nea book status = %d, want 400", resp.StatusCode)
	}

	resp = app.do(t, http.MethodPut, "/api/scores/mock/s1/section-a", `{"mark":5}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("nea section in mock book status = %d, want 400", resp.StatusCode)
	}

	// The rejected writes must not have polluted the NEA book.
	resp = app.do(t, http.MethodGet, "/api/scores/nea/s1", "")
	record := decodeBody[model.ScoreRecord](t, resp)
	if len(record.Marks) != 0 {
		t.Errorf("nea record marks = %v, want empty", record.Marks)
	}
}

func TestUpdateRejectsBlankName(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.do(t, http.MethodPost, "/api/assessments", `{"id":"a1","name":"Mock 1","maxMarks":100}`)
	resp.Body.Close()
	resp = app.do(t, http.MethodPost, "/api/subjects", `{"id":"sub1","name":"Design & Technology"}`)
	resp.Body.Close()

	resp = app.do(t, http.MethodPut, "/api/assessments/a1", `{"name":"","maxMarks":50}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank assessment name status = %d, want 400", resp.StatusCode)
	}

	resp = app.do(t, http.MethodPut, "/api/subjects/sub1", `{"name":""}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank subject name status = %d, want 400", resp.StatusCode)
	}

	// The stored records keep their original names.
	resp = app.do(t, http.MethodGet, "/api/assessments", "")
	assessments := decodeBody[[]model.Assessment](t, resp)
	if len(assessments) != 1 || assessments[0].Name != "Mock 1" {
		t.Errorf("assessments = %+v, want original record intact", assessments)
	}
	resp = app.do(t, http.MethodGet, "/api/subjects", "")
	subjects := decodeBody[[]model.Subject](t, resp)
	if len(subjects) != 1 || subjects[0].Name != "Design & Technology" {
		t.Errorf("subjects = %+v, want original record intact", subjects)
	}
}

func TestStudentSummaryScenario(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.do(t, http.MethodPost, "/api/students", `{"id":"s1","name":"Ada"}`)
	resp.Body.Close()

	marks := map[string]int{
		"section-a": 9, "section-b": 8, "section-c": 18,
		"section-d": 15, "section-e": 10, "section-f": 5,
	}
	for sectionID, mark := range marks {
		body, _ := json.Marshal(map[string]int{"mark": mark})
		resp := app.do(t, http.MethodPut, "/api/scores/nea/s1/"+sectionID, string(body))
		resp.Body.Close()
	}

	resp = app.do(t, http.MethodGet, "/api/students/s1/summary", "")
	sum := decodeBody[StudentSummary](t, resp)
	if sum.NEATotal != 65 || sum.NEAGrade != "5" {
		t.Errorf("NEA = %d marks grade %q, want 65 marks grade 5", sum.NEATotal, sum.NEAGrade)
	}
	if sum.SectionsComplete != 6 || sum.Progress != 100 {
		t.Errorf("completion = %d sections, %d%%", sum.SectionsComplete, sum.Progress)
	}

	// Raising section F to 12 lifts the grade to a 6.
	resp = app.do(t, http.MethodPut, "/api/scores/nea/s1/section-f", `{"mark":12}`)
	resp.Body.Close()
	resp = app.do(t, http.MethodGet, "/api/students/s1/summary", "")
	sum = decodeBody[StudentSummary](t, resp)
	if sum.NEATotal != 72 || sum.NEAGrade != "6" {
		t.Errorf("NEA = %d marks grade %q, want 72 marks grade 6", sum.NEATotal, sum.NEAGrade)
	}
}

func TestStateAndSave(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.do(t, http.MethodGet, "/api/state", "")
	state := decodeBody[map[string]any](t, resp)
	if state["hasUnsavedChanges"] != true {
		t.Error("fresh store should report unsaved changes")
	}

	resp = app.do(t, http.MethodPost, "/api/students", `{"name":"Ada"}`)
	resp.Body.Close()
	resp = app.do(t, http.MethodPost, "/api/save", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d", resp.StatusCode)
	}

	resp = app.do(t, http.MethodGet, "/api/state", "")
	state = decodeBody[map[string]any](t, resp)
	if state["hasUnsavedChanges"] != false {
		t.Error("store should be clean after save")
	}
}

func TestBackupDownloadAndRestoreOverHTTP(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.do(t, http.MethodPost, "/api/students", `{"id":"s1","name":"Ada"}`)
	resp.Body.Close()

	resp = app.do(t, http.MethodGet, "/api/backup", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("backup status = %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, ".neabackup") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	var backupBody bytes.Buffer
	if _, err := backupBody.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read backup: %v", err)
	}
	resp.Body.Close()

	// Drop the student data and restore it via multipart upload. The
	// session key survives so the upload itself stays authenticated.
	app.kv.Delete(model.KeyStudents)

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	fw, err := mw.CreateFormFile("backup", "neatrack.neabackup")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write(backupBody.Bytes()); err != nil {
		t.Fatalf("write form: %v", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, app.server.URL+"/api/restore", &form)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	restoreResp, err := app.client.Do(req)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	restoreResp.Body.Close()
	if restoreResp.StatusCode != http.StatusOK {
		t.Fatalf("restore status = %d", restoreResp.StatusCode)
	}

	resp = app.do(t, http.MethodGet, "/api/students/s1", "")
	student := decodeBody[model.Student](t, resp)
	if student.Name != "Ada" {
		t.Errorf("restored student = %+v", student)
	}
}

func TestImportRejectsForeignApp(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.do(t, http.MethodPost, "/api/import", `{"appName":"Not NEA Tracker","students":[]}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("foreign import status = %d, want 400", resp.StatusCode)
	}
}

func TestExportDocumentShape(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp := app.do(t, http.MethodGet, "/api/export", "")
	doc := decodeBody[model.AppData](t, resp)
	if doc.AppName != model.AppName {
		t.Errorf("appName = %q", doc.AppName)
	}
	if doc.Students == nil || doc.NEAScores == nil {
		t.Error("export collections should be present even when empty")
	}
}
