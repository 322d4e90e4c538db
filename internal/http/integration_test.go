package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// These tests run against a live server with Postgres (and optionally Redis)
// behind it. Start one with `go run ./cmd/server` and set INTEGRATION_TESTS=1.

type lecturerPayload struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	AccessToken string `json:"accessToken"`
}

type sessionPayload struct {
	ID               string  `json:"id"`
	CourseCode       string  `json:"courseCode"`
	SessionToken     string  `json:"sessionToken"`
	IsActive         bool    `json:"isActive"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	RegistrationLink string  `json:"registrationLink"`
}

type recordPayload struct {
	ID                  string   `json:"id"`
	StudentID           string   `json:"studentId"`
	DistanceFromSession *float64 `json:"distanceFromSession"`
	IsVerified          bool     `json:"isVerified"`
	FlaggedForReview    bool     `json:"flaggedForReview"`
	Outcome             string   `json:"outcome"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func baseURL() string {
	if v := os.Getenv("SERVER_HTTP_ADDR"); v != "" {
		return v
	}
	return "http://127.0.0.1:8084"
}

func doJSON(t *testing.T, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func registerLecturer(t *testing.T) lecturerPayload {
	t.Helper()
	email := fmt.Sprintf("it-%d@demo.local", time.Now().UnixNano())
	resp, raw := doJSON(t, http.MethodPost, baseURL()+"/lecturers", "", map[string]string{
		"email":    email,
		"fullName": "Integration Lecturer",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create lecturer status %d: %s", resp.StatusCode, raw)
	}
	var created lecturerPayload
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode lecturer: %v", err)
	}
	if created.AccessToken == "" {
		t.Fatal("expected an access token")
	}
	return created
}

func createSession(t *testing.T, token string) sessionPayload {
	t.Helper()
	resp, raw := doJSON(t, http.MethodPost, baseURL()+"/sessions", token, map[string]interface{}{
		"courseCode":  "CSC101",
		"courseTitle": "Intro to Computing",
		"venue":       "LT1",
		"latitude":    6.8649,
		"longitude":   7.3950,
		"classDate":   "2026-09-01",
		"startTime":   "09:00",
		"endTime":     "11:00",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session status %d: %s", resp.StatusCode, raw)
	}
	var created sessionPayload
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if created.SessionToken == "" || !created.IsActive {
		t.Fatalf("unexpected session payload: %+v", created)
	}
	return created
}

func TestSubmitFlow(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run")
	}
	owner := registerLecturer(t)
	sess := createSession(t, owner.AccessToken)

	submitURL := fmt.Sprintf("%s/sessions/%s/attendance", baseURL(), sess.ID)

	// a submission ~15 m north of the venue verifies
	resp, raw := doJSON(t, http.MethodPost, submitURL, "", map[string]interface{}{
		"studentId":   "csc/2020/001",
		"studentName": "ada obi",
		"latitude":    sess.Latitude + 15.0/111195.0,
		"longitude":   sess.Longitude,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status %d: %s", resp.StatusCode, raw)
	}
	var rec recordPayload
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if !rec.IsVerified || rec.Outcome != "verified" {
		t.Fatalf("expected verified record, got %+v", rec)
	}
	if rec.StudentID != "CSC/2020/001" {
		t.Fatalf("expected normalized student id, got %q", rec.StudentID)
	}

	// same student again is a conflict, regardless of casing
	resp, raw = doJSON(t, http.MethodPost, submitURL, "", map[string]interface{}{
		"studentId":   "CSC/2020/001",
		"studentName": "Ada Obi",
		"latitude":    sess.Latitude,
		"longitude":   sess.Longitude,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate submit status %d: %s", resp.StatusCode, raw)
	}
	var dup errorPayload
	if err := json.Unmarshal(raw, &dup); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if dup.Error != "already_marked" {
		t.Fatalf("expected already_marked, got %q", dup.Error)
	}

	// a submission without coordinates is accepted but flagged
	resp, raw = doJSON(t, http.MethodPost, submitURL, "", map[string]string{
		"studentId":   "CSC/2020/002",
		"studentName": "Ben Eze",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unlocated submit status %d: %s", resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if !rec.IsVerified || !rec.FlaggedForReview || rec.DistanceFromSession != nil {
		t.Fatalf("expected flagged verified record with no distance, got %+v", rec)
	}
}

func TestClosedSessionRejectsSubmissions(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run")
	}
	owner := registerLecturer(t)
	sess := createSession(t, owner.AccessToken)

	sessionURL := fmt.Sprintf("%s/sessions/%s", baseURL(), sess.ID)
	resp, raw := doJSON(t, http.MethodPatch, sessionURL, owner.AccessToken, map[string]bool{"isActive": false})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch status %d: %s", resp.StatusCode, raw)
	}

	resp, raw = doJSON(t, http.MethodPost, sessionURL+"/attendance", "", map[string]interface{}{
		"studentId":   "CSC/2020/003",
		"studentName": "Chidi Okafor",
		"latitude":    sess.Latitude,
		"longitude":   sess.Longitude,
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("closed submit status %d: %s", resp.StatusCode, raw)
	}
	var errBody errorPayload
	if err := json.Unmarshal(raw, &errBody); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errBody.Error != "session_closed" {
		t.Fatalf("expected session_closed, got %q", errBody.Error)
	}
}

func TestDeleteCascadesRecords(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run")
	}
	owner := registerLecturer(t)
	sess := createSession(t, owner.AccessToken)

	submitURL := fmt.Sprintf("%s/sessions/%s/attendance", baseURL(), sess.ID)
	resp, raw := doJSON(t, http.MethodPost, submitURL, "", map[string]interface{}{
		"studentId":   "CSC/2020/004",
		"studentName": "Dara Musa",
		"latitude":    sess.Latitude,
		"longitude":   sess.Longitude,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status %d: %s", resp.StatusCode, raw)
	}

	sessionURL := fmt.Sprintf("%s/sessions/%s", baseURL(), sess.ID)
	resp, raw = doJSON(t, http.MethodDelete, sessionURL, owner.AccessToken, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d: %s", resp.StatusCode, raw)
	}

	resp, _ = doJSON(t, http.MethodGet, sessionURL, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestAttendanceListIsOwnerOnly(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run")
	}
	owner := registerLecturer(t)
	other := registerLecturer(t)
	sess := createSession(t, owner.AccessToken)

	listURL := fmt.Sprintf("%s/sessions/%s/attendance", baseURL(), sess.ID)
	resp, _ := doJSON(t, http.MethodGet, listURL, other.AccessToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owner, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, listURL, owner.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", resp.StatusCode)
	}
}
