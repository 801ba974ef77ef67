package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/bodega/internal/annotations"
	"github.com/erazemk/bodega/internal/db"
	"github.com/erazemk/bodega/internal/index"
	"github.com/erazemk/bodega/internal/media"
	"github.com/erazemk/bodega/internal/model"
	"github.com/erazemk/bodega/internal/returns"
	"github.com/erazemk/bodega/internal/saleslog"
	"github.com/erazemk/bodega/internal/store"
)

const testJWTSecret = "test-secret"

const testSaleGroup = "Ventas Bodega"

func setupTestServer(t *testing.T) (*httptest.Server, string, *index.Index, *saleslog.Log) {
	t.Helper()
	database := db.NewTestDB(t)
	dir := t.TempDir()

	ix := index.New(filepath.Join(dir, "index.json"))
	sales := saleslog.New(filepath.Join(dir, "logs"))
	router := NewRouter(Deps{
		DB:          database,
		JWTSecret:   testJWTSecret,
		Index:       ix,
		Returns:     returns.New(ix, nil),
		Sales:       sales,
		Media:       media.New(filepath.Join(dir, "fotos")),
		Annotations: annotations.New(filepath.Join(dir, "anotaciones")),
		SaleGroup:   testSaleGroup,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin)

	// Get token.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}

	return server, token, ix, sales
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func registerConfirmed(t *testing.T, ix *index.Index, chatID int64, messageID int) {
	t.Helper()
	err := ix.Register(model.Record{
		ChatID:      chatID,
		MessageID:   messageID,
		File:        "1000.jpg",
		SubmittedBy: "Maria",
		Group:       "Fotos Bodega",
		Date:        "2026-09-01",
		SubmittedAt: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err = ix.Confirm(chatID, messageID, "Carlos", time.Date(2026, 9, 1, 10, 5, 0, 0, time.UTC),
		"v talla 38 color azul", model.Attributes{Sizes: []string{"38"}, Color: "azul"})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
}

func TestLoginEndpoint(t *testing.T) {
	server, _, _, _ := setupTestServer(t)

	// Invalid credentials.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRecordsRequireAuth(t *testing.T) {
	server, _, _, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/records")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestListRecords(t *testing.T) {
	server, token, ix, _ := setupTestServer(t)
	registerConfirmed(t, ix, -100200, 42)

	req, _ := authRequest("GET", server.URL+"/api/records?estado=confirmado", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var records []model.Record
	json.NewDecoder(resp.Body).Decode(&records)
	resp.Body.Close()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Attributes.Color != "azul" {
		t.Errorf("expected color azul, got %q", records[0].Attributes.Color)
	}

	req, _ = authRequest("GET", server.URL+"/api/records?estado=devuelto", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	records = nil
	json.NewDecoder(resp.Body).Decode(&records)
	resp.Body.Close()
	if len(records) != 0 {
		t.Errorf("expected no returned records, got %d", len(records))
	}
}

func TestMarkReturnFlow(t *testing.T) {
	server, token, ix, _ := setupTestServer(t)
	registerConfirmed(t, ix, -100200, 42)

	req, _ := authRequest("POST", server.URL+"/api/mark-return", token, map[string]any{
		"fotoId": "-100200_42",
		"productos_devueltos": []map[string]any{
			{"producto": "Talla 38", "cantidad": 1},
		},
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var rec model.Record
	json.NewDecoder(resp.Body).Decode(&rec)
	resp.Body.Close()
	if rec.Status != model.StatusReturned {
		t.Errorf("expected estado devuelto, got %q", rec.Status)
	}
	if rec.ReturnedBy != "admin" {
		t.Errorf("expected return initiator admin, got %q", rec.ReturnedBy)
	}

	// A second return on the same photo is rejected.
	req, _ = authRequest("POST", server.URL+"/api/mark-return", token, map[string]any{
		"fotoId": "-100200_42",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for double return, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestMarkReturnUnknownPhoto(t *testing.T) {
	server, token, _, _ := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/mark-return", token, map[string]any{
		"fotoId": "-1_999",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTotalEndpoint(t *testing.T) {
	server, token, _, sales := setupTestServer(t)

	at := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	sales.Append(testSaleGroup, "Maria", "vendido 150", at)
	sales.Append(testSaleGroup, "Maria", "nota interna", at)
	sales.Append(testSaleGroup, "Luis", "$ 320", at)

	req, _ := authRequest("GET", server.URL+"/api/total?fecha=2026-09-01", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var summary saleslog.Summary
	json.NewDecoder(resp.Body).Decode(&summary)
	resp.Body.Close()
	if summary.Total != 470 {
		t.Errorf("expected total 470, got %d", summary.Total)
	}
	if summary.Count != 2 {
		t.Errorf("expected 2 sales, got %d", summary.Count)
	}
}

func TestAnnotationsFlow(t *testing.T) {
	server, token, _, _ := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/save-annotation", token, map[string]any{
		"fotoId":      "-100200_42",
		"anotaciones": []map[string]any{{"x": 10, "y": 20}},
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("GET", server.URL+"/api/annotations/-100200_42", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var doc []map[string]any
	json.NewDecoder(resp.Body).Decode(&doc)
	resp.Body.Close()
	if len(doc) != 1 {
		t.Errorf("expected 1 annotation, got %d", len(doc))
	}

	req, _ = authRequest("GET", server.URL+"/api/annotations/-1_1", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown photo, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDailyReport(t *testing.T) {
	server, _, ix, _ := setupTestServer(t)
	registerConfirmed(t, ix, -100200, 42)

	resp, _ := http.Get(server.URL + "/reportes/2026-09-01")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var page bytes.Buffer
	page.ReadFrom(resp.Body)
	resp.Body.Close()

	html := page.String()
	if !strings.Contains(html, "1000.jpg") {
		t.Error("report should list the confirmed photo")
	}
	if !strings.Contains(html, "azul") {
		t.Error("report should show the extracted color")
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server, token, _, _ := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("GET", server.URL+"/api/records", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
