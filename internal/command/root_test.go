package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
)

const testGuide = "1. 🗼 **Eiffel Tower** | Champ de Mars | Iron landmark | **Pro Tip:** Go at sunset " +
	"2. **Louvre** | Rue de Rivoli | Art museum | **Pro Tip:** Use the Carrousel entrance"

func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// isolateHome points config and history at a temp directory.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"AMELIE_API_BASE", "AMELIE_TIMEOUT", "AMELIE_HISTORY_DB", "AMELIE_NOTIFY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return home
}

type fakeGuideService struct {
	mu         sync.Mutex
	guideText  string
	chatReply  string
	chatCity   string
	favorites  []map[string]string
	guideCalls int
}

func newFakeGuideService(t *testing.T) (*fakeGuideService, *httptest.Server) {
	t.Helper()
	svc := &fakeGuideService{guideText: testGuide, chatReply: "Try the crêpes."}
	server := httptest.NewServer(http.HandlerFunc(svc.serveHTTP))
	t.Cleanup(server.Close)
	return svc, server
}

func (s *fakeGuideService) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/guide" && r.Method == http.MethodPost:
		s.guideCalls++
		_ = json.NewEncoder(w).Encode(map[string]string{
			"guide_content": s.guideText,
			"timestamp":     "2025-09-18 10:00:00",
		})
	case r.URL.Path == "/chat" && r.Method == http.MethodPost:
		var req struct {
			CityContext string `json:"city_context"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.chatCity = req.CityContext
		_ = json.NewEncoder(w).Encode(map[string]string{"response": s.chatReply})
	case r.URL.Path == "/favorites" && r.Method == http.MethodPost:
		var req struct {
			City      string `json:"city"`
			PlaceName string `json:"place_name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.favorites = append(s.favorites, map[string]string{"City": req.City, "Favorite Place": req.PlaceName})
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Saved " + req.PlaceName})
	case r.URL.Path == "/favorites" && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"favorites": s.favorites, "count": len(s.favorites)})
	case r.URL.Path == "/favorites" && r.Method == http.MethodDelete:
		s.favorites = nil
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Cleared"})
	default:
		http.NotFound(w, r)
	}
}

func TestRootCommandVersion(t *testing.T) {
	cmd := NewRootCmd("test")

	output, err := executeCommand(cmd, "--version")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(output, "amelie version test") {
		t.Fatalf("expected version output, got %q", output)
	}
}

func TestRootCommandHelp(t *testing.T) {
	cmd := NewRootCmd("test")

	output, err := executeCommand(cmd)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(output, "Amelie") {
		t.Fatalf("expected help output, got %q", output)
	}
}

func TestGuideCommandPrintsPlacesAndRecordsHistory(t *testing.T) {
	isolateHome(t)
	_, server := newFakeGuideService(t)

	output, err := executeCommand(NewRootCmd("test"), "--api", server.URL, "guide", "paris")
	if err != nil {
		t.Fatalf("guide: %v\n%s", err, output)
	}
	for _, want := range []string{"Guide for Paris (2025-09-18 10:00:00)", "1. Eiffel Tower", "Champ de Mars", "Pro tip: Use the Carrousel entrance"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output:\n%s", want, output)
		}
	}

	output, err = executeCommand(NewRootCmd("test"), "history", "--json")
	if err != nil {
		t.Fatalf("history: %v\n%s", err, output)
	}
	var records []struct {
		City       string `json:"city"`
		PlaceCount int    `json:"place_count"`
	}
	if err := json.Unmarshal([]byte(output), &records); err != nil {
		t.Fatalf("decode history: %v\n%s", err, output)
	}
	if len(records) != 1 || records[0].City != "paris" || records[0].PlaceCount != 2 {
		t.Fatalf("history: got %+v", records)
	}
}

func TestGuideCommandJSON(t *testing.T) {
	isolateHome(t)
	_, server := newFakeGuideService(t)

	output, err := executeCommand(NewRootCmd("test"), "--api", server.URL, "--json", "guide", "new", "york")
	if err != nil {
		t.Fatalf("guide: %v\n%s", err, output)
	}
	var guide struct {
		City   string `json:"city"`
		Places []struct {
			Name string `json:"name"`
			Tip  string `json:"tip"`
		} `json:"places"`
	}
	if err := json.Unmarshal([]byte(output), &guide); err != nil {
		t.Fatalf("decode: %v\n%s", err, output)
	}
	if guide.City != "new york" || len(guide.Places) != 2 {
		t.Fatalf("guide: got %+v", guide)
	}
	if guide.Places[0].Name != "Eiffel Tower" || guide.Places[0].Tip != "Go at sunset" {
		t.Fatalf("first place: got %+v", guide.Places[0])
	}
}

func TestGuideCommandFallsBackToRawText(t *testing.T) {
	isolateHome(t)
	svc, server := newFakeGuideService(t)
	svc.guideText = "Paris is best explored on foot."

	output, err := executeCommand(NewRootCmd("test"), "--api", server.URL, "guide", "paris")
	if err != nil {
		t.Fatalf("guide: %v\n%s", err, output)
	}
	if !strings.Contains(output, "No structured places found") || !strings.Contains(output, "explored on foot") {
		t.Fatalf("expected raw fallback, got:\n%s", output)
	}
}

func TestGuideCommandNetworkError(t *testing.T) {
	isolateHome(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	output, err := executeCommand(NewRootCmd("test"), "--api", url, "guide", "paris")
	if err == nil {
		t.Fatalf("expected error, got output:\n%s", output)
	}
	if !strings.Contains(output, "Hint: Could not reach the guide service") {
		t.Fatalf("expected network hint, got:\n%s", output)
	}
}

func TestFaveAndFavesCommands(t *testing.T) {
	isolateHome(t)
	svc, server := newFakeGuideService(t)

	output, err := executeCommand(NewRootCmd("test"), "--api", server.URL, "fave", "--city", "Paris", "Louvre", "Musée d'Orsay")
	if err != nil {
		t.Fatalf("fave: %v\n%s", err, output)
	}
	for _, want := range []string{"Saved Louvre", "Saved Musée d'Orsay", "★ Louvre (Paris)"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output:\n%s", want, output)
		}
	}
	if len(svc.favorites) != 2 {
		t.Fatalf("expected two saved favorites, got %d", len(svc.favorites))
	}

	output, err = executeCommand(NewRootCmd("test"), "--api", server.URL, "faves", "--match", "*ORSAY*")
	if err != nil {
		t.Fatalf("faves: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Musée d'Orsay") || strings.Contains(output, "Louvre") {
		t.Fatalf("expected only the matching favorite, got:\n%s", output)
	}

	output, err = executeCommand(NewRootCmd("test"), "--api", server.URL, "faves", "clear")
	if err != nil {
		t.Fatalf("clear: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Cleared favorites") {
		t.Fatalf("unexpected clear output:\n%s", output)
	}

	output, err = executeCommand(NewRootCmd("test"), "--api", server.URL, "faves")
	if err != nil {
		t.Fatalf("faves: %v\n%s", err, output)
	}
	if !strings.Contains(output, "No favorites saved") {
		t.Fatalf("expected empty list, got:\n%s", output)
	}
}

func TestFaveWithoutCityNeedsGuide(t *testing.T) {
	isolateHome(t)
	_, server := newFakeGuideService(t)

	output, err := executeCommand(NewRootCmd("test"), "--api", server.URL, "fave", "Louvre")
	if err == nil {
		t.Fatalf("expected error, got output:\n%s", output)
	}
	if !strings.Contains(output, "Hint: Generate a guide first, or pass --city.") {
		t.Fatalf("expected hint, got:\n%s", output)
	}
}

func TestAskCommand(t *testing.T) {
	isolateHome(t)
	svc, server := newFakeGuideService(t)

	output, err := executeCommand(NewRootCmd("test"), "--api", server.URL, "ask", "--city", "Lyon", "best", "bouchon?")
	if err != nil {
		t.Fatalf("ask: %v\n%s", err, output)
	}
	if strings.TrimSpace(output) != "Try the crêpes." {
		t.Fatalf("unexpected reply %q", output)
	}
	if svc.chatCity != "Lyon" {
		t.Fatalf("city context: got %q", svc.chatCity)
	}

	if _, err := executeCommand(NewRootCmd("test"), "--api", server.URL, "ask", "where?"); err == nil {
		t.Fatal("expected error without --city")
	}
}

func TestConfigSetGet(t *testing.T) {
	home := isolateHome(t)

	output, err := executeCommand(NewRootCmd("test"), "config", "api-base", "https://guides.example.com")
	if err != nil {
		t.Fatalf("set: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Set api_base = https://guides.example.com") {
		t.Fatalf("unexpected set output %q", output)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "amelie", "config.json")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	output, err = executeCommand(NewRootCmd("test"), "config", "api_base")
	if err != nil {
		t.Fatalf("get: %v\n%s", err, output)
	}
	if strings.TrimSpace(output) != "api_base: https://guides.example.com" {
		t.Fatalf("unexpected get output %q", output)
	}

	output, err = executeCommand(NewRootCmd("test"), "config")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, output)
	}
	if !strings.Contains(output, "api_base: https://guides.example.com") {
		t.Fatalf("expected effective api_base, got:\n%s", output)
	}

	if _, err := executeCommand(NewRootCmd("test"), "config", "timeout_seconds", "soon"); err == nil {
		t.Fatal("expected error for invalid timeout")
	}
	if _, err := executeCommand(NewRootCmd("test"), "config", "nope"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestHistoryShowAndRemove(t *testing.T) {
	isolateHome(t)
	_, server := newFakeGuideService(t)

	if output, err := executeCommand(NewRootCmd("test"), "--api", server.URL, "guide", "rome"); err != nil {
		t.Fatalf("guide: %v\n%s", err, output)
	}

	output, err := executeCommand(NewRootCmd("test"), "history", "--json")
	if err != nil {
		t.Fatalf("history: %v\n%s", err, output)
	}
	var records []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(output), &records); err != nil || len(records) != 1 {
		t.Fatalf("decode history: %v %+v", err, records)
	}
	id := records[0].ID

	output, err = executeCommand(NewRootCmd("test"), "history", "show", id)
	if err != nil {
		t.Fatalf("show: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Guide for Rome") || !strings.Contains(output, "Eiffel Tower") {
		t.Fatalf("unexpected show output:\n%s", output)
	}

	output, err = executeCommand(NewRootCmd("test"), "history", "rm", id)
	if err != nil {
		t.Fatalf("rm: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Deleted "+id) {
		t.Fatalf("unexpected rm output %q", output)
	}

	output, err = executeCommand(NewRootCmd("test"), "history")
	if err != nil {
		t.Fatalf("history: %v\n%s", err, output)
	}
	if !strings.Contains(output, "No guides recorded") {
		t.Fatalf("expected empty history, got:\n%s", output)
	}
}

func TestChatRejectsJSON(t *testing.T) {
	isolateHome(t)
	if _, err := executeCommand(NewRootCmd("test"), "--json", "chat"); err == nil {
		t.Fatal("expected error for --json chat")
	}
}
