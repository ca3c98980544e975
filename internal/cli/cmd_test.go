package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/budeshi/budeshi/internal/config"
	"github.com/budeshi/budeshi/internal/contract"
	"github.com/budeshi/budeshi/internal/export"
	"github.com/budeshi/budeshi/internal/intelligence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCmd_AnswersLocally(t *testing.T) {
	isolate(t)

	out, err := executeCmd(t, "", "ask", "What is the budget for Abuja Light Rail Project?")
	require.NoError(t, err)
	assert.Contains(t, out, "Budget: ₦45,000,000,000")
	assert.Contains(t, out, "Spent: ₦52,000,000,000")
}

func TestAskCmd_JSON(t *testing.T) {
	isolate(t)

	out, err := executeCmd(t, "", "ask", "--json", "Which", "projects", "are", "delayed?")
	require.NoError(t, err)

	var resp contract.ChatResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "local", resp.Path)
	assert.Equal(t, "bot", resp.Reply.Role)
	assert.Equal(t, "Which projects are delayed?", resp.UserTurn.Content)
	assert.Empty(t, resp.Error)
}

func TestAskCmd_ExternalWithoutKey(t *testing.T) {
	isolate(t)

	out, err := executeCmd(t, "", "ask", "--mode", "external", "Tell me about the Second Niger Bridge")
	require.Error(t, err)
	assert.Contains(t, out, intelligence.MissingKeyText)
	assert.Contains(t, err.Error(), "resolving question")
}

func TestAskCmd_BlankQuestion(t *testing.T) {
	isolate(t)

	_, err := executeCmd(t, "", "ask", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blank")
}

func TestProjectsList_Filters(t *testing.T) {
	isolate(t)

	out, err := executeCmd(t, "", "projects", "list", "--status", "Delayed")
	require.NoError(t, err)
	assert.Contains(t, out, "Primary Healthcare Centers Renovation")
	assert.NotContains(t, out, "Abuja Light Rail Project")
	assert.Contains(t, out, "1 project(s)")

	out, err = executeCmd(t, "", "projects", "list", "--min-budget", "300000000000", "--json")
	require.NoError(t, err)
	var list contract.ProjectList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "5", list.Projects[0].ID)
	assert.Equal(t, "6", list.Projects[1].ID)
}

func TestProjectsList_RejectsNegativeBudget(t *testing.T) {
	isolate(t)

	_, err := executeCmd(t, "", "projects", "list", "--max-budget=-1")
	require.Error(t, err)
}

func TestProjectsShow(t *testing.T) {
	isolate(t)

	out, err := executeCmd(t, "", "projects", "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Abuja Light Rail Project")
	assert.Contains(t, out, "CCECC Nigeria Limited")

	_, err = executeCmd(t, "", "projects", "show", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `project "99" not found`)
}

func TestProjectsSearch(t *testing.T) {
	isolate(t)

	out, err := executeCmd(t, "", "projects", "search", "lagos")
	require.NoError(t, err)
	first := strings.Index(out, "Lagos-Ibadan")
	second := strings.Index(out, "Lekki Deep Sea Port")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
}

func TestProjectsStatsAndFacets(t *testing.T) {
	isolate(t)

	out, err := executeCmd(t, "", "projects", "stats", "--json")
	require.NoError(t, err)
	var stats contract.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, int64(6_671_870_000_000), stats.TotalBudget)

	out, err = executeCmd(t, "", "projects", "facets")
	require.NoError(t, err)
	assert.Contains(t, out, "Ministry of Works and Housing")
}

func TestProjectsExport(t *testing.T) {
	isolate(t)

	out, err := executeCmd(t, "", "projects", "export", "--out", "-", "--status", "Completed")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(export.Header, ","), lines[0])

	out, err = executeCmd(t, "", "projects", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 6 projects")
	_, err = os.Stat(export.ProjectsFilename(time.Now()))
	assert.NoError(t, err)
}

func TestProjectsAddImportDelete_SharedStore(t *testing.T) {
	isolate(t)
	build := sharedApp(t)

	out, err := executeWith(t, build, "", "projects", "add",
		"--id", "kano-1",
		"--name", "Kano Water Supply",
		"--budget", "12,000,000,000",
		"--start", "2024-01-01",
		"--end", "2026-12-31",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Added project Kano Water Supply (kano-1)")

	out, err = executeWith(t, build, "", "projects", "show", "kano-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Planning Phase")
	assert.Contains(t, out, "₦12,000,000,000")

	doc := `projects:
  - {id: "ib-1", name: Ibadan Ring Road, status: In Progress, budget: 10, spent: 2, start_date: "2023-01-01", end_date: "2025-01-01"}
`
	path := filepath.Join(t.TempDir(), "more.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	out, err = executeWith(t, build, "", "projects", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 projects.")

	_, err = executeWith(t, build, "", "projects", "delete", "kano-1")
	require.NoError(t, err)
	_, err = executeWith(t, build, "", "projects", "delete", "kano-1")
	require.Error(t, err)

	out, err = executeWith(t, build, "", "projects", "list", "--json")
	require.NoError(t, err)
	var list contract.ProjectList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, 7, list.Count)
}

func TestProjectsAdd_RejectsBadInput(t *testing.T) {
	isolate(t)

	_, err := executeCmd(t, "", "projects", "add", "--name", "X", "--budget", "-5", "--start", "2024-01-01", "--end", "2024-02-01")
	require.Error(t, err)

	_, err = executeCmd(t, "", "projects", "add", "--name", "X", "--start", "01/01/2024", "--end", "2024-02-01")
	require.Error(t, err)
}

func TestProjectsImport_UnknownExtension(t *testing.T) {
	isolate(t)

	_, err := executeCmd(t, "", "projects", "import", "projects.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported import file")
}

func TestKeyCmd_SetStatusClear(t *testing.T) {
	isolate(t)
	build := sharedApp(t)

	out, err := executeWith(t, build, "", "key", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not configured")

	out, err = executeWith(t, build, "sk-test-abcd1234\n", "key", "set")
	require.NoError(t, err)
	assert.Contains(t, out, "1234")
	assert.NotContains(t, out, "sk-test")

	out, err = executeWith(t, build, "", "key", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "1234")
	// --mode local pins the path regardless of the key.
	assert.Contains(t, out, "Path:    local")

	_, err = executeWith(t, build, "", "key", "clear")
	require.NoError(t, err)
	out, err = executeWith(t, build, "", "key", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not configured")
}

func TestKeyCmd_SetRejectsEmptyInput(t *testing.T) {
	isolate(t)

	_, err := executeCmd(t, "\n", "key", "set")
	require.Error(t, err)
}

func TestKeyCmd_RequiresSettingsStore(t *testing.T) {
	isolate(t)
	build := func(ctx context.Context, cfg *config.Config) (*App, error) {
		app, err := Wire(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.StoredKey = nil
		return app, nil
	}

	_, err := executeWith(t, build, "sk-test\n", "key", "set")
	require.ErrorIs(t, err, errNoSettings)
}

func TestChatCmd_LineMode(t *testing.T) {
	isolate(t)

	in := "Who is the contractor for Lekki Deep Sea Port Development?\n/quit\nnever read\n"
	out, err := executeCmd(t, in, "chat", "--no-save")
	require.NoError(t, err)
	assert.Contains(t, out, "BUDESHI assistant")
	assert.Contains(t, out, "China Harbour Engineering Company")
	assert.NotContains(t, out, "never read")
}

func TestChatCmd_ResumesSavedConversation(t *testing.T) {
	isolate(t)
	build := sharedApp(t)

	out, err := executeWith(t, build, "Where is the Mambilla Hydroelectric Power Project?\n", "chat")
	require.NoError(t, err)
	out = stripANSI(out)
	idx := strings.Index(out, "Conversation ")
	require.NotEqual(t, -1, idx)
	convID := strings.Fields(out[idx+len("Conversation "):])[0]

	out, err = executeWith(t, build, "", "chat", "--resume", convID)
	require.NoError(t, err)
	assert.Contains(t, out, "Taraba State")
}

func TestRunSlashCommand(t *testing.T) {
	isolate(t)
	session := newTestSession(t)
	ctx := context.Background()

	quit, _, err := runSlashCommand(ctx, session, "/exit", time.Now())
	require.NoError(t, err)
	assert.True(t, quit)

	target := filepath.Join(t.TempDir(), "chat.txt")
	_, msg, err := runSlashCommand(ctx, session, "/export "+target, time.Now())
	require.NoError(t, err)
	assert.Contains(t, msg, "chat.txt")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "BUDESHI Assistant")

	before := session.ConversationID()
	_, msg, err = runSlashCommand(ctx, session, "/clear", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Conversation cleared.", msg)
	assert.NotEqual(t, before, session.ConversationID())

	_, _, err = runSlashCommand(ctx, session, "/frobnicate", time.Now())
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	v, err := parseAmount(" 45,000,000,000 ")
	require.NoError(t, err)
	assert.Equal(t, int64(45_000_000_000), v)

	v, err = parseAmount("")
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = parseAmount("1.5")
	assert.Error(t, err)
	_, err = parseAmount("-1")
	assert.Error(t, err)
}
