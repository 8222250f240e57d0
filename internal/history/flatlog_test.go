package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smaro-ai/agent-backend/internal/logger"
	"github.com/smaro-ai/agent-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestFlatLogLoadMissingFile(t *testing.T) {
	flat := NewFlatLog(testLogger(t), filepath.Join(t.TempDir(), "data.csv"))
	if turns := flat.Load(); len(turns) != 0 {
		t.Fatalf("missing file should load empty window, got %d turns", len(turns))
	}
}

func TestFlatLogAppendThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	flat := NewFlatLog(testLogger(t), path)

	details := []types.ToolDetail{
		{Thought: "looked up the FAQ", ToolName: "answer_frequently_asked_question"},
		{Thought: "connecting to human", ToolName: "talk_to_human_agent"},
	}
	if err := flat.Append("I can't log in", "Tell user we are connecting you to a human agent. ", details); err != nil {
		t.Fatalf("append: %v", err)
	}

	turns := flat.Load()
	if len(turns) != 4 {
		t.Fatalf("loaded %d turns, want 4", len(turns))
	}

	want := []types.Turn{
		types.UserTurn("I can't log in"),
		types.ToolTurn("answer_frequently_asked_question", "looked up the FAQ"),
		types.ToolTurn("talk_to_human_agent", "connecting to human"),
		types.AssistantTurn("Tell user we are connecting you to a human agent. "),
	}
	for i, w := range want {
		if turns[i] != w {
			t.Fatalf("turn %d = %+v, want %+v", i, turns[i], w)
		}
	}
}

func TestFlatLogHeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	flat := NewFlatLog(testLogger(t), path)

	if err := flat.Append("hi", "Hello there", nil); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := flat.Append("thanks", "Welcome", nil); err != nil {
		t.Fatalf("second append: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if got := strings.Count(string(raw), "id,message,type,tool"); got != 1 {
		t.Fatalf("header occurs %d times, want 1:\n%s", got, raw)
	}

	turns := flat.Load()
	if len(turns) != 4 {
		t.Fatalf("loaded %d turns, want 4", len(turns))
	}
	if turns[3].Role != types.RoleAssistant || turns[3].Content != "Welcome" {
		t.Fatalf("last turn = %+v, want assistant Welcome", turns[3])
	}
}

func TestFlatLogWindowBound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	flat := NewFlatLog(testLogger(t), path)

	// 30 exchanges = 60 rows, far past the 20-turn window.
	for i := 0; i < 30; i++ {
		if err := flat.Append(fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i), nil); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	turns := flat.Load()
	if len(turns) != 20 {
		t.Fatalf("window = %d turns, want 20", len(turns))
	}
	// Trimming keeps the most recent rows in original order.
	if turns[len(turns)-1].Content != "answer 29" {
		t.Fatalf("last turn = %q, want answer 29", turns[len(turns)-1].Content)
	}
	if turns[0].Content != "question 20" {
		t.Fatalf("first turn = %q, want question 20", turns[0].Content)
	}
}

func TestFlatLogBatchIDsArePositional(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	flat := NewFlatLog(testLogger(t), path)

	details := []types.ToolDetail{{Thought: "t", ToolName: "greetings"}}
	if err := flat.Append("hello", "Hello there", details); err != nil {
		t.Fatalf("append: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	// header + 3 rows
	if len(lines) != 4 {
		t.Fatalf("log has %d lines, want 4:\n%s", len(lines), raw)
	}
	for i, line := range lines[1:] {
		if !strings.HasPrefix(line, fmt.Sprintf("%d,", i)) {
			t.Fatalf("row %d does not start with positional id: %q", i, line)
		}
	}
}

func TestFlatLogMessagesWithCommasAndNewlines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	flat := NewFlatLog(testLogger(t), path)

	user := "first line,\nsecond line"
	bot := `reply with "quotes", commas`
	if err := flat.Append(user, bot, nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	turns := flat.Load()
	if len(turns) != 2 {
		t.Fatalf("loaded %d turns, want 2", len(turns))
	}
	if turns[0].Content != user {
		t.Fatalf("user turn = %q, want %q", turns[0].Content, user)
	}
	if turns[1].Content != bot {
		t.Fatalf("bot turn = %q, want %q", turns[1].Content, bot)
	}
}
