package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/smaro-ai/agent-backend/internal/types"
)

func seedChatDB(t *testing.T, records []types.ChatRecord) OpenDB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.db")

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	if err := db.AutoMigrate(&types.ChatRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(records) > 0 {
		if err := db.Create(&records).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("seed db handle: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close seed db: %v", err)
	}

	return func() (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	}
}

func chatRow(conversationID string, seq int, rowType, message string, meta []byte) types.ChatRecord {
	rec := types.ChatRecord{
		ChatConversationID: conversationID,
		UserID:             "42",
		Message:            message,
		Type:               rowType,
		InsertedTime:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(seq) * time.Minute),
	}
	if meta != nil {
		rec.MetaData = datatypes.JSON(meta)
	}
	return rec
}

func TestRelationalLoadExpandsMetadataAndTrimsQuotes(t *testing.T) {
	meta := []byte(`{"functions":[{"thought":"Checked the FAQ index","tool_name":"answer_frequently_asked_question"}]}`)
	open := seedChatDB(t, []types.ChatRecord{
		chatRow("7", 0, "user", `"how do I upload scans?"`, nil),
		chatRow("7", 1, "bot", `'Use the upload panel on the left.'`, meta),
		chatRow("7", 2, "user", "thanks", nil),
	})

	rel := NewRelational(testLogger(t), open)
	turns := rel.Load(context.Background(), "7")

	// The most recent row is excluded from the window.
	want := []types.Turn{
		types.UserTurn("how do I upload scans?"),
		types.ToolTurn("answer_frequently_asked_question", "Checked the FAQ index"),
		types.AssistantTurn("Use the upload panel on the left."),
	}
	if len(turns) != len(want) {
		t.Fatalf("loaded %d turns, want %d: %+v", len(turns), len(want), turns)
	}
	for i, w := range want {
		if turns[i] != w {
			t.Fatalf("turn %d = %+v, want %+v", i, turns[i], w)
		}
	}
}

func TestRelationalWindowBound(t *testing.T) {
	var records []types.ChatRecord
	for i := 0; i < 15; i++ {
		records = append(records, chatRow("9", 2*i, "user", fmt.Sprintf("q%d", i), nil))
		records = append(records, chatRow("9", 2*i+1, "bot", fmt.Sprintf("a%d", i), nil))
	}
	open := seedChatDB(t, records)

	rel := NewRelational(testLogger(t), open)
	turns := rel.Load(context.Background(), "9")

	if len(turns) != 9 {
		t.Fatalf("window = %d turns, want 9", len(turns))
	}
	// 30 rows total: the window is rows [20:29), so the newest row (a14) is
	// excluded and the last kept turn is q14.
	if last := turns[len(turns)-1]; last.Content != "q14" {
		t.Fatalf("last turn = %+v, want user q14", last)
	}
	if first := turns[0]; first.Content != "q10" {
		t.Fatalf("first turn = %+v, want user q10", first)
	}
}

func TestRelationalMalformedMetadataIsAbsent(t *testing.T) {
	open := seedChatDB(t, []types.ChatRecord{
		chatRow("3", 0, "user", "hello", nil),
		chatRow("3", 1, "bot", "Hello there", []byte(`{"functions": not-json`)),
		chatRow("3", 2, "user", "bye", nil),
	})

	rel := NewRelational(testLogger(t), open)
	turns := rel.Load(context.Background(), "3")

	want := []types.Turn{
		types.UserTurn("hello"),
		types.AssistantTurn("Hello there"),
	}
	if len(turns) != len(want) {
		t.Fatalf("loaded %d turns, want %d: %+v", len(turns), len(want), turns)
	}
	for i, w := range want {
		if turns[i] != w {
			t.Fatalf("turn %d = %+v, want %+v", i, turns[i], w)
		}
	}
}

func TestRelationalSkipsUnknownRowTypes(t *testing.T) {
	open := seedChatDB(t, []types.ChatRecord{
		chatRow("5", 0, "user", "hi", nil),
		chatRow("5", 1, "system", "internal note", nil),
		chatRow("5", 2, "bot", "Hello there", nil),
		chatRow("5", 3, "user", "latest", nil),
	})

	rel := NewRelational(testLogger(t), open)
	turns := rel.Load(context.Background(), "5")

	if len(turns) != 2 {
		t.Fatalf("loaded %d turns, want 2: %+v", len(turns), turns)
	}
	if turns[0].Role != types.RoleUser || turns[1].Role != types.RoleAssistant {
		t.Fatalf("unexpected roles: %+v", turns)
	}
}

func TestRelationalOpenFailureYieldsEmptyWindow(t *testing.T) {
	open := func() (*gorm.DB, error) {
		return nil, fmt.Errorf("connection refused")
	}
	rel := NewRelational(testLogger(t), open)

	turns := rel.Load(context.Background(), "1")
	if len(turns) != 0 {
		t.Fatalf("open failure should yield empty window, got %d turns", len(turns))
	}
}

func TestRelationalSingleRowYieldsEmptyWindow(t *testing.T) {
	open := seedChatDB(t, []types.ChatRecord{
		chatRow("2", 0, "user", "only message", nil),
	})
	rel := NewRelational(testLogger(t), open)

	if turns := rel.Load(context.Background(), "2"); len(turns) != 0 {
		t.Fatalf("single-row conversation should yield empty window, got %+v", turns)
	}
}

func TestRelationalFiltersByConversation(t *testing.T) {
	open := seedChatDB(t, []types.ChatRecord{
		chatRow("1", 0, "user", "conv1 q", nil),
		chatRow("1", 1, "bot", "conv1 a", nil),
		chatRow("1", 2, "user", "conv1 latest", nil),
		chatRow("2", 0, "user", "conv2 q", nil),
	})
	rel := NewRelational(testLogger(t), open)

	turns := rel.Load(context.Background(), "1")
	for _, turn := range turns {
		if turn.Content == "conv2 q" {
			t.Fatalf("window leaked another conversation's row: %+v", turns)
		}
	}
	if len(turns) != 2 {
		t.Fatalf("loaded %d turns, want 2: %+v", len(turns), turns)
	}
}
