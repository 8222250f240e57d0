package history

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/smaro-ai/agent-backend/internal/logger"
	"github.com/smaro-ai/agent-backend/internal/types"
)

// relationalWindow is the medium-term context bound: at most 9 turns,
// always excluding the single most recent row (which is the message the
// agent is currently answering, already delivered in the prompt).
const relationalWindow = 9

// OpenDB opens a fresh database handle. The relational store opens one per
// load and closes it before returning, success or failure.
type OpenDB func() (*gorm.DB, error)

// Relational reads the upstream product's chat table. All failures are
// contained: a broken connection, a failed query or malformed row metadata
// degrade to an empty (or shorter) window, never to an error for the
// caller.
type Relational struct {
	log  *logger.Logger
	open OpenDB
}

func NewRelational(baseLog *logger.Logger, open OpenDB) *Relational {
	return &Relational{
		log:  baseLog.With("component", "RelationalHistory"),
		open: open,
	}
}

// Load returns the conversation's medium-term window, oldest first.
func (r *Relational) Load(ctx context.Context, conversationID string) []types.Turn {
	turns, err := r.load(ctx, conversationID)
	if err != nil {
		r.log.Error("relational history load failed, using empty window", "conversation_id", conversationID, "error", err)
		return nil
	}
	return turns
}

func (r *Relational) load(ctx context.Context, conversationID string) ([]types.Turn, error) {
	db, err := r.open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	}()

	var records []types.ChatRecord
	if err := db.WithContext(ctx).
		Where("chat_conversation_id = ?", conversationID).
		Order("inserted_time").
		Find(&records).Error; err != nil {
		return nil, err
	}

	turns := make([]types.Turn, 0, len(records))
	for _, rec := range records {
		switch rec.Type {
		case rowTypeUser:
			turns = append(turns, types.UserTurn(trimWrappingQuotes(rec.Message)))
		case rowTypeBot:
			for _, fn := range functionsFromMeta(rec.MetaData) {
				turns = append(turns, types.ToolTurn(fn.ToolName, fn.Thought))
			}
			turns = append(turns, types.AssistantTurn(trimWrappingQuotes(rec.Message)))
		}
	}

	return midTermWindow(turns), nil
}

// midTermWindow keeps at most relationalWindow turns, dropping the single
// most recent one. One or zero turns means no usable prior context.
func midTermWindow(turns []types.Turn) []types.Turn {
	if len(turns) <= 1 {
		return nil
	}
	end := len(turns) - 1
	start := end - relationalWindow
	if start < 0 {
		start = 0
	}
	return turns[start:end]
}

type metaFunction struct {
	Thought  string `json:"thought"`
	ToolName string `json:"tool_name"`
}

type chatMeta struct {
	Functions []metaFunction `json:"functions"`
}

// functionsFromMeta expands the bot row's embedded function-call metadata.
// Absent or unparseable metadata yields no turns; a bad row must never
// poison the window.
func functionsFromMeta(raw datatypes.JSON) []metaFunction {
	if len(raw) == 0 {
		return nil
	}
	var meta chatMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil
	}
	return meta.Functions
}

// trimWrappingQuotes strips quote characters the upstream writer wraps
// messages in: double quotes first, then single quotes.
func trimWrappingQuotes(s string) string {
	return strings.Trim(strings.Trim(s, `"`), `'`)
}
