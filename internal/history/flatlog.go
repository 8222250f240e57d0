// Package history loads bounded conversation windows from the two
// history sources (append-only flat log, upstream relational chat table)
// and appends finished turns back to the flat log.
package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"

	"github.com/smaro-ai/agent-backend/internal/logger"
	"github.com/smaro-ai/agent-backend/internal/types"
)

// flatWindow is the short-term context bound: the last 20 rows of the
// flat log.
const flatWindow = 20

const (
	rowTypeUser     = "user"
	rowTypeFunction = "function"
	rowTypeBot      = "bot"
)

var flatHeader = []string{"id", "message", "type", "tool"}

// FlatLog is the append-only CSV history log (columns id,message,type,tool).
// The mutex serializes writers within this process only; concurrent writer
// processes would need external locking, and losing the occasional row to
// write contention is accepted for this log.
type FlatLog struct {
	log  *logger.Logger
	path string
	mu   sync.Mutex
}

func NewFlatLog(baseLog *logger.Logger, path string) *FlatLog {
	return &FlatLog{
		log:  baseLog.With("component", "FlatLog", "path", path),
		path: path,
	}
}

// Load returns the last 20 turns of the flat log, oldest first. A missing
// file is an empty window, not an error; anything else unreadable is
// logged and also yields an empty window.
func (f *FlatLog) Load() []types.Turn {
	file, err := os.Open(f.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.log.Warn("flat log unreadable, using empty window", "error", err)
		}
		return nil
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		f.log.Warn("flat log parse failed, using empty window", "error", err)
		return nil
	}

	turns := make([]types.Turn, 0, len(records))
	for i, rec := range records {
		if i == 0 && isHeader(rec) {
			continue
		}
		if len(rec) < 4 {
			continue
		}
		message, rowType, tool := rec[1], rec[2], rec[3]
		switch rowType {
		case rowTypeUser:
			turns = append(turns, types.UserTurn(message))
		case rowTypeFunction:
			turns = append(turns, types.ToolTurn(tool, message))
		default:
			turns = append(turns, types.AssistantTurn(message))
		}
	}

	if len(turns) > flatWindow {
		turns = turns[len(turns)-flatWindow:]
	}
	return turns
}

// Append persists one logical exchange as rows: the user row first, one
// function row per tool detail in invocation order, then the bot row.
// The header is written only when the file is created. Row ids are the
// position within the batch; the log is only ever read back as a recency
// window, never by id.
func (f *FlatLog) Append(userMessage, botMessage string, details []types.ToolDetail) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, statErr := os.Stat(f.path)
	writeHeader := errors.Is(statErr, fs.ErrNotExist)

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open flat log: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if writeHeader {
		if err := writer.Write(flatHeader); err != nil {
			return fmt.Errorf("write flat log header: %w", err)
		}
	}

	rows := make([][]string, 0, len(details)+2)
	rows = append(rows, []string{userMessage, rowTypeUser, ""})
	for _, d := range details {
		rows = append(rows, []string{d.Thought, rowTypeFunction, d.ToolName})
	}
	rows = append(rows, []string{botMessage, rowTypeBot, ""})

	for i, row := range rows {
		record := append([]string{strconv.Itoa(i)}, row...)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write flat log row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush flat log: %w", err)
	}
	return nil
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && rec[0] == "id"
}
