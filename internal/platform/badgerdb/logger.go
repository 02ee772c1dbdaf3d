package badgerdb

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/phrazzld/filetrack/internal/store"
)

// slogAdapter routes badger's printf-style logging into slog.
// Badger is chatty at info level, so its info output is demoted to debug.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Errorf(format string, args ...interface{}) {
	a.logger.Error(trim(format, args))
}

func (a *slogAdapter) Warningf(format string, args ...interface{}) {
	a.logger.Warn(trim(format, args))
}

func (a *slogAdapter) Infof(format string, args ...interface{}) {
	a.logger.Debug(trim(format, args))
}

func (a *slogAdapter) Debugf(format string, args ...interface{}) {
	a.logger.Debug(trim(format, args))
}

func trim(format string, args []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}

func sortByCreation(records []*store.TaskRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
