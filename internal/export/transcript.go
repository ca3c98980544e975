package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/budeshi/budeshi/internal/domain"
)

const transcriptTimeLayout = "2006-01-02 15:04:05"

// RoleLabel is the speaker name used in transcripts and the chat view.
func RoleLabel(r domain.Role) string {
	switch r {
	case domain.RoleBot:
		return "BUDESHI Assistant"
	case domain.RoleUser:
		return "You"
	default:
		return "System"
	}
}

// Transcript renders turns as "[time] Role:\ncontent\n" blocks separated by
// blank lines. Times are shown in loc (nil means local time).
func Transcript(turns []domain.Turn, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	blocks := make([]string, 0, len(turns))
	for _, t := range turns {
		blocks = append(blocks, fmt.Sprintf("[%s] %s:\n%s\n",
			t.CreatedAt.In(loc).Format(transcriptTimeLayout), RoleLabel(t.Role), t.Content))
	}
	return strings.Join(blocks, "\n")
}

// TranscriptFilename is the default download name for a transcript taken at now.
func TranscriptFilename(now time.Time) string {
	return "budeshi-chat-" + now.UTC().Format(domain.DateLayout) + ".txt"
}
