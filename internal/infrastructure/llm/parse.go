package llm

import (
	"encoding/json"
	"strings"

	"github.com/yashdave182/medinote/internal/domain/entity"
)

const ParseFailedText = "Unable to parse response"

// ParseSOAPNote never fails. Content that is not a JSON object is kept in
// Subjective and the other sections carry ParseFailedText.
func ParseSOAPNote(content string) *entity.SOAPNote {
	var note entity.SOAPNote
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &note); err != nil {
		return &entity.SOAPNote{
			SOAPFields: entity.SOAPFields{
				Subjective: content,
				Objective:  ParseFailedText,
				Assessment: ParseFailedText,
				Plan:       ParseFailedText,
			},
		}
	}
	return &note
}

func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// drop the opening fence line, which may carry a language tag
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
