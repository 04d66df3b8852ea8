// internal/video/rooms.go
package video

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"loan-review-console/internal/common/config"
)

// Rooms derives verification room identity from the application id alone,
// so agent and applicant land in the same room with no coordination step.
type Rooms struct {
	baseURL string
	prefix  string
}

func NewRooms(cfg config.VideoConfig) *Rooms {
	return &Rooms{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		prefix:  cfg.RoomPrefix,
	}
}

// RoomID is stable for a given application id.
func (r *Rooms) RoomID(applicationID string) string {
	sum := sha256.Sum256([]byte(applicationID))
	return fmt.Sprintf("%s-%s", r.prefix, hex.EncodeToString(sum[:])[:12])
}

func (r *Rooms) JoinURL(applicationID string) string {
	return fmt.Sprintf("%s/%s", r.baseURL, r.RoomID(applicationID))
}
