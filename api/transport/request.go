package transport

import "time"

type ProfileUpdateRequest struct {
	Username string            `json:"username"`
	Email    string            `json:"email"`
	Meta     map[string]string `json:"metadata"`
}

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	TTL    int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

type FavoriteRequest struct {
	RelicID string `json:"relic_id"`
	Note    string `json:"note"`
}

type FavoriteNoteRequest struct {
	Note string `json:"note"`
}

type CommentPostRequest struct {
	RelicID string `json:"relic_id"`
	Content string `json:"content"`
}

type CommentEditRequest struct {
	Content string `json:"content"`
}

type ModerationRequest struct {
	AuthorID string `json:"author_id"`
}

type GalleryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type GalleryRelicRequest struct {
	RelicID string `json:"relic_id"`
}

type ReadingRequest struct {
	ID         string    `json:"id"`
	SensorID   string    `json:"sensor_id"`
	RelicID    string    `json:"relic_id"`
	Metric     string    `json:"metric"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}
