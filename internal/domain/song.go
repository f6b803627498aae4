package domain

// Song is immutable once created; commands remove or reorder it but never
// change its fields. Field names follow the wire protocol (camelCase).
type Song struct {
	Id           string `json:"id"`
	YoutubeId    string `json:"youtubeId"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Duration     int    `json:"duration"`
	ThumbnailUrl string `json:"thumbnailUrl"`
	AddedBy      string `json:"addedBy"`
	AddedAt      int64  `json:"addedAt"`
}
