package domain

// SocialMetrics is the latest social analytics snapshot for a coin.
// Written by an external analytics collaborator, read-only for views.
type SocialMetrics struct {
	Mint         string
	HolderCount  int64   // >= 0
	SocialScore  float64 // 0..100
	MentionCount int64   // >= 0
	Sentiment    float64 // >0 positive, <0 negative, 0 neutral
	UpdatedAt    int64   // ms
}
