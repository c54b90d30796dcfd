package model

type TrackingKey string

const (
	TrackingGoogleAnalytics  TrackingKey = "GOOGLE_ANALYTICS_ID"
	TrackingGoogleTagManager TrackingKey = "GOOGLE_TAG_MANAGER_ID"
	TrackingFacebookPixel    TrackingKey = "FACEBOOK_PIXEL_ID"
	TrackingTikTokPixel      TrackingKey = "TIKTOK_PIXEL_ID"
	TrackingHotjar           TrackingKey = "HOTJAR_ID"
)

// TrackingKeys is the fixed set of provider keys, in display order.
var TrackingKeys = []TrackingKey{
	TrackingGoogleAnalytics,
	TrackingGoogleTagManager,
	TrackingFacebookPixel,
	TrackingTikTokPixel,
	TrackingHotjar,
}

func ParseTrackingKey(s string) (TrackingKey, bool) {
	for _, k := range TrackingKeys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

type TrackingEntry struct {
	Value        string `json:"value"`
	IsActive     bool   `json:"isActive"`
	IsConfigured bool   `json:"isConfigured"`
}

type TrackingConfig map[TrackingKey]TrackingEntry

// NewTrackingConfig builds the full key set from stored rows. Keys outside the
// enumeration are ignored, absent keys come back empty and unconfigured.
func NewTrackingConfig(rows []SystemConfig) TrackingConfig {
	cfg := make(TrackingConfig, len(TrackingKeys))
	for _, k := range TrackingKeys {
		cfg[k] = TrackingEntry{}
	}

	for _, row := range rows {
		key, ok := ParseTrackingKey(row.Key)
		if !ok {
			continue
		}
		cfg[key] = TrackingEntry{
			Value:        row.Value,
			IsActive:     row.IsActive,
			IsConfigured: row.Value != "",
		}
	}

	return cfg
}

// ActiveValue returns the value for key when it is both configured and active.
func (c TrackingConfig) ActiveValue(key TrackingKey) (string, bool) {
	entry, ok := c[key]
	if !ok || !entry.IsActive || !entry.IsConfigured {
		return "", false
	}
	return entry.Value, true
}
