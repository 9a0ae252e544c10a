package models

// SnapshotVersion is bumped whenever the persisted layout changes.
const SnapshotVersion = 1

// Snapshot is the whole logical state written to and read from the durable
// store in one piece.
type Snapshot struct {
	Version       int                        `json:"version"`
	Users         []*User                    `json:"users"`
	Prayers       []*Prayer                  `json:"prayers"`
	Circulos      []*Circulo                 `json:"circulos"`
	Credentials   map[string]string          `json:"credentials"`
	Push_Tokens   map[string][]PushToken     `json:"pushTokens"`
	Notifications map[string][]*Notification `json:"notifications,omitempty"`
}
