package model

import "strconv"

// Notification 通知记录（redis hash: notification:<nid>）
type Notification struct {
	NID       string `json:"nid"`
	Type      string `json:"type"`
	TID       string `json:"tid"`
	FromUID   string `json:"fromUid"`
	BodyShort string `json:"bodyShort"`
	Path      string `json:"path"`
	Datetime  int64  `json:"datetime"`
}

func (n *Notification) Fields() map[string]string {
	return map[string]string{
		"nid":       n.NID,
		"type":      n.Type,
		"tid":       n.TID,
		"fromUid":   n.FromUID,
		"bodyShort": n.BodyShort,
		"path":      n.Path,
		"datetime":  strconv.FormatInt(n.Datetime, 10),
	}
}
