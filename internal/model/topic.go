package model

import "strconv"

// Topic 话题记录（redis hash: topic:<tid>）
type Topic struct {
	TID          string
	CID          string
	UID          string
	MainPID      string
	Timestamp    int64 // due time for scheduled topics, epoch ms
	LastPostTime int64
	PostCount    int64
	ViewCount    int64
	Votes        string // kept raw; scoring coerces, see VoteScore
	Pinned       bool
	PinExpiry    int64
	Deleted      bool
}

// Topic hash field names. These mirror the storage schema and must not drift
// from what the creation path writes.
const (
	FieldTID          = "tid"
	FieldCID          = "cid"
	FieldUID          = "uid"
	FieldMainPID      = "mainPid"
	FieldTimestamp    = "timestamp"
	FieldLastPostTime = "lastposttime"
	FieldPostCount    = "postcount"
	FieldViewCount    = "viewcount"
	FieldVotes        = "votes"
	FieldPinned       = "pinned"
	FieldPinExpiry    = "pinExpiry"
	FieldDeleted      = "deleted"
	FieldDeleterUID   = "deleterUid"
)

// TopicFromFields builds a Topic from a raw hash. Missing or malformed numeric
// fields become zero values rather than errors.
func TopicFromFields(fields map[string]string) *Topic {
	if len(fields) == 0 {
		return nil
	}
	return &Topic{
		TID:          fields[FieldTID],
		CID:          fields[FieldCID],
		UID:          fields[FieldUID],
		MainPID:      fields[FieldMainPID],
		Timestamp:    parseInt64(fields[FieldTimestamp]),
		LastPostTime: parseInt64(fields[FieldLastPostTime]),
		PostCount:    parseInt64(fields[FieldPostCount]),
		ViewCount:    parseInt64(fields[FieldViewCount]),
		Votes:        fields[FieldVotes],
		Pinned:       fields[FieldPinned] == "1",
		PinExpiry:    parseInt64(fields[FieldPinExpiry]),
		Deleted:      fields[FieldDeleted] == "1",
	}
}

// VoteScore coerces the raw votes field to an index score, defaulting to 0 on
// malformed input.
func (t *Topic) VoteScore() int64 {
	n, err := strconv.ParseInt(t.Votes, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// IsGuest reports whether the topic has no owning user.
func (t *Topic) IsGuest() bool {
	return t.UID == "" || t.UID == "0"
}

func parseInt64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
