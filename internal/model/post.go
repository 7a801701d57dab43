package model

// Post 帖子记录（redis hash: post:<pid>，仅调度所需字段）
type Post struct {
	PID       string
	TID       string
	UID       string
	Content   string
	Timestamp int64

	// Transient view fields attached during notification fan-out; never
	// written back to the store.
	AuthorName string `json:"authorName,omitempty"`
	Topic      *Topic `json:"topic,omitempty"`
}

const (
	PostFieldPID       = "pid"
	PostFieldTID       = "tid"
	PostFieldUID       = "uid"
	PostFieldContent   = "content"
	PostFieldTimestamp = "timestamp"
)

func PostFromFields(fields map[string]string) *Post {
	if len(fields) == 0 {
		return nil
	}
	return &Post{
		PID:       fields[PostFieldPID],
		TID:       fields[PostFieldTID],
		UID:       fields[PostFieldUID],
		Content:   fields[PostFieldContent],
		Timestamp: parseInt64(fields[PostFieldTimestamp]),
	}
}
