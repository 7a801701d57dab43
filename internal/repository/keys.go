package repository

import "fmt"

// ScheduledKey is the single global queue of not-yet-visible topics,
// member=tid scored by due time (epoch ms). Presence here is the
// authoritative "still scheduled" signal.
const ScheduledKey = "topics:scheduled"

// TopicsByTimestampKey orders every topic by creation/due time.
const TopicsByTimestampKey = "topics:tid"

func TopicKey(tid string) string { return "topic:" + tid }
func PostKey(pid string) string  { return "post:" + pid }
func UserKey(uid string) string  { return "user:" + uid }

func TopicPostsKey(tid string) string { return fmt.Sprintf("tid:%s:posts", tid) }

func CategoryTopicsKey(cid string) string  { return fmt.Sprintf("cid:%s:tids", cid) }
func CategoryPostsKey(cid string) string   { return fmt.Sprintf("cid:%s:tids:posts", cid) }
func CategoryVotesKey(cid string) string   { return fmt.Sprintf("cid:%s:tids:votes", cid) }
func CategoryViewsKey(cid string) string   { return fmt.Sprintf("cid:%s:tids:views", cid) }
func CategoryPinnedKey(cid string) string  { return fmt.Sprintf("cid:%s:tids:pinned", cid) }

func UserTopicsKey(uid string) string { return fmt.Sprintf("uid:%s:topics", uid) }
func CategoryUserTopicsKey(cid, uid string) string {
	return fmt.Sprintf("cid:%s:uid:%s:tids", cid, uid)
}

func FollowersKey(uid string) string         { return fmt.Sprintf("followers:%s", uid) }
func UserNotificationsKey(uid string) string { return fmt.Sprintf("uid:%s:notifications", uid) }

// CategoryPublicKeys returns the four public per-category indexes a visible
// topic must belong to.
func CategoryPublicKeys(cid string) []string {
	return []string{
		CategoryTopicsKey(cid),
		CategoryPostsKey(cid),
		CategoryVotesKey(cid),
		CategoryViewsKey(cid),
	}
}
