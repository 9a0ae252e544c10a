package models

import (
	"slices"
	"time"
)

type Reaction struct {
	User_ID string `json:"userId"`
	Emoji   string `json:"emoji"`
}

// Post is a node of a circle's post arena. Top-level posts have a nil
// Parent_Post_ID; Reply_IDs is ordered oldest first.
type Post struct {
	Post_ID              string     `json:"id"`
	Parent_Post_ID       *string    `json:"parentPostId,omitempty"`
	Author_ID            string     `json:"authorId"`
	Author_Name          string     `json:"authorName"`
	Author_Avatar_Url    string     `json:"authorAvatarUrl"`
	Text                 string     `json:"text"`
	Mentioned_Prayer_IDs []string   `json:"mentionedPrayerIds,omitempty"`
	Mentioned_User_IDs   []string   `json:"mentionedUserIds,omitempty"`
	Datetime_Create      time.Time  `json:"createdAt"`
	Reactions            []Reaction `json:"reactions"`
	Reply_IDs            []string   `json:"replyIds"`
	Is_Pinned            bool       `json:"isPinned"`
}

type PostCreate struct {
	Text                 string   `json:"text" binding:"required"`
	Mentioned_Prayer_IDs []string `json:"mentionedPrayerIds"`
	Mentioned_User_IDs   []string `json:"mentionedUserIds"`
}

type ReactionCreate struct {
	Emoji string `json:"emoji" binding:"required"`
}

// PostThread is the nested view of a post and its replies handed to clients.
type PostThread struct {
	Post
	Replies []PostThread `json:"replies"`
}

func (p *Post) Clone() *Post {
	out := *p
	if p.Parent_Post_ID != nil {
		parent := *p.Parent_Post_ID
		out.Parent_Post_ID = &parent
	}
	out.Mentioned_Prayer_IDs = slices.Clone(p.Mentioned_Prayer_IDs)
	out.Mentioned_User_IDs = slices.Clone(p.Mentioned_User_IDs)
	out.Reactions = slices.Clone(p.Reactions)
	out.Reply_IDs = slices.Clone(p.Reply_IDs)
	return &out
}

func (p *Post) IsTopLevel() bool {
	return p.Parent_Post_ID == nil
}

// InsertRootPost adds p at the head of the top-level list.
func (c *Circulo) InsertRootPost(p *Post) {
	if c.Posts == nil {
		c.Posts = make(map[string]*Post)
	}
	p.Parent_Post_ID = nil
	c.Posts[p.Post_ID] = p
	c.Root_Post_IDs = slices.Insert(c.Root_Post_IDs, 0, p.Post_ID)
}

// AppendReply adds p at the tail of parent's replies. It reports false when
// the parent is not in the arena.
func (c *Circulo) AppendReply(parentID string, p *Post) bool {
	parent, ok := c.Posts[parentID]
	if !ok {
		return false
	}
	p.Parent_Post_ID = &parent.Post_ID
	c.Posts[p.Post_ID] = p
	parent.Reply_IDs = append(parent.Reply_IDs, p.Post_ID)
	return true
}

// RemoveSubtree deletes the post and all of its descendants and splices it out
// of its parent's reply list (or the top-level list). It returns the number of
// posts removed.
func (c *Circulo) RemoveSubtree(postID string) int {
	target, ok := c.Posts[postID]
	if !ok {
		return 0
	}

	if target.Parent_Post_ID == nil {
		c.Root_Post_IDs = slices.DeleteFunc(c.Root_Post_IDs, func(id string) bool { return id == postID })
	} else if parent, ok := c.Posts[*target.Parent_Post_ID]; ok {
		parent.Reply_IDs = slices.DeleteFunc(parent.Reply_IDs, func(id string) bool { return id == postID })
	}

	removed := 0
	stack := []string{postID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := c.Posts[id]
		if !ok {
			continue
		}
		stack = append(stack, node.Reply_IDs...)
		delete(c.Posts, id)
		removed++
	}
	return removed
}

// Feed materialises the nested post tree: top-level posts newest first,
// replies oldest first.
func (c *Circulo) Feed() []PostThread {
	feed := make([]PostThread, 0, len(c.Root_Post_IDs))
	for _, id := range c.Root_Post_IDs {
		if p, ok := c.Posts[id]; ok {
			feed = append(feed, c.thread(p))
		}
	}
	return feed
}

func (c *Circulo) thread(p *Post) PostThread {
	t := PostThread{Post: *p.Clone(), Replies: make([]PostThread, 0, len(p.Reply_IDs))}
	for _, id := range p.Reply_IDs {
		if child, ok := c.Posts[id]; ok {
			t.Replies = append(t.Replies, c.thread(child))
		}
	}
	return t
}
