package models

import (
	"slices"
	"time"
)

type ExternalLink struct {
	Title string `json:"title"`
	Url   string `json:"url"`
}

// Circulo is a prayer circle. Posts are kept as an arena keyed by post id;
// Root_Post_IDs holds the top-level posts newest first.
type Circulo struct {
	Circulo_ID      string                `json:"id"`
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	Leader_ID       string                `json:"leaderId"`
	Moderator_IDs   []string              `json:"moderatorIds"`
	Member_Count    int                   `json:"memberCount"`
	Image_Url       string                `json:"imageUrl"`
	Cover_Image_Url string                `json:"coverImageUrl"`
	External_Links  []ExternalLink        `json:"externalLinks"`
	Posts           map[string]*Post      `json:"posts"`
	Root_Post_IDs   []string              `json:"rootPostIds"`
	Schedule        []CirculoScheduleItem `json:"schedule"`
	Datetime_Create time.Time             `json:"datetimeCreate"`
}

type CirculoCreate struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	Image_Url       string `json:"imageUrl"`
	Cover_Image_Url string `json:"coverImageUrl"`
}

// CirculoUpdate patches a circle profile; nil fields are left untouched.
type CirculoUpdate struct {
	Name            *string         `json:"name"`
	Description     *string         `json:"description"`
	Image_Url       *string         `json:"imageUrl"`
	Cover_Image_Url *string         `json:"coverImageUrl"`
	External_Links  *[]ExternalLink `json:"externalLinks"`
}

type ModeratorRoleUpdate struct {
	Is_Moderator *bool `json:"isModerator" binding:"required"`
}

func (c *Circulo) IsLeader(userID string) bool {
	return c.Leader_ID == userID
}

func (c *Circulo) IsModerator(userID string) bool {
	return slices.Contains(c.Moderator_IDs, userID)
}

func (c *Circulo) PinnedPost() *Post {
	for _, id := range c.Root_Post_IDs {
		if p := c.Posts[id]; p != nil && p.Is_Pinned {
			return p
		}
	}
	return nil
}

func (c *Circulo) Clone() *Circulo {
	out := *c
	out.Moderator_IDs = slices.Clone(c.Moderator_IDs)
	out.External_Links = slices.Clone(c.External_Links)
	out.Root_Post_IDs = slices.Clone(c.Root_Post_IDs)
	out.Schedule = slices.Clone(c.Schedule)
	out.Posts = make(map[string]*Post, len(c.Posts))
	for id, p := range c.Posts {
		out.Posts[id] = p.Clone()
	}
	return &out
}

// CirculoView is the client projection of a circle: the post arena is
// replaced by the nested feed.
type CirculoView struct {
	Circulo_ID      string                `json:"id"`
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	Leader_ID       string                `json:"leaderId"`
	Moderator_IDs   []string              `json:"moderatorIds"`
	Member_Count    int                   `json:"memberCount"`
	Image_Url       string                `json:"imageUrl"`
	Cover_Image_Url string                `json:"coverImageUrl"`
	External_Links  []ExternalLink        `json:"externalLinks"`
	Schedule        []CirculoScheduleItem `json:"schedule"`
	Posts           []PostThread          `json:"posts,omitempty"`
}

// View projects the circle; the feed is only built when withFeed is set.
func (c *Circulo) View(withFeed bool) CirculoView {
	v := CirculoView{
		Circulo_ID:      c.Circulo_ID,
		Name:            c.Name,
		Description:     c.Description,
		Leader_ID:       c.Leader_ID,
		Moderator_IDs:   slices.Clone(c.Moderator_IDs),
		Member_Count:    c.Member_Count,
		Image_Url:       c.Image_Url,
		Cover_Image_Url: c.Cover_Image_Url,
		External_Links:  slices.Clone(c.External_Links),
		Schedule:        slices.Clone(c.Schedule),
	}
	if withFeed {
		v.Posts = c.Feed()
	}
	return v
}
