package models

import (
	"regexp"
	"slices"
	"time"
)

type PrayerCategory string

const (
	CategoryDiarias          PrayerCategory = "Diárias"
	CategoryMarianas         PrayerCategory = "Marianas"
	CategorySantos           PrayerCategory = "Santos"
	CategoryMomentosDaVida   PrayerCategory = "Momentos da Vida"
	CategoryIntencaoEspecial PrayerCategory = "Intenção Especial"
)

var PrayerCategories = []PrayerCategory{
	CategoryDiarias,
	CategoryMarianas,
	CategorySantos,
	CategoryMomentosDaVida,
	CategoryIntencaoEspecial,
}

func (c PrayerCategory) Valid() bool {
	return slices.Contains(PrayerCategories, c)
}

const (
	PrayerStatusPublished = "PUBLISHED"
	PrayerStatusPending   = "PENDING"
)

type Prayer struct {
	Prayer_ID        string         `json:"id"`
	Title            string         `json:"title"`
	Text             string         `json:"text"`
	Latin_Text       *string        `json:"latinText,omitempty"`
	Category         PrayerCategory `json:"category"`
	Tags             []string       `json:"tags"`
	Image_Url        *string        `json:"imageUrl,omitempty"`
	Author_ID        string         `json:"authorId"`
	Author_Name      string         `json:"authorName"`
	Datetime_Create  time.Time      `json:"createdAt"`
	Prayer_Count     int            `json:"prayerCount"`
	Parent_Prayer_ID *string        `json:"parentPrayerId,omitempty"`
	Is_Devotion      bool           `json:"isDevotion"`
	Status           string         `json:"status"`
}

type PrayerCreate struct {
	Title            string         `json:"title"`
	Text             string         `json:"text"`
	Latin_Text       *string        `json:"latinText"`
	Category         PrayerCategory `json:"category"`
	Tags             []string       `json:"tags"`
	Image_Url        *string        `json:"imageUrl"`
	Parent_Prayer_ID *string        `json:"parentPrayerId"`
	Is_Devotion      bool           `json:"isDevotion"`
}

// PrayerUpdate patches a prayer; nil fields are left untouched.
type PrayerUpdate struct {
	Title            *string         `json:"title"`
	Text             *string         `json:"text"`
	Latin_Text       *string         `json:"latinText"`
	Category         *PrayerCategory `json:"category"`
	Tags             *[]string       `json:"tags"`
	Image_Url        *string         `json:"imageUrl"`
	Parent_Prayer_ID *string         `json:"parentPrayerId"`
	Is_Devotion      *bool           `json:"isDevotion"`
}

func (p *Prayer) IsPublished() bool {
	return p.Status == PrayerStatusPublished
}

func (p *Prayer) Clone() *Prayer {
	out := *p
	out.Tags = slices.Clone(p.Tags)
	return &out
}

var prayerRefPattern = regexp.MustCompile(`\[prayer:([^\]\s]+)\]`)

// ReferencedPrayerIDs returns the ids of [prayer:<id>] tokens embedded in a
// devotion body, in order of first appearance.
func ReferencedPrayerIDs(text string) []string {
	var ids []string
	for _, m := range prayerRefPattern.FindAllStringSubmatch(text, -1) {
		if !slices.Contains(ids, m[1]) {
			ids = append(ids, m[1])
		}
	}
	return ids
}
