package chatlog

import (
	"time"

	"github.com/divyampandey/pixel-llm-server-go/internal/animation"
)

// ChatStat is the daily aggregate row: one row per calendar day with
// chat volume, token usage and per-animation counts.
type ChatStat struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	ChatDate     time.Time `gorm:"column:chat_date;type:date"`
	Chats        int64     `gorm:"column:chats"`
	InputTokens  int64     `gorm:"column:input_tokens"`
	OutputTokens int64     `gorm:"column:output_tokens"`
	Punches      int64     `gorm:"column:punches"`
	Nos          int64     `gorm:"column:nos"`
	Jumps        int64     `gorm:"column:jumps"`
	Waves        int64     `gorm:"column:waves"`
	ThumbsUps    int64     `gorm:"column:thumbs_ups"`
	Yeses        int64     `gorm:"column:yeses"`
	Version      int64     `gorm:"column:version"`
}

// TableName returns the GORM table name.
func (ChatStat) TableName() string {
	return "chat_stats"
}

// DailyStat is the API view of one aggregated day.
type DailyStat struct {
	ChatDate     time.Time
	Chats        int64
	InputTokens  int64
	OutputTokens int64
	Animations   map[animation.Tag]int64
}

// TotalTokens returns input+output token totals.
func (d DailyStat) TotalTokens() int64 {
	return d.InputTokens + d.OutputTokens
}

// Delta is one pending increment before it is flushed to the DB.
type Delta struct {
	Chats        int64
	InputTokens  int64
	OutputTokens int64
	Tags         map[animation.Tag]int64
}

func (d *Delta) add(other Delta) {
	d.Chats += other.Chats
	d.InputTokens += other.InputTokens
	d.OutputTokens += other.OutputTokens
	if d.Tags == nil {
		d.Tags = make(map[animation.Tag]int64)
	}
	for tag, count := range other.Tags {
		d.Tags[tag] += count
	}
}

func (d Delta) empty() bool {
	return d.Chats == 0 && d.InputTokens == 0 && d.OutputTokens == 0
}

func statToDaily(row ChatStat) DailyStat {
	return DailyStat{
		ChatDate:     row.ChatDate,
		Chats:        row.Chats,
		InputTokens:  row.InputTokens,
		OutputTokens: row.OutputTokens,
		Animations: map[animation.Tag]int64{
			animation.TagPunch:    row.Punches,
			animation.TagNo:       row.Nos,
			animation.TagJump:     row.Jumps,
			animation.TagWave:     row.Waves,
			animation.TagThumbsUp: row.ThumbsUps,
			animation.TagYes:      row.Yeses,
		},
	}
}
