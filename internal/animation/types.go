package animation

// Tag is one discrete avatar animation cue.
type Tag string

const (
	TagPunch    Tag = "Punch"
	TagNo       Tag = "No"
	TagJump     Tag = "Jump"
	TagWave     Tag = "Wave"
	TagThumbsUp Tag = "ThumbsUp"
	TagYes      Tag = "Yes"
)

// Tags lists every valid animation cue.
func Tags() []Tag {
	return []Tag{TagPunch, TagNo, TagJump, TagWave, TagThumbsUp, TagYes}
}

// Valid reports whether t is a known cue.
func (t Tag) Valid() bool {
	switch t {
	case TagPunch, TagNo, TagJump, TagWave, TagThumbsUp, TagYes:
		return true
	}
	return false
}
